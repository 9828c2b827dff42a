package httpserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campuskul/crm-console-api/internal/apperrors"
	"github.com/campuskul/crm-console-api/internal/model"
)

func (s *Server) handleListLeads(c *gin.Context) {
	page, err := s.service.ListLeads(c.Request.Context(), leadFilterFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, page)
}

func (s *Server) handleCreateLead(c *gin.Context) {
	var payload model.LeadPayload
	if !bindJSON(c, &payload) {
		return
	}
	lead, err := s.service.CreateLead(c.Request.Context(), payload)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, lead)
}

func (s *Server) handleUpdateLead(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var payload model.LeadPayload
	if !bindJSON(c, &payload) {
		return
	}
	lead, err := s.service.UpdateLead(c.Request.Context(), id, payload)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, lead)
}

func (s *Server) handleChangeLeadStage(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var payload model.ChangeStagePayload
	if !bindJSON(c, &payload) {
		return
	}
	lead, err := s.service.ChangeLeadStage(c.Request.Context(), id, payload)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, lead)
}

func (s *Server) handleGetLead(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	lead, err := s.service.GetLead(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, lead)
}

func (s *Server) handleLeadActivities(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	activities, err := s.service.LeadActivities(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, activities)
}

func (s *Server) handleDeleteLead(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := s.service.DeleteLead(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "lead deleted")
}

func (s *Server) handleLeadRefs(c *gin.Context) {
	refs, err := s.service.ListLeadRefs(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, refs)
}

func (s *Server) handleImportLeads(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, fmt.Errorf("%w: missing file upload", apperrors.ErrBadRequest))
		return
	}
	upload, err := file.Open()
	if err != nil {
		respondError(c, fmt.Errorf("%w: unreadable file upload", apperrors.ErrBadRequest))
		return
	}
	defer upload.Close()

	summary, err := s.service.ImportLeads(c.Request.Context(), upload)
	if err != nil {
		respondError(c, err)
		return
	}
	// Partial failure is still a 200: the summary itemizes rejected rows
	respondOK(c, summary)
}

func (s *Server) handleExportLeads(c *gin.Context) {
	out, err := s.service.ExportLeads(c.Request.Context(), leadFilterFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	filename := fmt.Sprintf("leads-%s.csv", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", out)
}
