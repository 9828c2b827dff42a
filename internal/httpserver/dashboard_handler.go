package httpserver

import (
	"github.com/gin-gonic/gin"

	"github.com/campuskul/crm-console-api/internal/model"
)

func (s *Server) handleOwnerDashboard(c *gin.Context) {
	summary, err := s.service.OwnerSummary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, summary)
}

func (s *Server) handleEmployeeDashboard(c *gin.Context) {
	summary, err := s.service.EmployeeSummary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, summary)
}

func (s *Server) handleFollowUpCounts(c *gin.Context) {
	counts, err := s.service.FollowUpCounts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, counts)
}

func (s *Server) handleGetOrganization(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	org, err := s.service.GetOrganization(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, org)
}

func (s *Server) handleUpdateOrganization(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	payload := model.OrganizationPayload{
		Name:     c.PostForm("name"),
		Email:    c.PostForm("email"),
		Phone:    c.PostForm("phone"),
		Address:  c.PostForm("address"),
		Timezone: c.PostForm("timezone"),
	}
	logoPath, err := saveUpload(c, "logo", s.uploadsDir)
	if err != nil {
		respondError(c, err)
		return
	}
	org, err := s.service.UpdateOrganization(c.Request.Context(), id, payload, logoPath)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, org)
}
