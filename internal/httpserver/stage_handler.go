package httpserver

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/campuskul/crm-console-api/internal/model"
	"github.com/campuskul/crm-console-api/pkg/logger"
)

func (s *Server) handleListStages(c *gin.Context) {
	stages, total, err := s.service.ListStages(c.Request.Context(),
		c.Query("search"), c.Query("status"),
		queryInt(c, "page", 1), queryInt(c, "per_page", model.DefaultPerPage))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"stages": stages, "total": total})
}

// handleActiveStages feeds the stage pickers. A lookup failure serves an
// empty list instead of an error page mid-form.
func (s *Server) handleActiveStages(c *gin.Context) {
	stages, err := s.service.ListActiveStages(c.Request.Context())
	if err != nil {
		logger.FromContext(c.Request.Context()).Warn("Active stage lookup failed, serving empty list",
			zap.Error(err))
		stages = []model.Stage{}
	}
	respondOK(c, stages)
}

func (s *Server) handleCreateStage(c *gin.Context) {
	var payload model.StagePayload
	if !bindJSON(c, &payload) {
		return
	}
	stage, err := s.service.CreateStage(c.Request.Context(), payload)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, stage)
}

func (s *Server) handleUpdateStage(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var payload model.StagePayload
	if !bindJSON(c, &payload) {
		return
	}
	stage, err := s.service.UpdateStage(c.Request.Context(), id, payload)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, stage)
}

func (s *Server) handleDeleteStage(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := s.service.DeleteStage(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "stage deleted")
}

func (s *Server) handleToggleStage(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	stage, err := s.service.ToggleStage(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, stage)
}

func (s *Server) handleReorderStages(c *gin.Context) {
	var payload struct {
		Stages []model.StageOrderUpdate `json:"stages"`
	}
	if !bindJSON(c, &payload) {
		return
	}
	if err := s.service.ReorderStages(c.Request.Context(), payload.Stages); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "stages reordered")
}
