package httpserver

import (
	"github.com/gin-gonic/gin"

	"github.com/campuskul/crm-console-api/internal/model"
)

func (s *Server) handleListFollowUps(c *gin.Context) {
	page, err := s.service.ListFollowUps(c.Request.Context(), model.FollowUpListFilter{
		Search:         c.Query("search"),
		FollowUpStatus: c.Query("follow_up_status"),
		Page:           queryInt(c, "page", 1),
		PerPage:        queryInt(c, "per_page", model.DefaultPerPage),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, page)
}

func (s *Server) handleGetFollowUp(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	followUp, err := s.service.GetFollowUp(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, followUp)
}

func (s *Server) handleCreateFollowUp(c *gin.Context) {
	var payload model.FollowUpPayload
	if !bindJSON(c, &payload) {
		return
	}
	followUp, err := s.service.CreateFollowUp(c.Request.Context(), payload)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, followUp)
}

func (s *Server) handleCompleteFollowUp(c *gin.Context) {
	var payload model.CompleteFollowUpPayload
	if !bindJSON(c, &payload) {
		return
	}
	followUp, err := s.service.CompleteFollowUp(c.Request.Context(), payload)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, followUp)
}
