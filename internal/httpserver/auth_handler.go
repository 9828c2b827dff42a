package httpserver

import (
	"github.com/gin-gonic/gin"

	"github.com/campuskul/crm-console-api/internal/model"
)

func (s *Server) handleLogin(c *gin.Context) {
	var payload model.LoginPayload
	if !bindJSON(c, &payload) {
		return
	}
	result, err := s.service.Login(c.Request.Context(), payload)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

func (s *Server) handleRegister(c *gin.Context) {
	var payload model.RegisterPayload
	if !bindJSON(c, &payload) {
		return
	}
	result, err := s.service.Register(c.Request.Context(), payload)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, result)
}

// handleLogout acknowledges the client-side teardown. Tokens are not
// invalidated server-side; they simply expire.
func (s *Server) handleLogout(c *gin.Context) {
	respondMessage(c, "logged out")
}

func (s *Server) handleMyProfile(c *gin.Context) {
	user, err := s.service.GetMyProfile(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, user)
}

func (s *Server) handleUpdateMyProfile(c *gin.Context) {
	payload := model.ProfilePayload{
		Name:  c.PostForm("name"),
		Phone: c.PostForm("phone"),
	}
	picPath, err := saveUpload(c, "profile_pic", s.uploadsDir)
	if err != nil {
		respondError(c, err)
		return
	}
	user, err := s.service.UpdateMyProfile(c.Request.Context(), payload, picPath)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, user)
}
