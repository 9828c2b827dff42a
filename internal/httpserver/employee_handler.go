package httpserver

import (
	"github.com/gin-gonic/gin"

	"github.com/campuskul/crm-console-api/internal/model"
)

func (s *Server) handleListEmployees(c *gin.Context) {
	employees, total, err := s.service.ListEmployees(c.Request.Context(),
		c.Query("search"), c.Query("status"),
		queryInt(c, "page", 1), queryInt(c, "per_page", model.DefaultPerPage))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"employees": employees, "total": total})
}

func (s *Server) handleActiveEmployees(c *gin.Context) {
	employees, err := s.service.ListActiveEmployees(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, employees)
}

func (s *Server) handleGetEmployee(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	employee, err := s.service.GetEmployee(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, employee)
}

func (s *Server) handleCreateEmployee(c *gin.Context) {
	var payload model.EmployeePayload
	if !bindJSON(c, &payload) {
		return
	}
	employee, err := s.service.CreateEmployee(c.Request.Context(), payload)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, employee)
}

func (s *Server) handleUpdateEmployee(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var payload model.EmployeePayload
	if !bindJSON(c, &payload) {
		return
	}
	employee, err := s.service.UpdateEmployee(c.Request.Context(), id, payload)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, employee)
}

func (s *Server) handleToggleEmployee(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	employee, err := s.service.ToggleEmployeeStatus(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, employee)
}

func (s *Server) handleDeleteEmployee(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := s.service.DeleteEmployee(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "employee deleted")
}
