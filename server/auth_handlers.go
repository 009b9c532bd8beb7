package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/techagentng/healthtrack/models"
	"github.com/techagentng/healthtrack/views"
)

func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.LoginRequest
		if err := c.ShouldBind(&req); err != nil {
			s.renderView(c, http.StatusBadRequest, views.ViewLogin, views.LoginData{Error: err.Error()}, nil)
			return
		}

		message, apiErr := s.AuthService.RequestOTP(c.Request.Context(), &req)
		if apiErr != nil {
			s.renderView(c, apiErr.Status, views.ViewLogin, views.LoginData{
				Phone: req.Phone,
				Error: apiErr.Message,
			}, nil)
			return
		}
		s.renderView(c, http.StatusOK, views.ViewOTP, views.OTPData{Message: message}, nil)
	}
}

func (s *Server) handleVerifyOTP() gin.HandlerFunc {
	return func(c *gin.Context) {
		form := &views.OTPForm{}
		form.Fill(c.PostFormArray("code"))
		if apiErr := s.AuthService.VerifyOTP(c.Request.Context(), form); apiErr != nil {
			s.renderView(c, apiErr.Status, views.ViewOTP, views.OTPData{Message: apiErr.Message, Form: form}, nil)
			return
		}
		s.renderView(c, http.StatusOK, views.ViewDashboard, nil, nil)
	}
}
