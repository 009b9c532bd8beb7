package server

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	errs "github.com/techagentng/healthtrack/errors"
	"github.com/techagentng/healthtrack/i18n"
	"github.com/techagentng/healthtrack/server/response"
	"github.com/techagentng/healthtrack/views"
)

// renderView navigates to v and writes the full page. decorate, when set,
// adjusts the page before it is written.
func (s *Server) renderView(c *gin.Context, status int, v views.View, data any, decorate func(*views.Page)) {
	page, err := s.Router.NavigateTo(c.Request.Context(), v, data)
	if err != nil {
		log.Printf("Error rendering %s: %v", v, err)
		response.HandleErrors(c, errs.ErrInternalServerError)
		return
	}
	if decorate != nil {
		decorate(page)
	}
	c.HTML(status, "layout", page)
}

func (s *Server) renderNotFound(c *gin.Context, message string) {
	page, err := s.Router.NotFound(message)
	if err != nil {
		log.Printf("Error rendering not found page: %v", err)
		response.HandleErrors(c, errs.ErrNotFound)
		return
	}
	c.HTML(http.StatusNotFound, "layout", page)
}

// fromView reads the view a form was posted from, or the from query
// parameter, defaulting to the dashboard.
func fromView(c *gin.Context) views.View {
	name, ok := c.GetPostForm("from")
	if !ok {
		name = c.Query("from")
	}
	v, err := views.ParseView(name)
	if err != nil || !v.ShowsNav() {
		return views.ViewDashboard
	}
	return v
}

func (s *Server) handleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.JSON(c, "ok", http.StatusOK, nil, nil)
	}
}

func (s *Server) handleShell() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := s.ReportService.GetProfile(c.Request.Context())
		if err != nil {
			log.Printf("Error loading profile: %v", err)
			response.HandleErrors(c, errs.ErrInternalServerError)
			return
		}
		s.renderView(c, http.StatusOK, views.ViewLogin, views.LoginData{Phone: user.Phone}, nil)
	}
}

func (s *Server) handleNavigate() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		v, err := views.ParseView(name)
		if errors.Is(err, views.ErrUnknownView) {
			s.renderNotFound(c, s.Messages.T(i18n.UnknownView, map[string]interface{}{"Name": name}))
			return
		}
		s.renderView(c, http.StatusOK, v, nil, nil)
	}
}
