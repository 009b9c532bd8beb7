package server

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	errs "github.com/techagentng/healthtrack/errors"
	"github.com/techagentng/healthtrack/i18n"
	"github.com/techagentng/healthtrack/server/response"
	"github.com/techagentng/healthtrack/services"
	"github.com/techagentng/healthtrack/views"
)

func withOverlay(o *views.Overlay, alert string) func(*views.Page) {
	return func(p *views.Page) {
		p.Overlay = o
		p.Alert = alert
	}
}

// captureOverlay shows a capture: the processing message until it is ready,
// then the save prompt.
func (s *Server) captureOverlay(from views.View, capture *services.Capture) *views.Overlay {
	o := &views.Overlay{
		From:      from,
		CaptureID: capture.ID,
		Preview:   capture.Preview,
	}
	if capture.Processing {
		o.Processing = s.Messages.T(i18n.ScanProcessing, nil)
		o.RefreshAfter = int((capture.Wait + time.Second - 1) / time.Second)
		return o
	}
	o.Confirm = capture.Prompt
	return o
}

func withAlert(alert string) func(*views.Page) {
	return func(p *views.Page) {
		p.Alert = alert
	}
}

func (s *Server) handleOpenScanner() gin.HandlerFunc {
	return func(c *gin.Context) {
		from := fromView(c)
		outcome, err := s.ScanService.Open(c.Request.Context())
		if err != nil {
			log.Printf("Error saving scanned report: %v", err)
			response.HandleErrors(c, errs.ErrInternalServerError)
			return
		}

		switch {
		case outcome.Report != nil:
			s.renderView(c, http.StatusOK, views.ViewReports, nil, withAlert(outcome.Alert))
		case outcome.Fallback:
			s.renderView(c, http.StatusOK, from, nil, withOverlay(&views.Overlay{From: from}, outcome.Alert))
		default:
			s.renderView(c, http.StatusOK, from, nil, nil)
		}
	}
}

func (s *Server) handleUploadScan() gin.HandlerFunc {
	return func(c *gin.Context) {
		from := fromView(c)
		invalid := func(message string) {
			s.renderView(c, http.StatusBadRequest, from, nil, withOverlay(&views.Overlay{From: from, Error: message}, ""))
		}

		header, err := c.FormFile("document")
		if err != nil {
			invalid(s.Messages.T(i18n.InvalidUpload, nil))
			return
		}
		file, err := header.Open()
		if err != nil {
			log.Printf("Error opening upload: %v", err)
			invalid(s.Messages.T(i18n.InvalidUpload, nil))
			return
		}
		defer file.Close()

		capture, err := s.ScanService.Capture(c.Request.Context(), header.Filename, file)
		switch {
		case errors.Is(err, services.ErrInvalidImage):
			invalid(s.Messages.T(i18n.InvalidUpload, nil))
			return
		case err != nil:
			log.Printf("Error capturing %s: %v", header.Filename, err)
			invalid(err.Error())
			return
		}

		s.renderView(c, http.StatusOK, from, nil, withOverlay(s.captureOverlay(from, capture), ""))
	}
}

func (s *Server) handleShowCapture() gin.HandlerFunc {
	return func(c *gin.Context) {
		from := fromView(c)
		capture, ok := s.ScanService.Pending(c.Param("id"))
		if !ok {
			s.renderView(c, http.StatusNotFound, from, nil, withOverlay(&views.Overlay{
				From:  from,
				Error: services.ErrCaptureNotFound.Error(),
			}, ""))
			return
		}
		s.renderView(c, http.StatusOK, from, nil, withOverlay(s.captureOverlay(from, capture), ""))
	}
}

func (s *Server) handleConfirmScan() gin.HandlerFunc {
	return func(c *gin.Context) {
		from := fromView(c)
		id := c.Param("id")
		accept := c.PostForm("accept") == "true"

		capture, ok := s.ScanService.Pending(id)
		if !ok {
			s.renderView(c, http.StatusNotFound, from, nil, withOverlay(&views.Overlay{
				From:  from,
				Error: services.ErrCaptureNotFound.Error(),
			}, ""))
			return
		}

		report, err := s.ScanService.Confirm(c.Request.Context(), id, accept)
		if errors.Is(err, services.ErrCaptureProcessing) {
			s.renderView(c, http.StatusConflict, from, nil, withOverlay(s.captureOverlay(from, capture), ""))
			return
		}
		if errors.Is(err, services.ErrCaptureNotFound) {
			s.renderView(c, http.StatusNotFound, from, nil, withOverlay(&views.Overlay{From: from, Error: err.Error()}, ""))
			return
		}
		if err != nil {
			log.Printf("Error saving capture %s: %v", id, err)
			response.HandleErrors(c, errs.ErrInternalServerError)
			return
		}

		if report == nil {
			s.renderView(c, http.StatusOK, from, nil, withOverlay(&views.Overlay{
				From:      from,
				CaptureID: capture.ID,
				Preview:   capture.Preview,
			}, ""))
			return
		}
		s.renderView(c, http.StatusOK, views.ViewReports, nil, nil)
	}
}

func (s *Server) handleCloseScanner() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.ScanService.Close(c.Param("id"))
		s.renderView(c, http.StatusOK, fromView(c), nil, nil)
	}
}
