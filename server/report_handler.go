package server

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	errs "github.com/techagentng/healthtrack/errors"
	"github.com/techagentng/healthtrack/models"
	"github.com/techagentng/healthtrack/server/response"
	"github.com/techagentng/healthtrack/views"
)

func reportID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.JSON(c, "", http.StatusBadRequest, nil, errs.New("invalid report id", http.StatusBadRequest))
		return 0, false
	}
	return id, true
}

func (s *Server) handleDownloadReport() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := reportID(c)
		if !ok {
			return
		}
		var buf bytes.Buffer
		if err := s.ReportService.ExportReport(c.Request.Context(), id, &buf); err != nil {
			if errs.Status(err) == http.StatusInternalServerError {
				log.Printf("Error exporting report %d: %v", id, err)
			}
			response.HandleErrors(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=report-%d.md", id))
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", buf.Bytes())
	}
}

func (s *Server) handleShowProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := s.ReportService.GetProfile(c.Request.Context())
		if err != nil {
			log.Printf("Error loading profile: %v", err)
			response.HandleErrors(c, errs.ErrInternalServerError)
			return
		}
		response.JSON(c, "user profile retrieved successfully", http.StatusOK, user, nil)
	}
}

func (s *Server) handleGetAllReports() gin.HandlerFunc {
	return func(c *gin.Context) {
		reports, err := s.ReportService.ListReports(c.Request.Context())
		if err != nil {
			log.Printf("Error listing reports: %v", err)
			response.HandleErrors(c, errs.ErrInternalServerError)
			return
		}
		response.JSON(c, "reports retrieved successfully", http.StatusOK, reports, nil)
	}
}

func (s *Server) handleGetReport() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := reportID(c)
		if !ok {
			return
		}
		report, err := s.ReportService.GetReport(c.Request.Context(), id)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "report retrieved successfully", http.StatusOK, report, nil)
	}
}

func (s *Server) handleCreateReport() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ReportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New("invalid request body", http.StatusBadRequest))
			return
		}
		report, err := s.ReportService.CreateReport(c.Request.Context(), &req)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "report created successfully", http.StatusCreated, report, nil)
	}
}

func (s *Server) handleGetAllHospitals() gin.HandlerFunc {
	return func(c *gin.Context) {
		hospitals, err := s.ReportService.ListHospitals(c.Request.Context())
		if err != nil {
			log.Printf("Error listing hospitals: %v", err)
			response.HandleErrors(c, errs.ErrInternalServerError)
			return
		}
		response.JSON(c, "hospitals retrieved successfully", http.StatusOK, hospitals, nil)
	}
}

func (s *Server) handleGetViewNames() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.JSON(c, "views retrieved successfully", http.StatusOK, views.Names(), nil)
	}
}
