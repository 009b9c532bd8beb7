package server

import (
	"fmt"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func (s *Server) setupRouter() *gin.Engine {
	r := gin.New()
	r.SetHTMLTemplate(s.Router.Templates())
	r.MaxMultipartMemory = 32 << 20

	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "test" {
		s.defineRoutes(r)
		return r
	}

	// LoggerWithFormatter middleware will write the logs to gin.DefaultWriter
	// By default gin.DefaultWriter = os.Stdout
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
			param.ClientIP,
			param.TimeStamp.Format(time.RFC1123),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
	}))
	r.Use(gin.Recovery())

	corsConfig := cors.Config{
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}
	if s.Config.AccessControlAllowOrigin != "" {
		corsConfig.AllowOrigins = []string{s.Config.AccessControlAllowOrigin}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	r.Use(cors.New(corsConfig))

	s.defineRoutes(r)
	return r
}

func (s *Server) defineRoutes(router *gin.Engine) {
	router.GET("/healthz", s.handleHealth())

	router.GET("/", s.handleShell())
	router.GET("/views/:name", s.handleNavigate())
	router.POST("/login", s.limitOTPRequests(), s.handleLogin())
	router.POST("/otp/verify", s.handleVerifyOTP())

	router.POST("/scanner/open", s.handleOpenScanner())
	router.POST("/scanner/upload", s.handleUploadScan())
	router.GET("/scanner/:id", s.handleShowCapture())
	router.POST("/scanner/:id/confirm", s.handleConfirmScan())
	router.POST("/scanner/:id/close", s.handleCloseScanner())

	router.GET("/reports/:id/download", s.handleDownloadReport())

	apirouter := router.Group("/api/v1")
	apirouter.GET("/me", s.handleShowProfile())
	apirouter.GET("/reports", s.handleGetAllReports())
	apirouter.POST("/reports", s.handleCreateReport())
	apirouter.GET("/reports/:id", s.handleGetReport())
	apirouter.GET("/hospitals", s.handleGetAllHospitals())
	apirouter.GET("/views", s.handleGetViewNames())
}
