package server

import (
	"log"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	errs "github.com/techagentng/healthtrack/errors"
	"github.com/techagentng/healthtrack/i18n"
	"github.com/techagentng/healthtrack/server/response"
	"github.com/techagentng/healthtrack/views"
)

// limitOTPRequests caps how often one client can ask for a code.
func (s *Server) limitOTPRequests() gin.HandlerFunc {
	store := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: s.Config.OTPRequestsPerMinute,
	})
	return ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler: s.otpLimitExceeded,
		KeyFunc:      keyFunc,
	})
}

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}

func (s *Server) otpLimitExceeded(c *gin.Context, info ratelimit.Info) {
	seconds := int(time.Until(info.ResetTime).Seconds()) + 1
	log.Printf("OTP rate limit hit by %s", c.ClientIP())
	msg := s.Messages.T(i18n.TooManyOTPRequests, map[string]interface{}{"Seconds": seconds})
	if c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON {
		response.JSON(c, msg, errs.ErrTooManyRequests.Status, nil, errs.ErrTooManyRequests)
		c.Abort()
		return
	}
	s.renderView(c, errs.ErrTooManyRequests.Status, views.ViewLogin, views.LoginData{
		Phone: c.PostForm("phone"),
		Error: msg,
	}, nil)
	c.Abort()
}
