// Package response writes the JSON envelope used by the API routes.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	errs "github.com/techagentng/healthtrack/errors"
)

// JSON writes {message, data, errors, status} with the given status.
func JSON(c *gin.Context, message string, status int, data interface{}, err error) {
	errMessage := ""
	if err != nil {
		errMessage = err.Error()
	}
	responsedata := gin.H{
		"message": message,
		"data":    data,
		"errors":  errMessage,
		"status":  http.StatusText(status),
	}

	c.JSON(status, responsedata)
}

// HandleErrors reports err with the status it carries.
func HandleErrors(c *gin.Context, err error) {
	status := errs.Status(err)
	JSON(c, "", status, nil, err)
}
