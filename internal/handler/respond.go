// Package handler exposes the application services over a gin REST
// API. Every response uses the {code, message, data} envelope; error
// codes and statuses come from the apperr taxonomy.
package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"tripsplit/internal/apperr"
)

// codeSuccess is the envelope code for every successful response.
const codeSuccess = "SU"

type envelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respondOK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, envelope{Code: codeSuccess, Message: message, Data: data})
}

func respondCreated(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, envelope{Code: codeSuccess, Message: message, Data: data})
}

// respondError maps a service error onto an HTTP status and the error
// envelope. Unclassified errors are treated as internal and their
// detail is never leaked to the client.
func respondError(c *gin.Context, err error) {
	ae, ok := apperr.As(err)
	if !ok {
		ae = apperr.Internal(err)
	}

	status := http.StatusInternalServerError
	switch ae.Kind {
	case apperr.KindInvalid:
		status = http.StatusBadRequest
	case apperr.KindUnauthorized:
		status = http.StatusUnauthorized
	case apperr.KindForbidden:
		status = http.StatusForbidden
	case apperr.KindNotFound:
		status = http.StatusNotFound
	}

	c.JSON(status, envelope{Code: ae.Code, Message: ae.Message})
}

var validate = validator.New()

// bindJSON decodes and validates a JSON request body. On failure it
// writes the 400 response itself and returns false.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, apperr.Invalid("invalid JSON body"))
		return false
	}
	if err := validate.Struct(req); err != nil {
		var fields []string
		for _, fe := range err.(validator.ValidationErrors) {
			fields = append(fields, fieldErrorToString(fe))
		}
		respondError(c, apperr.Invalid("invalid input: "+strings.Join(fields, "; ")))
		return false
	}
	return true
}

func fieldErrorToString(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email", e.Field())
	case "datetime":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", e.Field())
	case "min":
		return fmt.Sprintf("%s is too short", e.Field())
	default:
		return fmt.Sprintf("%s is invalid", e.Field())
	}
}
