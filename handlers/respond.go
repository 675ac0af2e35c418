package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"storefront/pkg/apperr"
	"storefront/pkg/ctxmanage"
	"storefront/pkg/logkey"
)

// maxBodySize bounds every JSON request body.
const maxBodySize = 64 * 1024

// writeError logs err and answers with the status and public message of its
// kind.
func writeError(c *gin.Context, msg string, err error) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error(msg, slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
	} else {
		slog.Warn(msg, slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
	}
	c.AbortWithStatusJSON(status, gin.H{"message": apperr.PublicMessage(err)})
}

// bindJSON decodes the request body into dst. Malformed or oversized bodies
// are answered with 400 and bindJSON reports false.
func bindJSON(c *gin.Context, dst any) bool {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	if c.Request.ContentLength > maxBodySize {
		slog.Error("request body limit breached", slog.String(logkey.TraceID, traceId), slog.Int64("Size Received", c.Request.ContentLength))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Request body too large"})
		return false
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)
	if err := c.ShouldBindJSON(dst); err != nil {
		slog.Error("json decoding error", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return false
	}
	return true
}

// validationMessage turns the first failed rule into a client message.
// messages is keyed by "Field.tag" or by the bare tag.
func validationMessage(err error, messages map[string]string) string {
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) && len(vErrs) > 0 {
		vErr := vErrs[0]
		if m, ok := messages[vErr.Field()+"."+vErr.Tag()]; ok {
			return m
		}
		if m, ok := messages[vErr.Tag()]; ok {
			return m
		}
		switch vErr.Tag() {
		case "required":
			return vErr.Field() + " value missing"
		case "min", "gt":
			return vErr.Field() + " value is less than " + vErr.Param()
		}
	}
	return http.StatusText(http.StatusBadRequest)
}

// checkStruct validates v and answers 400 on failure.
func (h *Handler) checkStruct(c *gin.Context, v any, messages map[string]string) bool {
	err := h.validate.Struct(v)
	if err == nil {
		return true
	}
	slog.Warn("validation failed", slog.String(logkey.TraceID, ctxmanage.GetTraceIdOfRequest(c)), slog.String(logkey.ERROR, err.Error()))
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": validationMessage(err, messages)})
	return false
}

// int64Param parses a numeric path parameter. ok is false when the value is
// not a positive integer.
func int64Param(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
