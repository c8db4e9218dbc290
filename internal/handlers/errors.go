package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"hose_installation/internal/installation"
	"hose_installation/internal/scan"
	"hose_installation/internal/service"

	"github.com/gin-gonic/gin"
)

const errInvalidBodyPref = "invalid body: "

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		if httpCode >= http.StatusInternalServerError {
			h.log.Errorw(logKey, fields...)
		} else {
			h.log.Infow(logKey, fields...)
		}
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// errorStatus maps service and domain errors to a status code and the message shown to the client.
func errorStatus(err error) (int, string) {
	var se *service.StoreError
	switch {
	case errors.As(err, &se):
		if se.StatusCode >= http.StatusInternalServerError {
			return se.StatusCode, "failed to " + se.Op
		}
		return se.StatusCode, se.Error()
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, installation.ErrSessionNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, installation.ErrPositionMismatch),
		errors.Is(err, installation.ErrGarbledScan),
		errors.Is(err, scan.ErrUnavailable):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, installation.ErrScanRequired),
		errors.Is(err, installation.ErrNotAwaitingScan),
		errors.Is(err, installation.ErrFinished),
		errors.Is(err, installation.ErrNotStarted),
		errors.Is(err, installation.ErrAlreadyStarted),
		errors.Is(err, installation.ErrAtFirstStep):
		return http.StatusConflict, err.Error()
	}
	return http.StatusInternalServerError, "internal error"
}

func (h *Handler) respondError(c *gin.Context, logKey string, err error, kv ...interface{}) {
	code, msg := errorStatus(err)
	h.logAndJSONError(c, code, msg, logKey, err, kv...)
}

// pathID parses a positive integer path parameter and answers 400 when it is not one.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}
