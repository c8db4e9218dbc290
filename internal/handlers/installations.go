package handlers

import (
	"net/http"
	"strings"

	"hose_installation/internal/models"
	"hose_installation/internal/scan"
	"hose_installation/internal/service"

	"github.com/gin-gonic/gin"
)

type openSessionRequest struct {
	InstallationID int64  `json:"installation_id" binding:"omitempty,gt=0"`
	MachineID      int64  `json:"machine_id" binding:"omitempty,gt=0"`
	AttachmentID   int64  `json:"attachment_id" binding:"omitempty,gt=0"`
	ReaderID       string `json:"reader_id" binding:"omitempty,max=64"`
}

type installationRequest struct {
	MachineID    int64 `json:"machine_id" binding:"required,gt=0"`
	AttachmentID int64 `json:"attachment_id" binding:"required,gt=0"`
}

// scanRequest carries text decoded on the phone. An empty payload is a garbled read.
type scanRequest struct {
	Payload string `json:"payload"`
	Origin  string `json:"origin" binding:"omitempty,oneof=nfc qr reader"`
}

type beginScanRequest struct {
	Capability bool `json:"capability"`
}

type scanErrorRequest struct {
	Message string `json:"message" binding:"max=256"`
	// Kind "unavailable" reports a missing NFC or camera capability.
	Kind string `json:"kind" binding:"omitempty,oneof=unavailable read"`
}

// respondSession answers with the session view, adding the error when the operation was refused.
func (h *Handler) respondSession(c *gin.Context, v service.SessionView, err error, logKey string) {
	if err == nil {
		c.JSON(http.StatusOK, v)
		return
	}
	code, msg := errorStatus(err)
	if h.log != nil {
		if code >= http.StatusInternalServerError {
			h.log.Errorw(logKey, "session_id", c.Param("session"), "err", err)
		} else {
			h.log.Infow(logKey, "session_id", c.Param("session"), "err", err)
		}
	}
	body := gin.H{"error": msg}
	if v.ID != "" {
		body["session"] = v
	}
	c.JSON(code, body)
}

// @Summary      List my installations
// @Tags         installations
// @Produce      json
// @Success      200  {array}  models.Installation
// @Router       /api/v1/my-installations [get]
// @Security     BearerAuth
func (h *Handler) listInstallations(c *gin.Context) {
	out, err := h.services.Installations.ListInstallations(c.Request.Context(), identity(c).UserID)
	if err != nil {
		h.respondError(c, "installations_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary      Register a machine and attachment pairing
// @Tags         installations
// @Accept       json
// @Produce      json
// @Param        body  body      installationRequest  true  "Pairing"
// @Success      201   {object}  map[string]int64
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/my-installations [post]
// @Security     BearerAuth
func (h *Handler) createInstallation(c *gin.Context) {
	var req installationRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	id, err := h.services.Installations.CreateInstallation(c.Request.Context(), models.Installation{
		UserID:       identity(c).UserID,
		MachineID:    req.MachineID,
		AttachmentID: req.AttachmentID,
	})
	if err != nil {
		h.respondError(c, "installation_create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// @Summary      Open an installation session
// @Description  Starts walking the attachment's installation steps. installation_id takes precedence over attachment_id.
// @Tags         installations
// @Accept       json
// @Produce      json
// @Param        body  body      openSessionRequest  true  "What to install"
// @Success      201   {object}  service.SessionView
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/installations [post]
// @Security     BearerAuth
func (h *Handler) openSession(c *gin.Context) {
	var req openSessionRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	v, err := h.services.Installations.OpenSession(c.Request.Context(), identity(c).UserID, service.OpenParams{
		InstallationID: req.InstallationID,
		MachineID:      req.MachineID,
		AttachmentID:   req.AttachmentID,
		ReaderID:       strings.TrimSpace(req.ReaderID),
	})
	if err != nil {
		h.respondError(c, "installation_session_open_failed", err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

// @Summary      Get session progress
// @Tags         installations
// @Produce      json
// @Param        session  path      string  true  "Session id"
// @Success      200      {object}  service.SessionView
// @Failure      404      {object}  map[string]string
// @Router       /api/v1/installations/{session} [get]
// @Security     BearerAuth
func (h *Handler) getSession(c *gin.Context) {
	v, err := h.services.Installations.GetSession(c.Request.Context(), identity(c).UserID, c.Param("session"))
	h.respondSession(c, v, err, "installation_session_get_failed")
}

// @Summary      Close session
// @Tags         installations
// @Param        session  path  string  true  "Session id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/installations/{session} [delete]
// @Security     BearerAuth
func (h *Handler) closeSession(c *gin.Context) {
	if err := h.services.Installations.CloseSession(c.Request.Context(), identity(c).UserID, c.Param("session")); err != nil {
		h.respondError(c, "installation_session_close_failed", err, "session_id", c.Param("session"))
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary      Next step
// @Description  Completes an instruction step. Steps that need a scan answer 409 until a valid scan arrives.
// @Tags         installations
// @Produce      json
// @Param        session  path      string  true  "Session id"
// @Success      200      {object}  service.SessionView
// @Failure      409      {object}  map[string]interface{}
// @Router       /api/v1/installations/{session}/next [post]
// @Security     BearerAuth
func (h *Handler) nextStep(c *gin.Context) {
	v, err := h.services.Installations.NextStep(c.Request.Context(), identity(c).UserID, c.Param("session"))
	h.respondSession(c, v, err, "installation_next_refused")
}

// @Summary      Previous step
// @Tags         installations
// @Produce      json
// @Param        session  path      string  true  "Session id"
// @Success      200      {object}  service.SessionView
// @Failure      409      {object}  map[string]interface{}
// @Router       /api/v1/installations/{session}/back [post]
// @Security     BearerAuth
func (h *Handler) previousStep(c *gin.Context) {
	v, err := h.services.Installations.PreviousStep(c.Request.Context(), identity(c).UserID, c.Param("session"))
	h.respondSession(c, v, err, "installation_back_refused")
}

// @Summary      Open the scanner
// @Description  capability is whether the phone can read NFC or QR. Without it, and without a bound reader, the answer is 422.
// @Tags         installations
// @Accept       json
// @Produce      json
// @Param        session  path      string            true  "Session id"
// @Param        body     body      beginScanRequest  true  "Client capability"
// @Success      200      {object}  service.SessionView
// @Failure      422      {object}  map[string]interface{}
// @Router       /api/v1/installations/{session}/scan/start [post]
// @Security     BearerAuth
func (h *Handler) beginScan(c *gin.Context) {
	var req beginScanRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	v, err := h.services.Installations.BeginScan(c.Request.Context(), identity(c).UserID, c.Param("session"), req.Capability)
	h.respondSession(c, v, err, "installation_scan_start_failed")
}

// @Summary      Submit a scanned tag
// @Description  A wrong position answers 422 and leaves the step waiting. A scan on the last step finishes the installation.
// @Tags         installations
// @Accept       json
// @Produce      json
// @Param        session  path      string       true  "Session id"
// @Param        body     body      scanRequest  true  "Decoded tag"
// @Success      200      {object}  service.SessionView
// @Failure      409      {object}  map[string]interface{}
// @Failure      422      {object}  map[string]interface{}
// @Router       /api/v1/installations/{session}/scan [post]
// @Security     BearerAuth
func (h *Handler) submitScan(c *gin.Context) {
	var req scanRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	origin := scan.Origin(req.Origin)
	if origin == "" {
		origin = scan.OriginNFC
	}
	v, err := h.services.Installations.SubmitScan(c.Request.Context(), identity(c).UserID, c.Param("session"), scan.NewEvent(origin, req.Payload))
	h.respondSession(c, v, err, "installation_scan_refused")
}

// @Summary      Cancel scanning
// @Tags         installations
// @Produce      json
// @Param        session  path      string  true  "Session id"
// @Success      200      {object}  service.SessionView
// @Router       /api/v1/installations/{session}/scan/cancel [post]
// @Security     BearerAuth
func (h *Handler) cancelScan(c *gin.Context) {
	v, err := h.services.Installations.CancelScan(c.Request.Context(), identity(c).UserID, c.Param("session"))
	h.respondSession(c, v, err, "installation_scan_cancel_failed")
}

// @Summary      Report a failed read
// @Description  Records a client-side read failure as a message for the user. The step keeps waiting.
// @Tags         installations
// @Accept       json
// @Produce      json
// @Param        session  path      string            true  "Session id"
// @Param        body     body      scanErrorRequest  true  "What went wrong"
// @Success      200      {object}  service.SessionView
// @Router       /api/v1/installations/{session}/scan/error [post]
// @Security     BearerAuth
func (h *Handler) reportScanError(c *gin.Context) {
	var req scanErrorRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	msg := strings.TrimSpace(req.Message)
	if msg == "" && req.Kind == "unavailable" {
		msg = scan.ErrUnavailable.Error()
	}
	v, err := h.services.Installations.ReportScanError(c.Request.Context(), identity(c).UserID, c.Param("session"), msg)
	h.respondSession(c, v, err, "installation_scan_error_refused")
}

