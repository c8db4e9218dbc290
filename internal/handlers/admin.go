package handlers

import (
	"net/http"
	"strings"

	"hose_installation/internal/models"

	"github.com/gin-gonic/gin"
)

type machineRequest struct {
	Name               string  `json:"name" binding:"required,max=128"`
	Type               string  `json:"type" binding:"max=64"`
	WorkingPressureBar float64 `json:"working_pressure_bar" binding:"gte=0"`
	MaxPressureBar     float64 `json:"max_pressure_bar" binding:"gte=0"`
	FlowLPM            float64 `json:"flow_lpm" binding:"gte=0"`
	PowerW             float64 `json:"power_w" binding:"gte=0"`
	Description        string  `json:"description"`
}

func (r machineRequest) model(id int64) models.Machine {
	return models.Machine{
		ID:                 id,
		Name:               strings.TrimSpace(r.Name),
		Type:               r.Type,
		WorkingPressureBar: r.WorkingPressureBar,
		MaxPressureBar:     r.MaxPressureBar,
		FlowLPM:            r.FlowLPM,
		PowerW:             r.PowerW,
		Description:        r.Description,
	}
}

type attachmentRequest struct {
	Name        string  `json:"name" binding:"required,max=128"`
	Type        string  `json:"type" binding:"max=64"`
	Description string  `json:"description"`
	MachineIDs  []int64 `json:"machine_ids" binding:"dive,gt=0"`
}

func (r attachmentRequest) model(id int64) models.Attachment {
	return models.Attachment{ID: id, Name: strings.TrimSpace(r.Name), Type: r.Type, Description: r.Description}
}

type stepRequest struct {
	StepNumber       int    `json:"step_number" binding:"required,gte=1"`
	Description      string `json:"description" binding:"required"`
	ImageURL         string `json:"image_url" binding:"omitempty,max=512"`
	ScanRequired     bool   `json:"scan_required"`
	ExpectedPosition string `json:"expected_position" binding:"omitempty,hose_position"`
	AttachmentID     int64  `json:"attachment_id" binding:"omitempty,gt=0"`
}

type valveRequest struct {
	Number       int    `json:"valve_number" binding:"required,gte=1"`
	FunctionName string `json:"function_name" binding:"required"`
	Position     string `json:"position"`
	ValveType    string `json:"valve_type"`
	Description  string `json:"description"`
	ColorCode    string `json:"color_code"`
	PortALabel   string `json:"port_a_label"`
	PortBLabel   string `json:"port_b_label"`
	Order        int    `json:"order" binding:"gte=0"`
	Active       *bool  `json:"active"`
	MachineID    int64  `json:"machine_id" binding:"omitempty,gt=0"`
}

type couplingRequest struct {
	AttachmentID        *int64  `json:"attachment_id"`
	HoseNumber          int     `json:"hose_number" binding:"required,gte=1"`
	HoseColor           string  `json:"hose_color"`
	HoseLabel           string  `json:"hose_label"`
	ValveID             int64   `json:"valve_id" binding:"required,gt=0"`
	Port                string  `json:"port" binding:"omitempty,oneof=A B"`
	FunctionDescription string  `json:"function_description"`
	InstructionText     string  `json:"instruction_text"`
	ConnectionType      string  `json:"connection_type" binding:"required,connection_type"`
	PressureRating      float64 `json:"pressure_rating" binding:"gte=0,lte=350"`
	FlowRating          float64 `json:"flow_rating" binding:"gte=0,lte=200"`
	Order               int     `json:"order" binding:"gte=0"`
	MachineID           int64   `json:"machine_id" binding:"omitempty,gt=0"`
}

type inputRequest struct {
	InputNumber int    `json:"input_number" binding:"required,gte=1"`
	Color       string `json:"color"`
	Order       int    `json:"order" binding:"gte=0"`
	MachineID   int64  `json:"machine_id" binding:"omitempty,gt=0"`
}

type roleRequest struct {
	Role string `json:"role" binding:"required,oneof=user admin"`
}

// @Summary      List users
// @Tags         admin
// @Produce      json
// @Success      200  {array}   models.User
// @Failure      403  {object}  map[string]string
// @Router       /api/v1/admin/users [get]
// @Security     BearerAuth
func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.services.Users.ListUsers(c.Request.Context())
	if err != nil {
		h.respondError(c, "users_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// @Summary      Change a user's role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      int          true  "User id"
// @Param        body  body      roleRequest  true  "New role"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/admin/users/{id}/role [patch]
// @Security     BearerAuth
func (h *Handler) setUserRole(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req roleRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	if err := h.services.Users.SetRole(c.Request.Context(), int(id), req.Role); err != nil {
		h.respondError(c, "user_role_update_failed", err, "user_id", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "role": req.Role})
}

// @Summary      Create machine
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      machineRequest  true  "Machine"
// @Success      201   {object}  map[string]int64
// @Failure      400   {object}  map[string]string
// @Router       /api/v1/admin/machines [post]
// @Security     BearerAuth
func (h *Handler) createMachine(c *gin.Context) {
	var req machineRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	id, err := h.services.Catalog.CreateMachine(c.Request.Context(), req.model(0))
	if err != nil {
		h.respondError(c, "machine_create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// @Summary      Update machine
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      int             true  "Machine id"
// @Param        body  body      machineRequest  true  "Machine"
// @Success      200   {object}  models.Machine
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/admin/machines/{id} [put]
// @Security     BearerAuth
func (h *Handler) updateMachine(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req machineRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	m := req.model(id)
	if err := h.services.Catalog.UpdateMachine(c.Request.Context(), m); err != nil {
		h.respondError(c, "machine_update_failed", err, "machine_id", id)
		return
	}
	c.JSON(http.StatusOK, m)
}

// @Summary      Delete machine
// @Tags         admin
// @Param        id   path  int  true  "Machine id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/admin/machines/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteMachine(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.services.Catalog.DeleteMachine(c.Request.Context(), id); err != nil {
		h.respondError(c, "machine_delete_failed", err, "machine_id", id)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary      List all attachments
// @Tags         admin
// @Produce      json
// @Success      200  {array}  models.Attachment
// @Router       /api/v1/admin/attachments [get]
// @Security     BearerAuth
func (h *Handler) listAttachments(c *gin.Context) {
	out, err := h.services.Catalog.ListAttachments(c.Request.Context())
	if err != nil {
		h.respondError(c, "attachments_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary      Create attachment
// @Description  machine_ids links the new attachment to those machines.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      attachmentRequest  true  "Attachment"
// @Success      201   {object}  map[string]int64
// @Failure      400   {object}  map[string]string
// @Router       /api/v1/admin/attachments [post]
// @Security     BearerAuth
func (h *Handler) createAttachment(c *gin.Context) {
	var req attachmentRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	id, err := h.services.Catalog.CreateAttachment(c.Request.Context(), req.model(0), req.MachineIDs)
	if err != nil {
		h.respondError(c, "attachment_create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// @Summary      Update attachment
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      int                true  "Attachment id"
// @Param        body  body      attachmentRequest  true  "Attachment"
// @Success      200   {object}  models.Attachment
// @Router       /api/v1/admin/attachments/{id} [put]
// @Security     BearerAuth
func (h *Handler) updateAttachment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req attachmentRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	a := req.model(id)
	if err := h.services.Catalog.UpdateAttachment(c.Request.Context(), a); err != nil {
		h.respondError(c, "attachment_update_failed", err, "attachment_id", id)
		return
	}
	c.JSON(http.StatusOK, a)
}

// @Summary      Delete attachment
// @Tags         admin
// @Param        id   path  int  true  "Attachment id"
// @Success      204
// @Router       /api/v1/admin/attachments/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteAttachment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.services.Catalog.DeleteAttachment(c.Request.Context(), id); err != nil {
		h.respondError(c, "attachment_delete_failed", err, "attachment_id", id)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary      Link attachment to machine
// @Tags         admin
// @Param        id       path  int  true  "Attachment id"
// @Param        machine  path  int  true  "Machine id"
// @Success      204
// @Router       /api/v1/admin/attachments/{id}/machines/{machine} [post]
// @Security     BearerAuth
func (h *Handler) linkAttachment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	mid, ok := pathID(c, "machine")
	if !ok {
		return
	}
	if err := h.services.Catalog.LinkAttachment(c.Request.Context(), id, mid); err != nil {
		h.respondError(c, "attachment_link_failed", err, "attachment_id", id, "machine_id", mid)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary      Unlink attachment from machine
// @Tags         admin
// @Param        id       path  int  true  "Attachment id"
// @Param        machine  path  int  true  "Machine id"
// @Success      204
// @Router       /api/v1/admin/attachments/{id}/machines/{machine} [delete]
// @Security     BearerAuth
func (h *Handler) unlinkAttachment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	mid, ok := pathID(c, "machine")
	if !ok {
		return
	}
	if err := h.services.Catalog.UnlinkAttachment(c.Request.Context(), id, mid); err != nil {
		h.respondError(c, "attachment_unlink_failed", err, "attachment_id", id, "machine_id", mid)
		return
	}
	c.Status(http.StatusNoContent)
}

func (r stepRequest) model(id, attachmentID int64) models.InstallationStep {
	return models.InstallationStep{
		ID:               id,
		AttachmentID:     attachmentID,
		StepNumber:       r.StepNumber,
		Description:      r.Description,
		ImageURL:         r.ImageURL,
		ScanRequired:     r.ScanRequired,
		ExpectedPosition: strings.ToUpper(strings.TrimSpace(r.ExpectedPosition)),
	}
}

// @Summary      Add installation step
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      int          true  "Attachment id"
// @Param        body  body      stepRequest  true  "Step"
// @Success      201   {object}  map[string]int64
// @Failure      400   {object}  map[string]string
// @Router       /api/v1/admin/attachments/{id}/steps [post]
// @Security     BearerAuth
func (h *Handler) createStep(c *gin.Context) {
	aid, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req stepRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	id, err := h.services.Catalog.CreateStep(c.Request.Context(), req.model(0, aid))
	if err != nil {
		h.respondError(c, "step_create_failed", err, "attachment_id", aid)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// @Summary      Update installation step
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      int          true  "Step id"
// @Param        body  body      stepRequest  true  "Step; attachment_id is required"
// @Success      200   {object}  models.InstallationStep
// @Router       /api/v1/admin/steps/{id} [put]
// @Security     BearerAuth
func (h *Handler) updateStep(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req stepRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	if req.AttachmentID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + "attachment_id is required"})
		return
	}
	st := req.model(id, req.AttachmentID)
	if err := h.services.Catalog.UpdateStep(c.Request.Context(), st); err != nil {
		h.respondError(c, "step_update_failed", err, "step_id", id)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Delete installation step
// @Tags         admin
// @Param        id   path  int  true  "Step id"
// @Success      204
// @Router       /api/v1/admin/steps/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteStep(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.services.Catalog.DeleteStep(c.Request.Context(), id); err != nil {
		h.respondError(c, "step_delete_failed", err, "step_id", id)
		return
	}
	c.Status(http.StatusNoContent)
}

func (r valveRequest) model(id, machineID int64) models.Valve {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return models.Valve{
		ID:           id,
		MachineID:    machineID,
		Number:       r.Number,
		FunctionName: r.FunctionName,
		Position:     r.Position,
		ValveType:    r.ValveType,
		Description:  r.Description,
		ColorCode:    r.ColorCode,
		PortALabel:   r.PortALabel,
		PortBLabel:   r.PortBLabel,
		Order:        r.Order,
		Active:       active,
	}
}

// @Summary      Add valve
// @Description  Inserting at an occupied order shifts the following valves down.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      int           true  "Machine id"
// @Param        body  body      valveRequest  true  "Valve"
// @Success      201   {object}  map[string]int64
// @Router       /api/v1/admin/machines/{id}/valves [post]
// @Security     BearerAuth
func (h *Handler) createValve(c *gin.Context) {
	mid, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req valveRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	id, err := h.services.MachineConfig.CreateValve(c.Request.Context(), req.model(0, mid))
	if err != nil {
		h.respondError(c, "valve_create_failed", err, "machine_id", mid)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// @Summary      Update valve
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      int           true  "Valve id"
// @Param        body  body      valveRequest  true  "Valve; machine_id is required"
// @Success      200   {object}  models.Valve
// @Router       /api/v1/admin/valves/{id} [put]
// @Security     BearerAuth
func (h *Handler) updateValve(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req valveRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	v := req.model(id, req.MachineID)
	if err := h.services.MachineConfig.UpdateValve(c.Request.Context(), v); err != nil {
		h.respondError(c, "valve_update_failed", err, "valve_id", id)
		return
	}
	c.JSON(http.StatusOK, v)
}

// @Summary      Delete valve
// @Tags         admin
// @Param        id   path  int  true  "Valve id"
// @Success      204
// @Router       /api/v1/admin/valves/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteValve(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.services.MachineConfig.DeleteValve(c.Request.Context(), id); err != nil {
		h.respondError(c, "valve_delete_failed", err, "valve_id", id)
		return
	}
	c.Status(http.StatusNoContent)
}

func (r couplingRequest) model(id, machineID int64) models.HoseCoupling {
	return models.HoseCoupling{
		ID:                  id,
		MachineID:           machineID,
		AttachmentID:        r.AttachmentID,
		HoseNumber:          r.HoseNumber,
		HoseColor:           r.HoseColor,
		HoseLabel:           r.HoseLabel,
		ValveID:             r.ValveID,
		Port:                r.Port,
		FunctionDescription: r.FunctionDescription,
		InstructionText:     r.InstructionText,
		ConnectionType:      r.ConnectionType,
		PressureRating:      r.PressureRating,
		FlowRating:          r.FlowRating,
		Order:               r.Order,
	}
}

// @Summary      Add hose coupling
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      int              true  "Machine id"
// @Param        body  body      couplingRequest  true  "Coupling"
// @Success      201   {object}  map[string]int64
// @Failure      400   {object}  map[string]string
// @Router       /api/v1/admin/machines/{id}/couplings [post]
// @Security     BearerAuth
func (h *Handler) createCoupling(c *gin.Context) {
	mid, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req couplingRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	id, err := h.services.MachineConfig.CreateCoupling(c.Request.Context(), req.model(0, mid))
	if err != nil {
		h.respondError(c, "coupling_create_failed", err, "machine_id", mid)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// @Summary      Update hose coupling
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      int              true  "Coupling id"
// @Param        body  body      couplingRequest  true  "Coupling; machine_id is required"
// @Success      200   {object}  models.HoseCoupling
// @Router       /api/v1/admin/couplings/{id} [put]
// @Security     BearerAuth
func (h *Handler) updateCoupling(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req couplingRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	cp := req.model(id, req.MachineID)
	if err := h.services.MachineConfig.UpdateCoupling(c.Request.Context(), cp); err != nil {
		h.respondError(c, "coupling_update_failed", err, "coupling_id", id)
		return
	}
	c.JSON(http.StatusOK, cp)
}

// @Summary      Delete hose coupling
// @Tags         admin
// @Param        id   path  int  true  "Coupling id"
// @Success      204
// @Router       /api/v1/admin/couplings/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteCoupling(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.services.MachineConfig.DeleteCoupling(c.Request.Context(), id); err != nil {
		h.respondError(c, "coupling_delete_failed", err, "coupling_id", id)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary      Add hydraulic input
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      int           true  "Machine id"
// @Param        body  body      inputRequest  true  "Input"
// @Success      201   {object}  map[string]int64
// @Router       /api/v1/admin/machines/{id}/hydraulic-inputs [post]
// @Security     BearerAuth
func (h *Handler) createHydraulicInput(c *gin.Context) {
	mid, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req inputRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	in := models.HydraulicInput{MachineID: mid, InputNumber: req.InputNumber, Color: req.Color, Order: req.Order}
	id, err := h.services.MachineConfig.CreateHydraulicInput(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, "hydraulic_input_create_failed", err, "machine_id", mid)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// @Summary      Update hydraulic input
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      int           true  "Input id"
// @Param        body  body      inputRequest  true  "Input; machine_id is required"
// @Success      200   {object}  models.HydraulicInput
// @Router       /api/v1/admin/hydraulic-inputs/{id} [put]
// @Security     BearerAuth
func (h *Handler) updateHydraulicInput(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req inputRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	in := models.HydraulicInput{ID: id, MachineID: req.MachineID, InputNumber: req.InputNumber, Color: req.Color, Order: req.Order}
	if err := h.services.MachineConfig.UpdateHydraulicInput(c.Request.Context(), in); err != nil {
		h.respondError(c, "hydraulic_input_update_failed", err, "input_id", id)
		return
	}
	c.JSON(http.StatusOK, in)
}

// @Summary      Delete hydraulic input
// @Tags         admin
// @Param        id   path  int  true  "Input id"
// @Success      204
// @Router       /api/v1/admin/hydraulic-inputs/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteHydraulicInput(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.services.MachineConfig.DeleteHydraulicInput(c.Request.Context(), id); err != nil {
		h.respondError(c, "hydraulic_input_delete_failed", err, "input_id", id)
		return
	}
	c.Status(http.StatusNoContent)
}
