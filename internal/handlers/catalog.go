package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary      List machines
// @Tags         catalog
// @Produce      json
// @Success      200  {array}   models.Machine
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/machines [get]
// @Security     BearerAuth
func (h *Handler) listMachines(c *gin.Context) {
	out, err := h.services.Catalog.ListMachines(c.Request.Context())
	if err != nil {
		h.respondError(c, "machines_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary      Get machine
// @Tags         catalog
// @Produce      json
// @Param        id   path      int  true  "Machine id"
// @Success      200  {object}  models.Machine
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/machines/{id} [get]
// @Security     BearerAuth
func (h *Handler) getMachine(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	m, err := h.services.Catalog.GetMachine(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "machine_get_failed", err, "machine_id", id)
		return
	}
	c.JSON(http.StatusOK, m)
}

// @Summary      List attachments fitting a machine
// @Tags         catalog
// @Produce      json
// @Param        id   path      int  true  "Machine id"
// @Success      200  {array}   models.Attachment
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/machines/{id}/attachments [get]
// @Security     BearerAuth
func (h *Handler) listMachineAttachments(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.services.Catalog.ListMachineAttachments(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "machine_attachments_list_failed", err, "machine_id", id)
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary      List a machine's valves
// @Tags         machine-config
// @Produce      json
// @Param        id   path      int  true  "Machine id"
// @Success      200  {array}   models.Valve
// @Router       /api/v1/machines/{id}/valves [get]
// @Security     BearerAuth
func (h *Handler) listValves(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.services.MachineConfig.ListValves(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "valves_list_failed", err, "machine_id", id)
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary      List a machine's hose couplings
// @Tags         machine-config
// @Produce      json
// @Param        id   path      int  true  "Machine id"
// @Success      200  {array}   models.HoseCoupling
// @Router       /api/v1/machines/{id}/couplings [get]
// @Security     BearerAuth
func (h *Handler) listCouplings(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.services.MachineConfig.ListCouplings(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "couplings_list_failed", err, "machine_id", id)
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary      List a machine's hydraulic inputs
// @Tags         machine-config
// @Produce      json
// @Param        id   path      int  true  "Machine id"
// @Success      200  {array}   models.HydraulicInput
// @Router       /api/v1/machines/{id}/hydraulic-inputs [get]
// @Security     BearerAuth
func (h *Handler) listHydraulicInputs(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.services.MachineConfig.ListHydraulicInputs(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "hydraulic_inputs_list_failed", err, "machine_id", id)
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary      Get attachment
// @Tags         catalog
// @Produce      json
// @Param        id   path      int  true  "Attachment id"
// @Success      200  {object}  models.Attachment
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/attachments/{id} [get]
// @Security     BearerAuth
func (h *Handler) getAttachment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	a, err := h.services.Catalog.GetAttachment(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "attachment_get_failed", err, "attachment_id", id)
		return
	}
	c.JSON(http.StatusOK, a)
}

// @Summary      List installation steps of an attachment
// @Tags         catalog
// @Produce      json
// @Param        id   path      int  true  "Attachment id"
// @Success      200  {array}   models.InstallationStep
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/attachments/{id}/steps [get]
// @Security     BearerAuth
func (h *Handler) listSteps(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.services.Catalog.ListSteps(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "steps_list_failed", err, "attachment_id", id)
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary      Describe a tag position
// @Description  Unknown positions answer 404 with a placeholder record.
// @Tags         catalog
// @Produce      json
// @Param        position  path      string  true  "Tag position"  Enums(SUPPLY_LEFT,RETURN_RIGHT,LEAK)
// @Success      200       {object}  models.TagInfo
// @Failure      404       {object}  map[string]interface{}
// @Router       /api/v1/tags/{position} [get]
// @Security     BearerAuth
func (h *Handler) getTag(c *gin.Context) {
	info, known := h.services.Catalog.LookupTag(c.Param("position"))
	if !known {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown tag position", "tag": info})
		return
	}
	c.JSON(http.StatusOK, info)
}
