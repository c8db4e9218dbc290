package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary      NFC reader status
// @Description  Latest snapshot of the reader. A reader that cannot be reached reports error=true instead of failing.
// @Tags         nfc
// @Produce      json
// @Param        refresh  query     bool  false  "Poll the reader now instead of serving the latest snapshot"
// @Success      200      {object}  models.StatusSnapshot
// @Router       /api/v1/nfc/status [get]
// @Security     BearerAuth
func (h *Handler) getStatus(c *gin.Context) {
	ctx := c.Request.Context()
	if c.Query("refresh") == "true" {
		c.JSON(http.StatusOK, h.services.Status.PollNow(ctx))
		return
	}
	c.JSON(http.StatusOK, h.services.Status.Current(ctx))
}
