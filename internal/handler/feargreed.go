package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetFearGreed godoc
// @Summary      Get the crypto fear & greed index
// @Description  Returns the latest alternative.me fear & greed reading, for display next to sentiment verdicts
// @Tags         market
// @Produce      json
// @Success      200  {object}  domain.FearGreedPoint
// @Failure      503  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/feargreed [get]
func (h *Handler) GetFearGreed(c *gin.Context) {
	if h.marketContext == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "market context service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-fear-greed")
	defer span.End()

	point, err := h.marketContext.GetFearGreed(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, point)
}
