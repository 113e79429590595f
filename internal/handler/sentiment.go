package handler

import (
	"net/http"
	"strings"

	"crypto-pulse/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetSentiment godoc
// @Summary      Get aggregated sentiment for a crypto asset
// @Description  Fetches recent social, forum, and news chatter, scores it, and returns one verdict with per-source breakdowns
// @Tags         sentiment
// @Produce      json
// @Param        symbol   path   string  true   "Asset symbol (e.g., BTC, ETH)"
// @Param        refresh  query  bool    false  "Bypass the cached verdict and collect fresh data"  default(false)
// @Success      200  {object}  domain.SentimentVerdict
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/sentiment/{symbol} [get]
func (h *Handler) GetSentiment(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-sentiment")
	defer span.End()

	symbol := strings.ToUpper(c.Param("symbol"))
	span.SetAttributes(attribute.String("symbol", symbol))

	if _, ok := domain.SymbolAliases[symbol]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "unsupported symbol: " + symbol,
			"supported_symbols": domain.SupportedSymbols,
		})
		return
	}

	refresh := c.Query("refresh") == "true"

	verdict, err := h.sentimentService.Analyze(ctx, symbol, refresh)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, verdict)
}
