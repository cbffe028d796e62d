package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"tripsplit/internal/apperr"
	"tripsplit/internal/service"
)

// FxHandler serves exchange rate lookups.
type FxHandler struct {
	fx *service.FxService
}

// NewFxHandler creates a new FxHandler.
func NewFxHandler(fx *service.FxService) *FxHandler {
	return &FxHandler{fx: fx}
}

// WeeklyRates handles GET /api/fx/weekly?currency=USD&date=2026-05-07.
// The date is optional and defaults to today.
func (h *FxHandler) WeeklyRates(c *gin.Context) {
	currency := c.Query("currency")
	if currency == "" {
		respondError(c, apperr.Invalid("currency query param required"))
		return
	}

	var end time.Time
	if raw := c.Query("date"); raw != "" {
		var err error
		if end, err = time.Parse("2006-01-02", raw); err != nil {
			respondError(c, apperr.Invalid("date must be in YYYY-MM-DD format"))
			return
		}
	}

	rates, err := h.fx.WeeklyRates(c.Request.Context(), end, currency)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "weekly rates", rates)
}
