package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/greenloop/ewaste-pickup/internal/model"
	"github.com/greenloop/ewaste-pickup/internal/repository"
)

// AnalyticsHandler aggregates pickup counts for dashboards. Plain
// pass-through over the store's count operations.
type AnalyticsHandler struct {
	Pickups *repository.PickupRepo
}

func NewAnalyticsHandler(p *repository.PickupRepo) *AnalyticsHandler {
	return &AnalyticsHandler{Pickups: p}
}

type summaryResp struct {
	TotalPickups     uint64 `json:"total_pickups"`
	CompletedPickups uint64 `json:"completed_pickups"`
	PendingPickups   uint64 `json:"pending_pickups"`
	TotalItems       uint64 `json:"total_items"`
}

// Summary returns overall pickup and item counts.
func (h *AnalyticsHandler) Summary(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	total, err := h.Pickups.CountByStatus(ctx, "")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "count failed"})
	}
	completed, err := h.Pickups.CountByStatus(ctx, model.StatusCompleted)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "count failed"})
	}
	pending, err := h.Pickups.CountByStatus(ctx, model.StatusPending)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "count failed"})
	}
	items, err := h.Pickups.SumItemQuantity(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "count failed"})
	}

	return c.JSON(http.StatusOK, summaryResp{
		TotalPickups:     total,
		CompletedPickups: completed,
		PendingPickups:   pending,
		TotalItems:       items,
	})
}
