package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/greenloop/ewaste-pickup/internal/lifecycle"
	"github.com/greenloop/ewaste-pickup/internal/model"
	"github.com/greenloop/ewaste-pickup/internal/queue"
	"github.com/greenloop/ewaste-pickup/internal/repository"
	queue_publisher "github.com/greenloop/ewaste-pickup/internal/service"
)

// PickupHandler owns the pickup request lifecycle endpoints: creation,
// role-scoped listing and status/assignment transitions.
type PickupHandler struct {
	Pickups *repository.PickupRepo
	Users   *repository.UserRepo
}

func NewPickupHandler(p *repository.PickupRepo, u *repository.UserRepo) *PickupHandler {
	return &PickupHandler{Pickups: p, Users: u}
}

// ----- DTOs -----

type pickupItemReq struct {
	CategoryID uint64 `json:"category_id"`
	Quantity   uint32 `json:"quantity"`
}

type createPickupReq struct {
	ResidentID    uint64          `json:"resident_id"`
	Address       string          `json:"address"`
	PreferredTime *string         `json:"preferred_time"`
	Urgency       string          `json:"urgency"`
	Items         []pickupItemReq `json:"items"`
}

type patchPickupReq struct {
	Status              *string `json:"status"`
	AssignedCollectorID *uint64 `json:"assigned_collector_id"`
}

// Create registers a new pickup request together with its items as a
// single atomic unit. The resident must resolve to an existing user;
// otherwise nothing is persisted.
func (h *PickupHandler) Create(c echo.Context) error {
	var req createPickupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ResidentID == 0 || req.Address == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "resident_id/address required"})
	}
	if !model.ValidUrgency(req.Urgency) {
		req.Urgency = model.UrgencyStandard
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, req.ResidentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "resident not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	items := make([]repository.ItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, repository.ItemInput{CategoryID: it.CategoryID, Quantity: it.Quantity})
	}

	detail, err := h.Pickups.Create(ctx, req.ResidentID, req.Address, req.PreferredTime, req.Urgency, items)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create pickup failed"})
	}
	return c.JSON(http.StatusOK, detail)
}

// List returns one page of pickup requests scoped by role: residents
// see their own, collectors and admins see everything so pending
// requests stay discoverable. Ordering is newest first with a fixed
// page size.
func (h *PickupHandler) List(c echo.Context) error {
	role := model.Role(c.QueryParam("role"))
	var userID uint64
	if v := c.QueryParam("user_id"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user_id"})
		}
		userID = n
	}
	offset := 0
	if v := c.QueryParam("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid offset"})
		}
		offset = n
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	details, err := h.Pickups.List(ctx, role, userID, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list pickups failed"})
	}
	return c.JSON(http.StatusOK, details)
}

// Patch applies a partial update: only supplied fields change.
// Supplying assigned_collector_id on a pending request flips status to
// assigned in the same write, so the record can never be observed with
// a collector set while still pending. Whoever calls may transition
// assigned work onward; caller identity is deliberately not matched
// against the assigned collector, and the assignment target only has
// to exist, not to hold the collector role.
func (h *PickupHandler) Patch(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req patchPickupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	current, err := h.Pickups.GetRecord(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	status := current.Status
	if req.Status != nil {
		if !lifecycle.ValidStatus(*req.Status) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
		}
		if err := lifecycle.ValidateTransition(current.Status, model.PickupStatus(*req.Status)); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		status = model.PickupStatus(*req.Status)
	}

	collectorID := current.AssignedCollectorID
	if req.AssignedCollectorID != nil {
		if _, err := h.Users.GetByID(ctx, *req.AssignedCollectorID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "collector not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		collectorID = req.AssignedCollectorID
		if status == model.StatusPending {
			status = model.StatusAssigned
		}
	}
	// A request without a collector must stay pending; reject status
	// words that would break that invariant.
	if collectorID == nil && status != model.StatusPending {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "collector required for this status"})
	}

	if err := h.Pickups.UpdateStatusAssignment(ctx, id, status, collectorID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update pickup failed"})
	}

	detail, err := h.Pickups.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load pickup failed"})
	}

	h.publishTransition(ctx, current, detail, status)

	return c.JSON(http.StatusOK, detail)
}

// publishTransition emits broker events for the transitions downstream
// systems care about. Failures are already logged by the publisher and
// never affect the response.
func (h *PickupHandler) publishTransition(ctx context.Context, before model.PickupRequest, after *repository.PickupDetail, status model.PickupStatus) {
	if after.AssignedCollectorID == nil {
		return
	}
	now := time.Now().UTC().Format(time.RFC3339)
	switch {
	case status == model.StatusAssigned && before.Status == model.StatusPending:
		_ = queue_publisher.PublishPickupAssigned(ctx, queue.PickupAssignedEvent{
			PickupID:    after.ID,
			ResidentID:  after.ResidentID,
			CollectorID: *after.AssignedCollectorID,
			Address:     after.Address,
			Urgency:     after.Urgency,
			AssignedAt:  now,
		})
	case status == model.StatusCompleted && before.Status != model.StatusCompleted:
		_ = queue_publisher.PublishPickupCompleted(ctx, queue.PickupCompletedEvent{
			PickupID:    after.ID,
			ResidentID:  after.ResidentID,
			CollectorID: *after.AssignedCollectorID,
			ItemCount:   len(after.Items),
			CompletedAt: now,
		})
	}
}
