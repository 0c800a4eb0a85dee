package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/greenloop/ewaste-pickup/internal/model"
	"github.com/greenloop/ewaste-pickup/internal/repository"
)

// UserHandler exposes the pass-through user surface: listing, lookup
// and the admin-only role update.
type UserHandler struct {
	Users *repository.UserRepo
}

func NewUserHandler(u *repository.UserRepo) *UserHandler { return &UserHandler{Users: u} }

type userResp struct {
	ID      uint64  `json:"id"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Address *string `json:"address"`
	Role    string  `json:"role"`
}

func toUserResp(u model.User) userResp {
	return userResp{ID: u.ID, Name: u.Name, Email: u.Email, Address: u.Address, Role: string(u.Role)}
}

// List returns all users.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list users failed"})
	}
	out := make([]userResp, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResp(u))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one user by id.
func (h *UserHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

type updateRoleReq struct {
	UserID uint64 `json:"user_id"`
	Role   string `json:"role"`
}

// UpdateRole changes a user's role. The route is admin-guarded; the
// role value must name one of the three known roles.
func (h *UserHandler) UpdateRole(c echo.Context) error {
	var req updateRoleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.UserID == 0 || req.Role == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id/role required"})
	}
	role, ok := model.ParseRole(strings.ToLower(strings.TrimSpace(req.Role)))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.UpdateRole(ctx, req.UserID, role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update role failed"})
	}
	u, err := h.Users.GetByID(ctx, req.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "user role updated",
		"user":    echo.Map{"id": u.ID, "email": u.Email, "role": string(u.Role)},
	})
}
