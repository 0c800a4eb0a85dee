package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/greenloop/ewaste-pickup/internal/repository"
)

// CategoryHandler lists the item categories residents pick from when
// labelling pickup items. Read-only; category management lives
// outside this service.
type CategoryHandler struct {
	Categories *repository.CategoryRepo
}

func NewCategoryHandler(r *repository.CategoryRepo) *CategoryHandler {
	return &CategoryHandler{Categories: r}
}

type categoryResp struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	HazardLevel int     `json:"hazard_level"`
	Description *string `json:"description"`
}

// List returns all item categories.
func (h *CategoryHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cats, err := h.Categories.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list categories failed"})
	}
	out := make([]categoryResp, 0, len(cats))
	for _, cat := range cats {
		out = append(out, categoryResp{ID: cat.ID, Name: cat.Name, HazardLevel: cat.HazardLevel, Description: cat.Description})
	}
	return c.JSON(http.StatusOK, out)
}
