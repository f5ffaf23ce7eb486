package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mageytel/mageypack-service/internal/repository"
)

// RecnoHandler serves the next-identifier preview.
type RecnoHandler struct {
	Recs *repository.RecommendationRepo
}

func NewRecnoHandler(r *repository.RecommendationRepo) *RecnoHandler {
	if r == nil {
		panic("nil repository passed to NewRecnoHandler")
	}
	return &RecnoHandler{Recs: r}
}

// Next returns max(recno)+1, or null when the table is empty.  This is
// a preview for the UI only: package creation allocates its base recno
// inside the insert transaction and never trusts this value.
func (h *RecnoHandler) Next(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	max, ok, err := h.Recs.MaxRecNo(ctx)
	if err != nil {
		log.Printf("recno: max query failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error fetching the highest recno"})
	}
	if !ok {
		return c.JSON(http.StatusOK, echo.Map{"recno": nil})
	}
	return c.JSON(http.StatusOK, echo.Map{"recno": max + 1})
}
