package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mageytel/mageypack-service/internal/middleware"
	"github.com/mageytel/mageypack-service/internal/repository"
	"github.com/mageytel/mageypack-service/internal/service"
)

// RecommendationHandler serves the row-level CRUD endpoints.  These
// operate on single day-variant rows; the package-level workflows live
// in PackageHandler.
type RecommendationHandler struct {
	Recs  *repository.RecommendationRepo
	Cache *middleware.CacheInvalidator
}

func NewRecommendationHandler(r *repository.RecommendationRepo, inv *middleware.CacheInvalidator) *RecommendationHandler {
	if r == nil {
		panic("nil repository passed to NewRecommendationHandler")
	}
	return &RecommendationHandler{Recs: r, Cache: inv}
}

// List returns every recommendation row.
func (h *RecommendationHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	recs, err := h.Recs.ListAll(ctx)
	if err != nil {
		log.Printf("recommendations: list failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error fetching recommendations"})
	}
	return c.JSON(http.StatusOK, recs)
}

// Create validates and inserts one row.  A duplicate recno is a client
// error, not a server fault: it means the caller raced another
// creation for the same identifier.
func (h *RecommendationHandler) Create(c echo.Context) error {
	var req recommendationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": validationMessages(err)})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rec := req.toModel()
	if err := h.Recs.Create(ctx, rec); err != nil {
		if errors.Is(err, repository.ErrDuplicateRecNo) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "A recommendation with this Rec No already exists."})
		}
		if errors.Is(err, repository.ErrDuplicateDay) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "This package already has a recommendation for this day."})
		}
		log.Printf("recommendations: create recno=%d failed: %v", rec.RecNo, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error creating recommendation"})
	}
	h.Cache.Invalidate(ctx)
	return c.JSON(http.StatusCreated, rec)
}

// Get returns one row by recno.  With ?getVariants=true it instead
// resolves the row's mageypackid and returns every day-variant of that
// package sorted by day; optional startDate/endDate query parameters
// bound the day range.
func (h *RecommendationHandler) Get(c echo.Context) error {
	recno, err := parseRecNo(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if c.QueryParam("getVariants") == "true" {
		return h.getVariants(ctx, c, recno)
	}

	rec, err := h.Recs.GetByRecNo(ctx, recno)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Recommendation not found"})
		}
		log.Printf("recommendations: get recno=%d failed: %v", recno, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error fetching recommendation"})
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *RecommendationHandler) getVariants(ctx context.Context, c echo.Context, recno int64) error {
	rec, err := h.Recs.GetByRecNo(ctx, recno)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "No mageypackid found for the provided recid"})
		}
		log.Printf("recommendations: resolve pack for recno=%d failed: %v", recno, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error fetching variants"})
	}

	startDay := queryDay(c, "startDate", 1)
	endDay := queryDay(c, "endDate", service.PackageDays)
	if startDay > endDay {
		startDay, endDay = endDay, startDay
	}

	variants, err := h.Recs.ListByPackID(ctx, rec.MageyPackID, startDay, endDay)
	if err != nil {
		log.Printf("recommendations: list variants for %q failed: %v", rec.MageyPackID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error fetching variants"})
	}
	if len(variants) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "No variants found"})
	}
	return c.JSON(http.StatusOK, variants)
}

// queryDay parses a day query parameter, clamping to the valid 1..31
// range and falling back to def when absent or malformed.
func queryDay(c echo.Context, name string, def int) int {
	v := c.QueryParam(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > service.PackageDays {
		return def
	}
	return n
}

// Update validates and overwrites one row by recno.
func (h *RecommendationHandler) Update(c echo.Context) error {
	recno, err := parseRecNo(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req recommendationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": validationMessages(err)})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rec := req.toModel()
	if err := h.Recs.Update(ctx, recno, rec); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Recommendation not found"})
		}
		if errors.Is(err, repository.ErrDuplicateDay) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "This package already has a recommendation for this day."})
		}
		log.Printf("recommendations: update recno=%d failed: %v", recno, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error updating recommendation"})
	}
	h.Cache.Invalidate(ctx)
	rec.RecNo = recno
	return c.JSON(http.StatusOK, rec)
}

// Delete removes one row by recno.
func (h *RecommendationHandler) Delete(c echo.Context) error {
	recno, err := parseRecNo(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Recs.Delete(ctx, recno); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Recommendation not found"})
		}
		log.Printf("recommendations: delete recno=%d failed: %v", recno, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error deleting recommendation"})
	}
	h.Cache.Invalidate(ctx)
	return c.JSON(http.StatusOK, echo.Map{"message": "Recommendation deleted"})
}
