package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mageytel/mageypack-service/internal/middleware"
	"github.com/mageytel/mageypack-service/internal/queue"
	"github.com/mageytel/mageypack-service/internal/repository"
	"github.com/mageytel/mageypack-service/internal/service"
)

// PackageHandler serves the package-level reconciler workflows:
// transactional 31-day fan-out on creation, and diff + day-range bulk
// update on edit.
type PackageHandler struct {
	Recon *service.Reconciler
	Cache *middleware.CacheInvalidator
}

func NewPackageHandler(recon *service.Reconciler, inv *middleware.CacheInvalidator) *PackageHandler {
	if recon == nil {
		panic("nil reconciler passed to NewPackageHandler")
	}
	return &PackageHandler{Recon: recon, Cache: inv}
}

// Create expands one template submission into the 31 day-variant rows
// of a new package.  Allocation and insertion happen in a single
// transaction, so a failure creates nothing.
func (h *PackageHandler) Create(c echo.Context) error {
	var req packageTemplateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": validationMessages(err)})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	tpl := req.toTemplate()
	rows, err := h.Recon.CreatePackage(ctx, tpl)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateRecNo) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "A recommendation with this Rec No already exists."})
		}
		log.Printf("packages: create %q failed: %v", tpl.PackageName, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error creating package"})
	}

	h.Cache.Invalidate(ctx)

	base := rows[0].RecNo
	packID := rows[0].MageyPackID
	// Broker failures must not fail a creation that already committed.
	_ = queue.PublishPackageCreated(c.Request().Context(), queue.PackageCreatedEvent{
		BaseRecNo:   base,
		MageyPackID: packID,
		PackageName: tpl.PackageName,
		BundlePrice: tpl.BundlePrice.String(),
		Rows:        len(rows),
		CreatedBy:   userEmail(c),
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"base_recno":      base,
		"mageypackid":     packID,
		"rows":            len(rows),
		"recommendations": rows,
	})
}

// Diff computes the confirmation diff between the stored baseline row
// (by recno) and the edited template.  Nothing is written.
func (h *PackageHandler) Diff(c echo.Context) error {
	recno, err := parseRecNo(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req packageTemplateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": validationMessages(err)})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	diff, err := h.Recon.DiffAgainst(ctx, recno, req.toTemplate())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Recommendation not found"})
		}
		log.Printf("packages: diff recno=%d failed: %v", recno, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error computing diff"})
	}
	return c.JSON(http.StatusOK, echo.Map{"recno": recno, "diff": diff})
}

type bulkApplyReq struct {
	packageTemplateReq
	StartDay int `json:"start_day" validate:"required,min=1,max=31"`
	EndDay   int `json:"end_day" validate:"required,min=1,max=31"`
}

// Apply overwrites every day-variant of the baseline's package within
// [start_day, end_day] with the template, preserving each row's own
// day and recno.  Rows are written one by one with no rollback; a
// mid-way failure reports the days already written and the day that
// failed, and those rows stay written.
func (h *PackageHandler) Apply(c echo.Context) error {
	recno, err := parseRecNo(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req bulkApplyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": validationMessages(err)})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	res, err := h.Recon.BulkApply(ctx, recno, req.toTemplate(), req.StartDay, req.EndDay)
	if err != nil {
		var partial *service.PartialUpdateError
		if errors.As(err, &partial) {
			log.Printf("packages: bulk apply recno=%d stopped at day %d: %v", recno, partial.FailedDay, partial.Err)
			// Some rows were written, so the cached listing is stale too.
			h.Cache.Invalidate(ctx)
			h.publishUpdated(c, res, true)
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"error":        "Bulk update failed part-way; already updated rows were not rolled back",
				"updated_days": partial.UpdatedDays,
				"failed_day":   partial.FailedDay,
			})
		}
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "No variants found"})
		}
		log.Printf("packages: bulk apply recno=%d failed: %v", recno, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error updating package"})
	}

	h.Cache.Invalidate(ctx)
	h.publishUpdated(c, res, false)
	return c.JSON(http.StatusOK, res)
}

func (h *PackageHandler) publishUpdated(c echo.Context, res service.BulkApplyResult, partial bool) {
	if res.MageyPackID == "" {
		return
	}
	_ = queue.PublishPackageUpdated(c.Request().Context(), queue.PackageUpdatedEvent{
		MageyPackID: res.MageyPackID,
		StartDay:    res.StartDay,
		EndDay:      res.EndDay,
		UpdatedDays: res.UpdatedDays,
		Partial:     partial,
		UpdatedBy:   userEmail(c),
		UpdatedAt:   time.Now().UTC().Format(time.RFC3339),
	})
}
