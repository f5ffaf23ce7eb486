package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mageytel/mageypack-service/internal/model"
	"github.com/mageytel/mageypack-service/internal/repository"
)

// PackageDays is the number of day-variant rows every package carries.
const PackageDays = 31

// RecommendationStore is the subset of the recommendation repository
// the reconciler needs.  Declared here so the workflow can be tested
// against an in-memory fake.
type RecommendationStore interface {
	GetByRecNo(ctx context.Context, recno int64) (model.Recommendation, error)
	ListByPackID(ctx context.Context, packID string, startDay, endDay int) ([]model.Recommendation, error)
	Update(ctx context.Context, recno int64, rec model.Recommendation) error
	CreatePackageTx(ctx context.Context, build func(base int64) []model.Recommendation) ([]model.Recommendation, error)
}

// PackageTemplate is one validated form submission: the allowance
// values shared by every day-variant of a package.  Per-category
// prices are derived by the allocator, never submitted.
type PackageTemplate struct {
	BundlePrice   decimal.Decimal
	DataVolume    int64
	DataValidity  int
	OnnetMin      int64
	OnnetValidity int
	LocalMin      int64
	LocalValidity int
	SMS           int64
	SMSValidity   int
	PackageName   string
	Verbage       *string
	ShortDesc     string
	RibbonText    *string
	Giftpack      string
}

func (t PackageTemplate) quantities() AllowanceQuantities {
	return AllowanceQuantities{
		DataVolume: t.DataVolume,
		OnnetMin:   t.OnnetMin,
		LocalMin:   t.LocalMin,
		SMS:        t.SMS,
	}
}

// row materializes the template as one day-variant with the given
// identity (recno, day, pack id) and allocated prices.
func (t PackageTemplate) row(recno int64, day int, packID string, p AllowancePrices) model.Recommendation {
	return model.Recommendation{
		RecNo:         recno,
		Day:           day,
		BundlePrice:   t.BundlePrice,
		DataVolume:    t.DataVolume,
		DataValidity:  t.DataValidity,
		DataPrice:     p.Data,
		OnnetMin:      t.OnnetMin,
		OnnetValidity: t.OnnetValidity,
		OnnetPrice:    p.Onnet,
		LocalMin:      t.LocalMin,
		LocalValidity: t.LocalValidity,
		LocalPrice:    p.Local,
		SMS:           t.SMS,
		SMSValidity:   t.SMSValidity,
		SMSPrice:      p.SMS,
		PackageName:   t.PackageName,
		Verbage:       t.Verbage,
		ShortDesc:     t.ShortDesc,
		RibbonText:    t.RibbonText,
		Giftpack:      t.Giftpack,
		MageyPackID:   packID,
	}
}

// Reconciler implements the package variant workflow: price
// allocation, 31-day fan-out on creation, and diff + day-range bulk
// update on edit.
type Reconciler struct {
	Store RecommendationStore
}

func NewReconciler(store RecommendationStore) *Reconciler {
	if store == nil {
		panic("nil store passed to NewReconciler")
	}
	return &Reconciler{Store: store}
}

// CreatePackage expands one template into PackageDays rows (day 1..31,
// recno base..base+30, shared mageypackid) and inserts them in a
// single transaction.  The base recno is allocated inside that
// transaction, so concurrent creations cannot hand out overlapping
// ranges.
func (r *Reconciler) CreatePackage(ctx context.Context, tpl PackageTemplate) ([]model.Recommendation, error) {
	prices := AllocatePrices(tpl.BundlePrice, tpl.quantities())
	return r.Store.CreatePackageTx(ctx, func(base int64) []model.Recommendation {
		packID := MageyPackID(base, tpl.PackageName)
		rows := make([]model.Recommendation, 0, PackageDays)
		for day := 1; day <= PackageDays; day++ {
			rows = append(rows, tpl.row(base+int64(day-1), day, packID, prices))
		}
		return rows
	})
}

// FieldDiff is one compared field of the edit confirmation screen.
type FieldDiff struct {
	Field    string `json:"field"`
	OldValue string `json:"oldValue"`
	NewValue string `json:"newValue"`
	Changed  bool   `json:"changed"`
}

// DiffAgainst loads the baseline row by recno, applies the template to
// it (preserving the row's identity) and returns the field-level diff
// the client shows for confirmation.
func (r *Reconciler) DiffAgainst(ctx context.Context, recno int64, tpl PackageTemplate) ([]FieldDiff, error) {
	baseline, err := r.Store.GetByRecNo(ctx, recno)
	if err != nil {
		return nil, err
	}
	prices := AllocatePrices(tpl.BundlePrice, tpl.quantities())
	next := tpl.row(baseline.RecNo, baseline.Day, baseline.MageyPackID, prices)
	return Diff(baseline, next), nil
}

// Diff compares two day-variants field by field.  Derived prices, the
// long verbage text and the per-row identity (day, recno) are excluded;
// everything else is reported with literal "0" for numeric zero and
// "N/A" for absent values, matching what the confirmation screen
// renders.
func Diff(prev, next model.Recommendation) []FieldDiff {
	out := make([]FieldDiff, 0, 14)
	add := func(field, oldV, newV string) {
		out = append(out, FieldDiff{Field: field, OldValue: oldV, NewValue: newV, Changed: oldV != newV})
	}
	add("bundle_price", prev.BundlePrice.String(), next.BundlePrice.String())
	add("data_volume", renderInt(prev.DataVolume), renderInt(next.DataVolume))
	add("data_validity", renderInt(int64(prev.DataValidity)), renderInt(int64(next.DataValidity)))
	add("onnet_min", renderInt(prev.OnnetMin), renderInt(next.OnnetMin))
	add("onnet_validity", renderInt(int64(prev.OnnetValidity)), renderInt(int64(next.OnnetValidity)))
	add("local_min", renderInt(prev.LocalMin), renderInt(next.LocalMin))
	add("local_validity", renderInt(int64(prev.LocalValidity)), renderInt(int64(next.LocalValidity)))
	add("sms", renderInt(prev.SMS), renderInt(next.SMS))
	add("sms_validity", renderInt(int64(prev.SMSValidity)), renderInt(int64(next.SMSValidity)))
	add("package_name", renderStr(prev.PackageName), renderStr(next.PackageName))
	add("Short_Desc", renderStr(prev.ShortDesc), renderStr(next.ShortDesc))
	add("Ribbon_text", renderOptStr(prev.RibbonText), renderOptStr(next.RibbonText))
	add("Giftpack", renderStr(prev.Giftpack), renderStr(next.Giftpack))
	add("mageypackid", renderStr(prev.MageyPackID), renderStr(next.MageyPackID))
	return out
}

// renderInt prints a numeric value, keeping zero as a literal "0"
// instead of collapsing it into the empty marker.
func renderInt(v int64) string { return fmt.Sprintf("%d", v) }

func renderStr(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}

func renderOptStr(v *string) string {
	if v == nil {
		return "N/A"
	}
	return renderStr(*v)
}

// PartialUpdateError reports a bulk update that stopped mid-way.  Rows
// in UpdatedDays were written and stay written; there is no rollback.
type PartialUpdateError struct {
	FailedDay   int
	UpdatedDays []int
	Err         error
}

func (e *PartialUpdateError) Error() string {
	return fmt.Sprintf("bulk update failed at day %d after %d rows: %v", e.FailedDay, len(e.UpdatedDays), e.Err)
}

func (e *PartialUpdateError) Unwrap() error { return e.Err }

// BulkApplyResult summarizes a completed (or partially completed)
// day-range bulk update.
type BulkApplyResult struct {
	MageyPackID string `json:"mageypackid"`
	StartDay    int    `json:"start_day"`
	EndDay      int    `json:"end_day"`
	UpdatedDays []int  `json:"updated_days"`
}

// BulkApply re-fetches every day-variant of the baseline's package
// with day in [startDay, endDay] and overwrites each with the
// template, preserving the row's own day and recno.  Days arriving in
// descending order are swapped.  Rows are updated one by one exactly
// like the workflow this replaces; a failure surfaces as
// *PartialUpdateError with the progress made so far.
func (r *Reconciler) BulkApply(ctx context.Context, recno int64, tpl PackageTemplate, startDay, endDay int) (BulkApplyResult, error) {
	if startDay > endDay {
		startDay, endDay = endDay, startDay
	}
	baseline, err := r.Store.GetByRecNo(ctx, recno)
	if err != nil {
		return BulkApplyResult{}, err
	}
	variants, err := r.Store.ListByPackID(ctx, baseline.MageyPackID, startDay, endDay)
	if err != nil {
		return BulkApplyResult{}, err
	}
	if len(variants) == 0 {
		return BulkApplyResult{}, repository.ErrNotFound
	}
	res := BulkApplyResult{
		MageyPackID: baseline.MageyPackID,
		StartDay:    startDay,
		EndDay:      endDay,
		UpdatedDays: []int{},
	}
	prices := AllocatePrices(tpl.BundlePrice, tpl.quantities())
	for _, v := range variants {
		row := tpl.row(v.RecNo, v.Day, v.MageyPackID, prices)
		if err := r.Store.Update(ctx, v.RecNo, row); err != nil {
			return res, &PartialUpdateError{FailedDay: v.Day, UpdatedDays: res.UpdatedDays, Err: err}
		}
		res.UpdatedDays = append(res.UpdatedDays, v.Day)
	}
	return res, nil
}
