package service

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mageytel/mageypack-service/internal/model"
	"github.com/mageytel/mageypack-service/internal/repository"
)

// fakeStore is an in-memory RecommendationStore used to exercise the
// reconciler without a database.
type fakeStore struct {
	rows      map[int64]model.Recommendation
	failOnDay int   // Update returns an error for this day (0 = never)
	updated   []int // days written by Update, in order
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: map[int64]model.Recommendation{}}
}

func (f *fakeStore) GetByRecNo(_ context.Context, recno int64) (model.Recommendation, error) {
	rec, ok := f.rows[recno]
	if !ok {
		return model.Recommendation{}, repository.ErrNotFound
	}
	return rec, nil
}

func (f *fakeStore) ListByPackID(_ context.Context, packID string, startDay, endDay int) ([]model.Recommendation, error) {
	out := []model.Recommendation{}
	for _, rec := range f.rows {
		if rec.MageyPackID == packID && rec.Day >= startDay && rec.Day <= endDay {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out, nil
}

func (f *fakeStore) Update(_ context.Context, recno int64, rec model.Recommendation) error {
	if f.failOnDay != 0 && rec.Day == f.failOnDay {
		return errors.New("simulated store failure")
	}
	if _, ok := f.rows[recno]; !ok {
		return repository.ErrNotFound
	}
	rec.RecNo = recno
	f.rows[recno] = rec
	f.updated = append(f.updated, rec.Day)
	return nil
}

func (f *fakeStore) CreatePackageTx(_ context.Context, build func(base int64) []model.Recommendation) ([]model.Recommendation, error) {
	base := int64(1)
	for recno := range f.rows {
		if recno >= base {
			base = recno + 1
		}
	}
	recs := build(base)
	for _, rec := range recs {
		if _, ok := f.rows[rec.RecNo]; ok {
			return nil, repository.ErrDuplicateRecNo
		}
	}
	for _, rec := range recs {
		f.rows[rec.RecNo] = rec
	}
	return recs, nil
}

func strPtr(s string) *string { return &s }

func sampleTemplate() PackageTemplate {
	return PackageTemplate{
		BundlePrice:   d("500"),
		DataVolume:    1024,
		DataValidity:  30,
		OnnetMin:      100,
		OnnetValidity: 30,
		LocalMin:      50,
		LocalValidity: 30,
		SMS:           20,
		SMSValidity:   30,
		PackageName:   "5GB Booster!",
		ShortDesc:     "5GB plus calls",
		RibbonText:    strPtr("HOT"),
		Giftpack:      "NO",
	}
}

func TestCreatePackageFansOutThirtyOneDays(t *testing.T) {
	store := newFakeStore()
	recon := NewReconciler(store)

	rows, err := recon.CreatePackage(context.Background(), sampleTemplate())
	require.NoError(t, err)
	require.Len(t, rows, PackageDays)

	seen := map[int]bool{}
	for i, rec := range rows {
		assert.Equal(t, int64(1)+int64(i), rec.RecNo)
		assert.Equal(t, "1_5GB_BOOSTER", rec.MageyPackID)
		assert.False(t, seen[rec.Day], "duplicate day %d", rec.Day)
		seen[rec.Day] = true
		assert.True(t, rec.BundlePrice.Equal(d("500")))
		// Allocated prices are identical across days and sum to the bundle.
		total := rec.DataPrice.Add(rec.OnnetPrice).Add(rec.LocalPrice).Add(rec.SMSPrice)
		assert.True(t, total.Equal(d("500")), "day %d sums to %s", rec.Day, total)
	}
	for day := 1; day <= PackageDays; day++ {
		assert.True(t, seen[day], "missing day %d", day)
	}
	assert.Len(t, store.rows, PackageDays)
}

func TestCreatePackageAllocatesBaseAfterExistingRows(t *testing.T) {
	store := newFakeStore()
	recon := NewReconciler(store)

	_, err := recon.CreatePackage(context.Background(), sampleTemplate())
	require.NoError(t, err)

	tpl := sampleTemplate()
	tpl.PackageName = "Weekend Special"
	rows, err := recon.CreatePackage(context.Background(), tpl)
	require.NoError(t, err)

	// Second package starts right after the 31 recnos of the first.
	assert.Equal(t, int64(32), rows[0].RecNo)
	assert.Equal(t, "32_WEEKEND_SPECIAL", rows[0].MageyPackID)
}

func TestDiffAgainstClassifiesChanges(t *testing.T) {
	store := newFakeStore()
	recon := NewReconciler(store)

	_, err := recon.CreatePackage(context.Background(), sampleTemplate())
	require.NoError(t, err)

	edited := sampleTemplate()
	edited.BundlePrice = d("600")
	edited.SMS = 0
	edited.RibbonText = nil

	diff, err := recon.DiffAgainst(context.Background(), 1, edited)
	require.NoError(t, err)

	byField := map[string]FieldDiff{}
	for _, fd := range diff {
		byField[fd.Field] = fd
	}

	// Derived prices and per-row identity never appear in the diff.
	for _, excluded := range []string{"data_price", "onnet_price", "local_price", "sms_price", "package_Verbage", "day", "recno"} {
		_, ok := byField[excluded]
		assert.False(t, ok, "%s must be excluded", excluded)
	}

	assert.True(t, byField["bundle_price"].Changed)
	assert.Equal(t, "500", byField["bundle_price"].OldValue)
	assert.Equal(t, "600", byField["bundle_price"].NewValue)

	// Zero renders as a literal "0", not as the empty marker.
	assert.True(t, byField["sms"].Changed)
	assert.Equal(t, "20", byField["sms"].OldValue)
	assert.Equal(t, "0", byField["sms"].NewValue)

	// Cleared nullable text renders as N/A.
	assert.True(t, byField["Ribbon_text"].Changed)
	assert.Equal(t, "HOT", byField["Ribbon_text"].OldValue)
	assert.Equal(t, "N/A", byField["Ribbon_text"].NewValue)

	// The pack id is preserved by the template application.
	assert.False(t, byField["mageypackid"].Changed)
	assert.False(t, byField["package_name"].Changed)
}

func TestDiffAgainstUnknownRecno(t *testing.T) {
	recon := NewReconciler(newFakeStore())
	_, err := recon.DiffAgainst(context.Background(), 99, sampleTemplate())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestBulkApplyUpdatesExactlyTheRange(t *testing.T) {
	store := newFakeStore()
	recon := NewReconciler(store)

	_, err := recon.CreatePackage(context.Background(), sampleTemplate())
	require.NoError(t, err)

	edited := sampleTemplate()
	edited.BundlePrice = d("600")

	res, err := recon.BulkApply(context.Background(), 1, edited, 3, 5)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4, 5}, res.UpdatedDays)
	assert.Equal(t, "1_5GB_BOOSTER", res.MageyPackID)

	for recno, rec := range store.rows {
		if rec.Day >= 3 && rec.Day <= 5 {
			assert.True(t, rec.BundlePrice.Equal(d("600")), "day %d not updated", rec.Day)
		} else {
			assert.True(t, rec.BundlePrice.Equal(d("500")), "day %d touched", rec.Day)
		}
		// Identity survives the overwrite.
		assert.Equal(t, recno, rec.RecNo)
	}
}

func TestBulkApplySwapsReversedRange(t *testing.T) {
	store := newFakeStore()
	recon := NewReconciler(store)

	_, err := recon.CreatePackage(context.Background(), sampleTemplate())
	require.NoError(t, err)

	res, err := recon.BulkApply(context.Background(), 1, sampleTemplate(), 5, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, res.StartDay)
	assert.Equal(t, 5, res.EndDay)
	assert.Equal(t, []int{3, 4, 5}, res.UpdatedDays)
}

func TestBulkApplySurfacesPartialFailure(t *testing.T) {
	store := newFakeStore()
	recon := NewReconciler(store)

	_, err := recon.CreatePackage(context.Background(), sampleTemplate())
	require.NoError(t, err)

	store.failOnDay = 4
	edited := sampleTemplate()
	edited.BundlePrice = d("600")

	res, err := recon.BulkApply(context.Background(), 1, edited, 3, 5)
	require.Error(t, err)

	var partial *PartialUpdateError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, 4, partial.FailedDay)
	assert.Equal(t, []int{3}, partial.UpdatedDays)
	assert.Equal(t, []int{3}, res.UpdatedDays)

	// Day 3 was written and stays written; days 4 and 5 were not touched.
	assert.Equal(t, []int{3}, store.updated)
}

func TestBulkApplyUnknownBaseline(t *testing.T) {
	recon := NewReconciler(newFakeStore())
	_, err := recon.BulkApply(context.Background(), 7, sampleTemplate(), 1, 31)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
