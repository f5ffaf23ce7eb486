package repository

import (
	"context"
	"database/sql"

	"github.com/mageytel/mageypack-service/internal/model"
)

// RecommendationRepo provides CRUD operations for recommendation
// day-variant rows.  A logical package is the set of rows sharing one
// mageypackid; this repository also owns the transactional fan-out
// that creates a full package.  All timestamp-free columns mirror the
// recommendations table one to one.
type RecommendationRepo struct {
	db *sql.DB
}

// NewRecommendationRepo returns a new RecommendationRepo bound to the given database.
func NewRecommendationRepo(db *sql.DB) *RecommendationRepo { return &RecommendationRepo{db: db} }

// recCols is the canonical column list shared by every query in this file.
const recCols = "recno, day, bundle_price, " +
	"data_volume, data_validity, data_price, " +
	"onnet_min, onnet_validity, onnet_price, " +
	"local_min, local_validity, local_price, " +
	"sms, sms_validity, sms_price, " +
	"package_name, package_Verbage, Short_Desc, Ribbon_text, Giftpack, mageypackid"

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecommendation(s rowScanner) (model.Recommendation, error) {
	var (
		rec        model.Recommendation
		verbage    sql.NullString
		ribbonText sql.NullString
	)
	err := s.Scan(
		&rec.RecNo, &rec.Day, &rec.BundlePrice,
		&rec.DataVolume, &rec.DataValidity, &rec.DataPrice,
		&rec.OnnetMin, &rec.OnnetValidity, &rec.OnnetPrice,
		&rec.LocalMin, &rec.LocalValidity, &rec.LocalPrice,
		&rec.SMS, &rec.SMSValidity, &rec.SMSPrice,
		&rec.PackageName, &verbage, &rec.ShortDesc, &ribbonText, &rec.Giftpack, &rec.MageyPackID,
	)
	if err != nil {
		return model.Recommendation{}, err
	}
	if verbage.Valid {
		v := verbage.String
		rec.Verbage = &v
	}
	if ribbonText.Valid {
		v := ribbonText.String
		rec.RibbonText = &v
	}
	return rec, nil
}

// insertArgs flattens a recommendation into the recCols order for INSERT/UPDATE.
func insertArgs(rec model.Recommendation) []any {
	var verbage, ribbonText any
	if rec.Verbage != nil {
		verbage = *rec.Verbage
	}
	if rec.RibbonText != nil {
		ribbonText = *rec.RibbonText
	}
	return []any{
		rec.RecNo, rec.Day, rec.BundlePrice,
		rec.DataVolume, rec.DataValidity, rec.DataPrice,
		rec.OnnetMin, rec.OnnetValidity, rec.OnnetPrice,
		rec.LocalMin, rec.LocalValidity, rec.LocalPrice,
		rec.SMS, rec.SMSValidity, rec.SMSPrice,
		rec.PackageName, verbage, rec.ShortDesc, ribbonText, rec.Giftpack, rec.MageyPackID,
	}
}

// MaxRecNo returns the highest recno in the table.  ok is false when the
// table is empty.
func (r *RecommendationRepo) MaxRecNo(ctx context.Context) (int64, bool, error) {
	var max sql.NullInt64
	err := r.db.QueryRowContext(ctx, "SELECT MAX(recno) FROM recommendations").Scan(&max)
	if err != nil {
		return 0, false, err
	}
	if !max.Valid {
		return 0, false, nil
	}
	return max.Int64, true, nil
}

// GetByRecNo fetches a single row by recno.  ErrNotFound when absent.
func (r *RecommendationRepo) GetByRecNo(ctx context.Context, recno int64) (model.Recommendation, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+recCols+" FROM recommendations WHERE recno=? LIMIT 1", recno)
	rec, err := scanRecommendation(row)
	if err == sql.ErrNoRows {
		return model.Recommendation{}, ErrNotFound
	}
	return rec, err
}

// ListAll returns every row in the table.
func (r *RecommendationRepo) ListAll(ctx context.Context) ([]model.Recommendation, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+recCols+" FROM recommendations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// ListByPackID returns the day-variants of a package with day in
// [startDay, endDay], sorted by day ascending.
func (r *RecommendationRepo) ListByPackID(ctx context.Context, packID string, startDay, endDay int) ([]model.Recommendation, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+recCols+" FROM recommendations WHERE mageypackid=? AND day BETWEEN ? AND ? ORDER BY day ASC",
		packID, startDay, endDay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func collect(rows *sql.Rows) ([]model.Recommendation, error) {
	out := []model.Recommendation{}
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Create inserts a single row.  A duplicate recno maps to
// ErrDuplicateRecNo; a fresh recno landing on an occupied
// (mageypackid, day) slot maps to ErrDuplicateDay.
func (r *RecommendationRepo) Create(ctx context.Context, rec model.Recommendation) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO recommendations ("+recCols+") VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)",
		insertArgs(rec)...)
	if dup := duplicateKeyError(err); dup != nil {
		return dup
	}
	return err
}

// Update overwrites every mutable column of the row identified by recno.
// recno and mageypackid are immutable and therefore not part of the SET
// list.  ErrNotFound when the row does not exist; moving the row onto a
// day its package already occupies maps to ErrDuplicateDay.
func (r *RecommendationRepo) Update(ctx context.Context, recno int64, rec model.Recommendation) error {
	var verbage, ribbonText any
	if rec.Verbage != nil {
		verbage = *rec.Verbage
	}
	if rec.RibbonText != nil {
		ribbonText = *rec.RibbonText
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE recommendations SET
			day=?, bundle_price=?,
			data_volume=?, data_validity=?, data_price=?,
			onnet_min=?, onnet_validity=?, onnet_price=?,
			local_min=?, local_validity=?, local_price=?,
			sms=?, sms_validity=?, sms_price=?,
			package_name=?, package_Verbage=?, Short_Desc=?, Ribbon_text=?, Giftpack=?
		 WHERE recno=?`,
		rec.Day, rec.BundlePrice,
		rec.DataVolume, rec.DataValidity, rec.DataPrice,
		rec.OnnetMin, rec.OnnetValidity, rec.OnnetPrice,
		rec.LocalMin, rec.LocalValidity, rec.LocalPrice,
		rec.SMS, rec.SMSValidity, rec.SMSPrice,
		rec.PackageName, verbage, rec.ShortDesc, ribbonText, rec.Giftpack,
		recno)
	if err != nil {
		if dup := duplicateKeyError(err); dup != nil {
			return dup
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// MySQL also reports 0 when the values are unchanged, so
		// distinguish "missing" from "no-op" with an existence probe.
		var one int
		err := r.db.QueryRowContext(ctx,
			"SELECT 1 FROM recommendations WHERE recno=? LIMIT 1", recno).Scan(&one)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Delete removes the row identified by recno.  ErrNotFound when absent.
func (r *RecommendationRepo) Delete(ctx context.Context, recno int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM recommendations WHERE recno=?", recno)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreatePackageTx creates a full package in one transaction.  The base
// recno is read with MAX(recno) FOR UPDATE inside the transaction so
// that two concurrent creations serialize on the allocation instead of
// racing; the unique key on recno remains the backstop.  build receives
// the allocated base and returns the 31 day rows to insert; all rows
// are written with a single multi-row INSERT so a failure leaves
// nothing behind.
func (r *RecommendationRepo) CreatePackageTx(ctx context.Context, build func(base int64) []model.Recommendation) ([]model.Recommendation, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var max sql.NullInt64
	if err := tx.QueryRowContext(ctx,
		"SELECT MAX(recno) FROM recommendations FOR UPDATE").Scan(&max); err != nil {
		return nil, err
	}
	base := int64(1)
	if max.Valid {
		base = max.Int64 + 1
	}

	recs := build(base)
	if len(recs) == 0 {
		return nil, ErrNotFound
	}
	query := "INSERT INTO recommendations (" + recCols + ") VALUES "
	args := make([]any, 0, len(recs)*21)
	for i, rec := range recs {
		if i > 0 {
			query += ","
		}
		query += "(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)"
		args = append(args, insertArgs(rec)...)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if dup := duplicateKeyError(err); dup != nil {
			return nil, dup
		}
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return recs, nil
}
