package repository

import (
    "errors"
    "strings"
)

// Sentinel errors returned by the repositories.  Handlers translate
// these into HTTP statuses; everything else is treated as an internal
// error and logged before a generic 500 response.
var (
    ErrNotFound       = errors.New("record not found")
    ErrDuplicateRecNo = errors.New("recno already exists")
    ErrDuplicateDay   = errors.New("package already has a row for this day")
    ErrEmailExists    = errors.New("email already exists")
    ErrNoSession      = errors.New("session not found or expired")
)

// isDuplicateKey reports whether err is a MySQL duplicate-entry error (1062).
func isDuplicateKey(err error) bool {
    return err != nil && strings.Contains(err.Error(), "1062")
}

// duplicateKeyError maps a MySQL 1062 error on the recommendations
// table to the sentinel for the violated key: the (mageypackid, day)
// unique key yields ErrDuplicateDay, anything else (the recno primary
// key) yields ErrDuplicateRecNo.  The 1062 message names the key, e.g.
// "Duplicate entry '...' for key 'recommendations.uq_recommendations_pack_day'".
// Returns nil when err is not a duplicate-key error.
func duplicateKeyError(err error) error {
    if !isDuplicateKey(err) {
        return nil
    }
    if strings.Contains(err.Error(), "uq_recommendations_pack_day") {
        return ErrDuplicateDay
    }
    return ErrDuplicateRecNo
}
