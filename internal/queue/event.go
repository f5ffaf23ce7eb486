// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns them into audit log lines.
package queue

// PackageCreatedEvent is published after a package creation fans out
// into its 31 day-variant rows.  It carries enough information for
// downstream consumers to log or notify without querying the primary
// database.
type PackageCreatedEvent struct {
    BaseRecNo   int64  `json:"base_recno"`
    MageyPackID string `json:"mageypackid"`
    PackageName string `json:"package_name"`
    BundlePrice string `json:"bundle_price"`
    Rows        int    `json:"rows"`
    CreatedBy   string `json:"created_by"`
    CreatedAt   string `json:"created_at"`
}

// PackageUpdatedEvent is published after a day-range bulk update
// completes.  UpdatedDays lists the days actually written, which can be
// shorter than the requested range when the update stopped mid-way.
type PackageUpdatedEvent struct {
    MageyPackID string `json:"mageypackid"`
    StartDay    int    `json:"start_day"`
    EndDay      int    `json:"end_day"`
    UpdatedDays []int  `json:"updated_days"`
    Partial     bool   `json:"partial"`
    UpdatedBy   string `json:"updated_by"`
    UpdatedAt   string `json:"updated_at"`
}
