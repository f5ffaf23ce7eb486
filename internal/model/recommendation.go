package model

import "github.com/shopspring/decimal"

// Recommendation is one day-variant row of a recommendation package.
// A logical package is the set of up to 31 rows sharing one
// MageyPackID, one row per calendar day.  Allowances are grouped in
// four categories (data, on-net minutes, local minutes, SMS), each
// carrying a quantity, a validity in days and a price.  The sum of
// the four prices equals the bundle price.
//
// Fields:
//  RecNo       - globally unique numeric identifier of this row.
//  Day         - calendar day (1-31) the allowances apply to.
//  BundlePrice - total price the customer pays for the bundle.
//  DataVolume  - data allowance in MB.
//  OnnetMin    - on-net voice minutes.
//  LocalMin    - local voice minutes.
//  SMS         - SMS count.
//  PackageName - display name of the package.
//  Verbage     - optional long marketing text (nullable).
//  ShortDesc   - short description shown in listings.
//  RibbonText  - optional ribbon tag (nullable).
//  Giftpack    - gift-pack flag string ("YES"/"NO").
//  MageyPackID - package grouping key: {base_recno}_{NORMALIZED_NAME}.
//
// JSON tags preserve the wire casing of the existing clients exactly,
// including the historical "package_Verbage" spelling.
type Recommendation struct {
    RecNo         int64           `json:"recno"`           // recommendations.recno
    Day           int             `json:"day"`             // recommendations.day
    BundlePrice   decimal.Decimal `json:"bundle_price"`    // recommendations.bundle_price
    DataVolume    int64           `json:"data_volume"`     // recommendations.data_volume (MB)
    DataValidity  int             `json:"data_validity"`   // recommendations.data_validity (days)
    DataPrice     decimal.Decimal `json:"data_price"`      // recommendations.data_price
    OnnetMin      int64           `json:"onnet_min"`       // recommendations.onnet_min
    OnnetValidity int             `json:"onnet_validity"`  // recommendations.onnet_validity (days)
    OnnetPrice    decimal.Decimal `json:"onnet_price"`     // recommendations.onnet_price
    LocalMin      int64           `json:"local_min"`       // recommendations.local_min
    LocalValidity int             `json:"local_validity"`  // recommendations.local_validity (days)
    LocalPrice    decimal.Decimal `json:"local_price"`     // recommendations.local_price
    SMS           int64           `json:"sms"`             // recommendations.sms
    SMSValidity   int             `json:"sms_validity"`    // recommendations.sms_validity (days)
    SMSPrice      decimal.Decimal `json:"sms_price"`       // recommendations.sms_price
    PackageName   string          `json:"package_name"`    // recommendations.package_name
    Verbage       *string         `json:"package_Verbage"` // recommendations.package_Verbage (nullable)
    ShortDesc     string          `json:"Short_Desc"`      // recommendations.Short_Desc
    RibbonText    *string         `json:"Ribbon_text"`     // recommendations.Ribbon_text (nullable)
    Giftpack      string          `json:"Giftpack"`        // recommendations.Giftpack
    MageyPackID   string          `json:"mageypackid"`     // recommendations.mageypackid
}
