package handler // handler defines http handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/mageytel/mageypack-service/internal/model"
	"github.com/mageytel/mageypack-service/internal/service"
)

// validate is the shared validator instance.  Field names in error
// messages use the json tag so clients see the wire name, not the Go
// field name.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationMessages flattens validator errors into the field-level
// message list returned under the "errors" key.
func validationMessages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"invalid payload"}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			out = append(out, fmt.Sprintf("%s is required", fe.Field()))
		case "min", "gte":
			out = append(out, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		case "max", "lte":
			out = append(out, fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
		default:
			out = append(out, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return out
}

// recommendationReq mirrors the full row payload of the row-level CRUD
// endpoints.  The numeric allowance fields accept zero (an absent
// category) but never negatives; day and recno must be present.
type recommendationReq struct {
	RecNo         int64           `json:"recno" validate:"required,min=1"`
	Day           int             `json:"day" validate:"required,min=1,max=31"`
	BundlePrice   decimal.Decimal `json:"bundle_price"`
	DataVolume    int64           `json:"data_volume" validate:"gte=0"`
	DataValidity  int             `json:"data_validity" validate:"gte=0"`
	DataPrice     decimal.Decimal `json:"data_price"`
	OnnetMin      int64           `json:"onnet_min" validate:"gte=0"`
	OnnetValidity int             `json:"onnet_validity" validate:"gte=0"`
	OnnetPrice    decimal.Decimal `json:"onnet_price"`
	LocalMin      int64           `json:"local_min" validate:"gte=0"`
	LocalValidity int             `json:"local_validity" validate:"gte=0"`
	LocalPrice    decimal.Decimal `json:"local_price"`
	SMS           int64           `json:"sms" validate:"gte=0"`
	SMSValidity   int             `json:"sms_validity" validate:"gte=0"`
	SMSPrice      decimal.Decimal `json:"sms_price"`
	PackageName   string          `json:"package_name" validate:"required"`
	Verbage       *string         `json:"package_Verbage"`
	ShortDesc     string          `json:"Short_Desc" validate:"required"`
	RibbonText    *string         `json:"Ribbon_text"`
	Giftpack      string          `json:"Giftpack" validate:"required"`
	MageyPackID   string          `json:"mageypackid" validate:"required"`
}

func (r recommendationReq) toModel() model.Recommendation {
	return model.Recommendation{
		RecNo:         r.RecNo,
		Day:           r.Day,
		BundlePrice:   r.BundlePrice,
		DataVolume:    r.DataVolume,
		DataValidity:  r.DataValidity,
		DataPrice:     r.DataPrice,
		OnnetMin:      r.OnnetMin,
		OnnetValidity: r.OnnetValidity,
		OnnetPrice:    r.OnnetPrice,
		LocalMin:      r.LocalMin,
		LocalValidity: r.LocalValidity,
		LocalPrice:    r.LocalPrice,
		SMS:           r.SMS,
		SMSValidity:   r.SMSValidity,
		SMSPrice:      r.SMSPrice,
		PackageName:   r.PackageName,
		Verbage:       r.Verbage,
		ShortDesc:     r.ShortDesc,
		RibbonText:    r.RibbonText,
		Giftpack:      r.Giftpack,
		MageyPackID:   r.MageyPackID,
	}
}

// packageTemplateReq is the reconciler submission: one allowance
// template without identity or derived prices.  Giftpack defaults to
// "NO" like the form it replaces.
type packageTemplateReq struct {
	BundlePrice   decimal.Decimal `json:"bundle_price"`
	DataVolume    int64           `json:"data_volume" validate:"gte=0"`
	DataValidity  int             `json:"data_validity" validate:"gte=0"`
	OnnetMin      int64           `json:"onnet_min" validate:"gte=0"`
	OnnetValidity int             `json:"onnet_validity" validate:"gte=0"`
	LocalMin      int64           `json:"local_min" validate:"gte=0"`
	LocalValidity int             `json:"local_validity" validate:"gte=0"`
	SMS           int64           `json:"sms" validate:"gte=0"`
	SMSValidity   int             `json:"sms_validity" validate:"gte=0"`
	PackageName   string          `json:"package_name" validate:"required"`
	Verbage       *string         `json:"package_Verbage"`
	ShortDesc     string          `json:"Short_Desc" validate:"required"`
	RibbonText    *string         `json:"Ribbon_text"`
	Giftpack      string          `json:"Giftpack"`
}

func (r packageTemplateReq) toTemplate() service.PackageTemplate {
	giftpack := r.Giftpack
	if giftpack == "" {
		giftpack = "NO"
	}
	return service.PackageTemplate{
		BundlePrice:   r.BundlePrice,
		DataVolume:    r.DataVolume,
		DataValidity:  r.DataValidity,
		OnnetMin:      r.OnnetMin,
		OnnetValidity: r.OnnetValidity,
		LocalMin:      r.LocalMin,
		LocalValidity: r.LocalValidity,
		SMS:           r.SMS,
		SMSValidity:   r.SMSValidity,
		PackageName:   r.PackageName,
		Verbage:       r.Verbage,
		ShortDesc:     r.ShortDesc,
		RibbonText:    r.RibbonText,
		Giftpack:      giftpack,
	}
}

// parseRecNo extracts the numeric recno from the :id path parameter.
func parseRecNo(c echo.Context) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
}

// userEmail returns the authenticated user's email from the context,
// set by the session guard.  Used for event attribution.
func userEmail(c echo.Context) string {
	if v, ok := c.Get("user_email").(string); ok {
		return v
	}
	return ""
}
