package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommendationReqValidation(t *testing.T) {
	valid := recommendationReq{
		RecNo:       1,
		Day:         5,
		DataVolume:  1024,
		PackageName: "5GB Booster",
		ShortDesc:   "5GB of data",
		Giftpack:    "NO",
		MageyPackID: "1_5GB_BOOSTER",
	}
	require.NoError(t, validate.Struct(valid))

	missing := valid
	missing.PackageName = ""
	missing.MageyPackID = ""
	msgs := validationMessages(validate.Struct(missing))
	assert.Contains(t, msgs, "package_name is required")
	assert.Contains(t, msgs, "mageypackid is required")

	badDay := valid
	badDay.Day = 32
	msgs = validationMessages(validate.Struct(badDay))
	assert.Contains(t, msgs, "day must be at most 31")

	negative := valid
	negative.SMS = -1
	msgs = validationMessages(validate.Struct(negative))
	assert.Contains(t, msgs, "sms must be at least 0")
}

func TestValidationMessagesUsesWireNames(t *testing.T) {
	req := recommendationReq{}
	msgs := validationMessages(validate.Struct(req))

	// Messages carry json tag names, never Go field names.
	assert.Contains(t, msgs, "recno is required")
	assert.Contains(t, msgs, "Short_Desc is required")
	for _, m := range msgs {
		assert.NotContains(t, m, "RecNo")
		assert.NotContains(t, m, "ShortDesc")
	}
}

func TestValidationMessagesNonValidatorError(t *testing.T) {
	msgs := validationMessages(assert.AnError)
	assert.Equal(t, []string{"invalid payload"}, msgs)
}

func TestPackageTemplateReqGiftpackDefault(t *testing.T) {
	req := packageTemplateReq{
		PackageName: "Weekend Special",
		ShortDesc:   "weekend data",
	}
	require.NoError(t, validate.Struct(req))

	tpl := req.toTemplate()
	assert.Equal(t, "NO", tpl.Giftpack)

	req.Giftpack = "YES"
	assert.Equal(t, "YES", req.toTemplate().Giftpack)
}
