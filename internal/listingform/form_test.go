package listingform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/rentme/internal/api"
)

func validDraft(t *testing.T) *Form {
	t.Helper()
	f := New()
	require.NoError(t, f.Set(FieldTitle, Text("Loft by the river")))
	require.NoError(t, f.Set(FieldPropertyType, Enum("loft")))
	return f
}

func TestNewDefaults(t *testing.T) {
	f := New()
	assert.Equal(t, "long_term", f.Get(FieldRentalTerm).Str())
	assert.Equal(t, "car", f.Get(FieldTravelMode).Str())
	assert.Equal(t, 20, f.Get(FieldTravelMinutes).Int())
	assert.Equal(t, 5, f.Get(FieldRenovationScore).Int())
	for _, field := range Fields() {
		assert.Equal(t, Schema[field].Kind, f.Get(field).Kind(), field)
	}
}

func TestSetChecksSchema(t *testing.T) {
	f := New()
	require.ErrorIs(t, f.Set("nope", Text("x")), ErrUnknownField)
	require.ErrorIs(t, f.Set(FieldGuestsLimit, Text("4")), ErrKindMismatch)
	require.ErrorIs(t, f.Set(FieldPropertyType, Enum("castle")), ErrInvalidOption)
	require.ErrorIs(t, f.Set(FieldTags, Number(3)), ErrKindMismatch)

	require.NoError(t, f.Set(FieldTravelMode, Enum(" Public ")))
	assert.Equal(t, "transit", f.Get(FieldTravelMode).Str())
}

func TestSetRawParsesPerKind(t *testing.T) {
	f := New()
	require.NoError(t, f.SetRaw(FieldAreaSqM, "42,5"))
	assert.InDelta(t, 42.5, f.Get(FieldAreaSqM).Num(), 1e-9)

	require.NoError(t, f.SetRaw(FieldAmenities, "wifi\n\n  washer \n"))
	assert.Equal(t, []string{"wifi", "washer"}, f.Get(FieldAmenities).Items())

	require.Error(t, f.SetRaw(FieldBedrooms, "two"))
	assert.Equal(t, 1, f.Get(FieldBedrooms).Int(), "failed parse leaves the value unchanged")

	require.NoError(t, f.SetRaw(FieldBedrooms, ""))
	assert.Equal(t, 0, f.Get(FieldBedrooms).Int())
}

func TestValidateSave(t *testing.T) {
	assert.Nil(t, validDraft(t).Validate(ModeSave))

	errs := New().Validate(ModeSave)
	require.NotNil(t, errs)
	assert.Contains(t, errs, FieldTitle)
	assert.Contains(t, errs, FieldPropertyType)
	assert.NotContains(t, errs, FieldRateRub, "price is only required to publish")
}

func TestValidateRanges(t *testing.T) {
	f := validDraft(t)
	require.NoError(t, f.Set(FieldMinNights, Number(5)))
	require.NoError(t, f.Set(FieldMaxNights, Number(3)))
	require.NoError(t, f.Set(FieldFloor, Number(4)))
	require.NoError(t, f.Set(FieldFloorsTotal, Number(2)))
	require.NoError(t, f.Set(FieldRenovationScore, Number(11)))
	require.NoError(t, f.Set(FieldGuestsLimit, Number(0)))
	require.NoError(t, f.Set(FieldAvailableFrom, Text("next week")))

	errs := f.Validate(ModeSave)
	for _, field := range []Field{FieldMaxNights, FieldFloorsTotal, FieldRenovationScore, FieldGuestsLimit, FieldAvailableFrom} {
		assert.Contains(t, errs, field)
	}

	f.NoMaxNights = true
	assert.NotContains(t, f.Validate(ModeSave), FieldMaxNights)
}

func TestValidatePublishRequiresPriceAndAddress(t *testing.T) {
	f := validDraft(t)
	errs := f.Validate(ModePublish)
	for _, field := range []Field{FieldRateRub, FieldAddressLine1, FieldAddressCity, FieldAddressRegion} {
		assert.Contains(t, errs, field)
	}
	assert.Contains(t, errs.Error(), "rate_rub: Enter a price")

	require.NoError(t, f.Set(FieldRateRub, Number(4200)))
	require.NoError(t, f.Set(FieldAddressLine1, Text("Na Porici 1")))
	require.NoError(t, f.Set(FieldAddressCity, Text("Prague")))
	require.NoError(t, f.Set(FieldAddressRegion, Text("Prague")))
	assert.Nil(t, f.Validate(ModePublish))
}

func TestPayload(t *testing.T) {
	f := validDraft(t)
	require.NoError(t, f.Set(FieldPhotos, List("", "a.jpg", " ", "b.jpg")))
	require.NoError(t, f.Set(FieldThumbnailURL, Text("missing.jpg")))
	require.NoError(t, f.Set(FieldAvailableFrom, Text("2026-03-01")))
	require.NoError(t, f.Set(FieldRateRub, Number(1999.6)))
	require.NoError(t, f.Set(FieldTravelMinutes, Number(-5)))
	f.NoMaxNights = true

	p := f.Payload()
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, p.Photos)
	assert.Equal(t, "a.jpg", p.ThumbnailURL)
	assert.Equal(t, "2026-03-01T00:00:00Z", p.AvailableFrom)
	assert.Equal(t, int64(2000), p.RateRub)
	assert.Equal(t, 0, p.TravelMinutes)
	assert.Equal(t, 0, p.MaxNights)
	assert.Equal(t, "long_term", p.RentalTerm)
	assert.NotNil(t, p.Tags)

	require.NoError(t, f.Set(FieldThumbnailURL, Text("b.jpg")))
	assert.Equal(t, "b.jpg", f.Payload().ThumbnailURL)
}

func TestFromListingRoundTrip(t *testing.T) {
	stored := api.HostListing{
		ID: "l1",
		HostListingPayload: api.HostListingPayload{
			Title:         "Cabin",
			PropertyType:  "cabin",
			RentalTerm:    "short_term",
			Address:       api.Address{Line1: "Forest 1", City: "Brno", Region: "JM"},
			Photos:        []string{"p1", "p2"},
			GuestsLimit:   4,
			MinNights:     2,
			MaxNights:     0,
			RateRub:       3000,
			AvailableFrom: "2026-05-01T00:00:00Z",
			TravelMode:    "public",
		},
	}
	f := FromListing(stored)
	assert.True(t, f.NoMaxNights)
	assert.Equal(t, "transit", f.Get(FieldTravelMode).Str())
	assert.Equal(t, "p1", f.Get(FieldThumbnailURL).Str())
	assert.Equal(t, "2026-05-01", f.Get(FieldAvailableFrom).Str())

	p := f.Payload()
	assert.Equal(t, "Cabin", p.Title)
	assert.Equal(t, "p1", p.ThumbnailURL)
	assert.Equal(t, stored.AvailableFrom, p.AvailableFrom)
	assert.Equal(t, 4, p.GuestsLimit)
	assert.Nil(t, f.Validate(ModePublish))
}

func TestValueAccessorsAreVariantSafe(t *testing.T) {
	assert.Equal(t, "", Number(3).Str())
	assert.Zero(t, Text("3").Num())
	assert.Nil(t, Enum("x").Items())
	assert.Equal(t, "2.5", Number(2.5).String())
	assert.Equal(t, "a\nb", List("a", "b").String())
	assert.Equal(t, "enum", KindEnum.String())
}
