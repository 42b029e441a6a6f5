package listingform

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/rentme/internal/api"
)

const listingFile = `
title = "Loft by the river"
property_type = "loft"
rental_term = "short_term"
rate_rub = 4200
area_sq_m = 41.5
available_from = 2026-05-01
amenities = ["wifi", "washer"]
travel_mode = "public"
"address.line2" = "flat 4"

[address]
line1 = "Vltavska 3"
city = "Brno"
region = "South Moravia"
`

func TestDecodeFillsForm(t *testing.T) {
	f := New()
	require.NoError(t, f.Decode(strings.NewReader(listingFile)))
	assert.Nil(t, f.Validate(ModePublish))

	p := f.Payload()
	assert.Equal(t, "Loft by the river", p.Title)
	assert.Equal(t, "short_term", p.RentalTerm)
	assert.Equal(t, int64(4200), p.RateRub)
	assert.InDelta(t, 41.5, p.AreaSqM, 1e-9)
	assert.Equal(t, "2026-05-01T00:00:00Z", p.AvailableFrom)
	assert.Equal(t, []string{"wifi", "washer"}, p.Amenities)
	assert.Equal(t, "transit", p.TravelMode)
	assert.Equal(t, api.Address{Line1: "Vltavska 3", Line2: "flat 4", City: "Brno", Region: "South Moravia"}, p.Address)
	assert.Equal(t, 1, p.GuestsLimit, "missing keys keep defaults")
}

func TestDecodePatchesLoadedListing(t *testing.T) {
	stored := api.HostListing{ID: "h1", HostListingPayload: api.HostListingPayload{
		Title: "Old title", PropertyType: "cabin", RentalTerm: "long_term",
		GuestsLimit: 3, MinNights: 2, MaxNights: 10, RateRub: 900,
	}}
	f := FromListing(stored)
	require.NoError(t, f.Decode(strings.NewReader("title = \"New title\"\nno_max_nights = true\n")))

	p := f.Payload()
	assert.Equal(t, "New title", p.Title)
	assert.Equal(t, "cabin", p.PropertyType)
	assert.Equal(t, 3, p.GuestsLimit)
	assert.Equal(t, 0, p.MaxNights)
}

func TestDecodeReportsEveryBadKey(t *testing.T) {
	f := New()
	err := f.Decode(strings.NewReader(`
bedrooms = "two"
property_type = "castle"
colour = "blue"
tags = [1, 2]
title = "Kept"
`))
	require.Error(t, err)
	for _, key := range []string{"bedrooms", "property_type", "colour", "tags"} {
		assert.Contains(t, err.Error(), key)
	}
	assert.Equal(t, "Kept", f.Get(FieldTitle).Str(), "valid keys still apply")
}

func TestDecodeRejectsMalformedTOML(t *testing.T) {
	err := New().Decode(strings.NewReader("title = "))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse listing")
}
