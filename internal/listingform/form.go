// Package listingform holds the host listing editor state as typed field
// values, validates it, and builds the outbound payload.
package listingform

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/five82/rentme/internal/api"
)

// Field names match the payload keys; address parts are dotted.
type Field string

const (
	FieldTitle                Field = "title"
	FieldDescription          Field = "description"
	FieldPropertyType         Field = "property_type"
	FieldRentalTerm           Field = "rental_term"
	FieldAddressLine1         Field = "address.line1"
	FieldAddressLine2         Field = "address.line2"
	FieldAddressCity          Field = "address.city"
	FieldAddressRegion        Field = "address.region"
	FieldAddressCountry       Field = "address.country"
	FieldAddressLat           Field = "address.lat"
	FieldAddressLon           Field = "address.lon"
	FieldAmenities            Field = "amenities"
	FieldHouseRules           Field = "house_rules"
	FieldTags                 Field = "tags"
	FieldHighlights           Field = "highlights"
	FieldThumbnailURL         Field = "thumbnail_url"
	FieldCancellationPolicyID Field = "cancellation_policy_id"
	FieldGuestsLimit          Field = "guests_limit"
	FieldMinNights            Field = "min_nights"
	FieldMaxNights            Field = "max_nights"
	FieldRateRub              Field = "rate_rub"
	FieldBedrooms             Field = "bedrooms"
	FieldBathrooms            Field = "bathrooms"
	FieldFloor                Field = "floor"
	FieldFloorsTotal          Field = "floors_total"
	FieldRenovationScore      Field = "renovation_score"
	FieldBuildingAgeYears     Field = "building_age_years"
	FieldAreaSqM              Field = "area_sq_m"
	FieldAvailableFrom        Field = "available_from"
	FieldPhotos               Field = "photos"
	FieldTravelMinutes        Field = "travel_minutes"
	FieldTravelMode           Field = "travel_mode"
)

var (
	// ErrUnknownField is returned by Set for a field outside the schema.
	ErrUnknownField = errors.New("unknown field")
	// ErrKindMismatch is returned by Set when the value variant does not
	// match the field.
	ErrKindMismatch = errors.New("value kind does not match field")
	// ErrInvalidOption is returned by Set for an enum value outside the
	// field's options.
	ErrInvalidOption = errors.New("invalid option")
)

// Spec describes one field.
type Spec struct {
	Kind    Kind
	Options []string
}

var (
	PropertyTypes = []string{"", "apartment", "loft", "townhouse", "cabin", "villa"}
	RentalTerms   = []string{"long_term", "short_term"}
	TravelModes   = []string{"car", "transit", "walk"}
)

// Schema lists every editable field.
var Schema = map[Field]Spec{
	FieldTitle:                {Kind: KindText},
	FieldDescription:          {Kind: KindText},
	FieldPropertyType:         {Kind: KindEnum, Options: PropertyTypes},
	FieldRentalTerm:           {Kind: KindEnum, Options: RentalTerms},
	FieldAddressLine1:         {Kind: KindText},
	FieldAddressLine2:         {Kind: KindText},
	FieldAddressCity:          {Kind: KindText},
	FieldAddressRegion:        {Kind: KindText},
	FieldAddressCountry:       {Kind: KindText},
	FieldAddressLat:           {Kind: KindNumber},
	FieldAddressLon:           {Kind: KindNumber},
	FieldAmenities:            {Kind: KindList},
	FieldHouseRules:           {Kind: KindList},
	FieldTags:                 {Kind: KindList},
	FieldHighlights:           {Kind: KindList},
	FieldThumbnailURL:         {Kind: KindText},
	FieldCancellationPolicyID: {Kind: KindText},
	FieldGuestsLimit:          {Kind: KindNumber},
	FieldMinNights:            {Kind: KindNumber},
	FieldMaxNights:            {Kind: KindNumber},
	FieldRateRub:              {Kind: KindNumber},
	FieldBedrooms:             {Kind: KindNumber},
	FieldBathrooms:            {Kind: KindNumber},
	FieldFloor:                {Kind: KindNumber},
	FieldFloorsTotal:          {Kind: KindNumber},
	FieldRenovationScore:      {Kind: KindNumber},
	FieldBuildingAgeYears:     {Kind: KindNumber},
	FieldAreaSqM:              {Kind: KindNumber},
	FieldAvailableFrom:        {Kind: KindText},
	FieldPhotos:               {Kind: KindList},
	FieldTravelMinutes:        {Kind: KindNumber},
	FieldTravelMode:           {Kind: KindEnum, Options: TravelModes},
}

// Fields returns the schema's field names in sorted order.
func Fields() []Field {
	return slices.Sorted(maps.Keys(Schema))
}

// Mode selects how strict Validate is.
type Mode int

const (
	ModeSave Mode = iota
	ModePublish
)

// FieldErrors maps a field to its message. It is an error when non-empty.
type FieldErrors map[Field]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[Field(k)])
	}
	return strings.Join(parts, "; ")
}

// Form is the editor state.
type Form struct {
	values map[Field]Value
	// NoMaxNights sends max_nights as 0 (unbounded) regardless of its value.
	NoMaxNights bool
}

// New returns a form with the editor defaults.
func New() *Form {
	f := &Form{values: make(map[Field]Value, len(Schema))}
	for field, def := range Schema {
		switch def.Kind {
		case KindNumber:
			f.values[field] = Number(0)
		case KindEnum:
			f.values[field] = Enum(def.Options[0])
		case KindText:
			f.values[field] = Text("")
		case KindList:
			f.values[field] = List()
		}
	}
	f.values[FieldPropertyType] = Enum("")
	f.values[FieldRentalTerm] = Enum("long_term")
	f.values[FieldTravelMode] = Enum("car")
	f.values[FieldGuestsLimit] = Number(1)
	f.values[FieldMinNights] = Number(1)
	f.values[FieldMaxNights] = Number(1)
	f.values[FieldBedrooms] = Number(1)
	f.values[FieldBathrooms] = Number(1)
	f.values[FieldRenovationScore] = Number(5)
	f.values[FieldTravelMinutes] = Number(20)
	return f
}

// FromListing loads a stored listing into a form.
func FromListing(l api.HostListing) *Form {
	f := New()
	p := l.HostListingPayload
	set := func(field Field, v Value) { f.values[field] = v }

	set(FieldTitle, Text(p.Title))
	set(FieldDescription, Text(p.Description))
	set(FieldPropertyType, Enum(p.PropertyType))
	if p.RentalTerm != "" {
		set(FieldRentalTerm, Enum(p.RentalTerm))
	}
	set(FieldAddressLine1, Text(p.Address.Line1))
	set(FieldAddressLine2, Text(p.Address.Line2))
	set(FieldAddressCity, Text(p.Address.City))
	set(FieldAddressRegion, Text(p.Address.Region))
	set(FieldAddressCountry, Text(p.Address.Country))
	set(FieldAddressLat, Number(p.Address.Lat))
	set(FieldAddressLon, Number(p.Address.Lon))
	set(FieldAmenities, List(p.Amenities...))
	set(FieldHouseRules, List(p.HouseRules...))
	set(FieldTags, List(p.Tags...))
	set(FieldHighlights, List(p.Highlights...))
	set(FieldCancellationPolicyID, Text(p.CancellationPolicyID))
	set(FieldGuestsLimit, Number(float64(p.GuestsLimit)))
	set(FieldMinNights, Number(float64(p.MinNights)))
	set(FieldMaxNights, Number(float64(p.MaxNights)))
	set(FieldRateRub, Number(float64(p.RateRub)))
	set(FieldBedrooms, Number(float64(p.Bedrooms)))
	set(FieldBathrooms, Number(float64(p.Bathrooms)))
	set(FieldFloor, Number(float64(p.Floor)))
	set(FieldFloorsTotal, Number(float64(p.FloorsTotal)))
	set(FieldRenovationScore, Number(float64(p.RenovationScore)))
	set(FieldBuildingAgeYears, Number(float64(p.BuildingAgeYears)))
	set(FieldAreaSqM, Number(p.AreaSqM))
	if len(p.AvailableFrom) >= 10 {
		set(FieldAvailableFrom, Text(p.AvailableFrom[:10]))
	}
	set(FieldPhotos, List(p.Photos...))
	cover := p.ThumbnailURL
	if cover == "" && len(p.Photos) > 0 {
		cover = p.Photos[0]
	}
	set(FieldThumbnailURL, Text(cover))
	if p.TravelMinutes > 0 {
		set(FieldTravelMinutes, Number(float64(p.TravelMinutes)))
	}
	set(FieldTravelMode, Enum(normalizeTravelMode(p.TravelMode)))
	f.NoMaxNights = p.MaxNights == 0
	return f
}

// Set stores v after checking it against the schema.
func (f *Form) Set(field Field, v Value) error {
	def, ok := Schema[field]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	if v.Kind() != def.Kind {
		return fmt.Errorf("%w: %s wants %s, got %s", ErrKindMismatch, field, def.Kind, v.Kind())
	}
	if def.Kind == KindEnum {
		option := v.Str()
		if field == FieldTravelMode {
			option = normalizeTravelMode(option)
			v = Enum(option)
		}
		if !slices.Contains(def.Options, option) {
			return fmt.Errorf("%w: %s=%q", ErrInvalidOption, field, option)
		}
	}
	f.values[field] = v
	return nil
}

// SetRaw parses raw input for field and stores it.
func (f *Form) SetRaw(field Field, raw string) error {
	def, ok := Schema[field]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	v, err := Parse(def.Kind, raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	return f.Set(field, v)
}

// Get returns the value of field.
func (f *Form) Get(field Field) Value {
	return f.values[field]
}

func (f *Form) numOf(field Field) float64 { return f.values[field].Num() }
func (f *Form) intOf(field Field) int { return f.values[field].Int() }
func (f *Form) strOf(field Field) string { return f.values[field].Str() }

func (f *Form) maxNights() int {
	if f.NoMaxNights {
		return 0
	}
	return f.intOf(FieldMaxNights)
}

// Validate checks the form. ModePublish additionally requires a price and
// a full address. A nil result means the form is valid.
func (f *Form) Validate(mode Mode) FieldErrors {
	errs := FieldErrors{}
	publish := mode == ModePublish

	if strings.TrimSpace(f.strOf(FieldTitle)) == "" {
		errs[FieldTitle] = "Enter a title"
	}
	if f.strOf(FieldPropertyType) == "" {
		errs[FieldPropertyType] = "Choose a property type"
	}
	if term := f.strOf(FieldRentalTerm); term != "short_term" && term != "long_term" {
		errs[FieldRentalTerm] = "Choose a rental term"
	}
	if f.intOf(FieldGuestsLimit) < 1 {
		errs[FieldGuestsLimit] = "At least 1 guest"
	}
	minNights, maxNights := f.intOf(FieldMinNights), f.maxNights()
	if minNights < 1 {
		errs[FieldMinNights] = "At least 1 night"
	}
	if maxNights < 0 {
		errs[FieldMaxNights] = "Maximum cannot be negative"
	}
	if maxNights > 0 && minNights > maxNights {
		errs[FieldMaxNights] = "Maximum must not be below the minimum"
	}
	rate := f.numOf(FieldRateRub)
	if rate < 0 {
		errs[FieldRateRub] = "Price cannot be negative"
	}
	if publish && rate <= 0 {
		errs[FieldRateRub] = "Enter a price"
	}
	if f.intOf(FieldFloor) < 0 {
		errs[FieldFloor] = "Floor cannot be negative"
	}
	if f.intOf(FieldFloorsTotal) < f.intOf(FieldFloor) {
		errs[FieldFloorsTotal] = "Building must have at least as many floors as the listing floor"
	}
	if score := f.numOf(FieldRenovationScore); score < 0 || score > 10 {
		errs[FieldRenovationScore] = "Range is 0 to 10"
	}
	if f.intOf(FieldBuildingAgeYears) < 0 {
		errs[FieldBuildingAgeYears] = "Age cannot be negative"
	}
	if raw := strings.TrimSpace(f.strOf(FieldAvailableFrom)); raw != "" {
		if _, err := time.Parse(time.DateOnly, raw); err != nil {
			errs[FieldAvailableFrom] = "Use YYYY-MM-DD"
		}
	}
	if publish {
		if strings.TrimSpace(f.strOf(FieldAddressLine1)) == "" {
			errs[FieldAddressLine1] = "Enter the address"
		}
		if strings.TrimSpace(f.strOf(FieldAddressCity)) == "" {
			errs[FieldAddressCity] = "Enter the city"
		}
		if strings.TrimSpace(f.strOf(FieldAddressRegion)) == "" {
			errs[FieldAddressRegion] = "Enter the region"
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Payload builds the request body. Empty photos are dropped, the cover
// falls back to the first photo, and available_from is sent as RFC3339.
func (f *Form) Payload() api.HostListingPayload {
	photos := f.values[FieldPhotos].Items()
	cover := strings.TrimSpace(f.strOf(FieldThumbnailURL))
	if !slices.Contains(photos, cover) {
		cover = ""
		if len(photos) > 0 {
			cover = photos[0]
		}
	}
	rentalTerm := f.strOf(FieldRentalTerm)
	if rentalTerm == "" {
		rentalTerm = "long_term"
	}
	var availableFrom string
	if raw := strings.TrimSpace(f.strOf(FieldAvailableFrom)); raw != "" {
		if day, err := time.Parse(time.DateOnly, raw); err == nil {
			availableFrom = day.UTC().Format(time.RFC3339)
		}
	}

	return api.HostListingPayload{
		Title:        strings.TrimSpace(f.strOf(FieldTitle)),
		Description:  strings.TrimSpace(f.strOf(FieldDescription)),
		PropertyType: f.strOf(FieldPropertyType),
		RentalTerm:   rentalTerm,
		Address: api.Address{
			Line1:   strings.TrimSpace(f.strOf(FieldAddressLine1)),
			Line2:   strings.TrimSpace(f.strOf(FieldAddressLine2)),
			City:    strings.TrimSpace(f.strOf(FieldAddressCity)),
			Region:  strings.TrimSpace(f.strOf(FieldAddressRegion)),
			Country: strings.TrimSpace(f.strOf(FieldAddressCountry)),
			Lat:     f.numOf(FieldAddressLat),
			Lon:     f.numOf(FieldAddressLon),
		},
		Amenities:            nonNil(f.values[FieldAmenities].Items()),
		HouseRules:           nonNil(f.values[FieldHouseRules].Items()),
		Tags:                 nonNil(f.values[FieldTags].Items()),
		Highlights:           nonNil(f.values[FieldHighlights].Items()),
		ThumbnailURL:         cover,
		CancellationPolicyID: strings.TrimSpace(f.strOf(FieldCancellationPolicyID)),
		GuestsLimit:          f.intOf(FieldGuestsLimit),
		MinNights:            f.intOf(FieldMinNights),
		MaxNights:            f.maxNights(),
		RateRub:              int64(math.Round(f.numOf(FieldRateRub))),
		Bedrooms:             f.intOf(FieldBedrooms),
		Bathrooms:            f.intOf(FieldBathrooms),
		Floor:                f.intOf(FieldFloor),
		FloorsTotal:          f.intOf(FieldFloorsTotal),
		RenovationScore:      f.intOf(FieldRenovationScore),
		BuildingAgeYears:     f.intOf(FieldBuildingAgeYears),
		AreaSqM:              f.numOf(FieldAreaSqM),
		AvailableFrom:        availableFrom,
		Photos:               nonNil(photos),
		TravelMinutes:        max(0, f.intOf(FieldTravelMinutes)),
		TravelMode:           normalizeTravelMode(f.strOf(FieldTravelMode)),
	}
}

func normalizeTravelMode(mode string) string {
	normalized := strings.ToLower(strings.TrimSpace(mode))
	switch normalized {
	case "public":
		return "transit"
	case "":
		return "car"
	default:
		return normalized
	}
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
