package query

import (
	"net/url"
	"strconv"
	"strings"
)

// Codec encodes FilterState with client-supplied defaults for page size and
// sort order. The zero value behaves like DefaultCodec.
type Codec struct {
	Limit int
	Sort  Sort
}

// DefaultCodec uses DefaultLimit and DefaultSort.
var DefaultCodec = Codec{Limit: DefaultLimit, Sort: DefaultSort}

// Encode renders f with DefaultCodec.
func Encode(f FilterState) string { return DefaultCodec.Encode(f) }

// Decode parses q with DefaultCodec.
func Decode(q string) FilterState { return DefaultCodec.Decode(q) }

func (c Codec) limit() int {
	if c.Limit < 1 {
		return DefaultLimit
	}
	if c.Limit > MaxLimit {
		return MaxLimit
	}
	return c.Limit
}

func (c Codec) sort() Sort {
	if ValidSort(c.Sort) {
		return c.Sort
	}
	return DefaultSort
}

// Default returns the unfiltered first page.
func (c Codec) Default() FilterState {
	return FilterState{Sort: c.sort(), Page: 1, Limit: c.limit()}
}

// Normalize coerces every field into its valid domain. Encode and Decode
// both normalize, so Normalize(f) == f is the round-trip precondition.
func (c Codec) Normalize(f FilterState) FilterState {
	f.City = strings.TrimSpace(f.City)
	f.CheckIn = normalizeDate(f.CheckIn)
	f.CheckOut = normalizeDate(f.CheckOut)
	if f.Guests < 0 {
		f.Guests = 0
	}
	if f.PriceMin < 0 {
		f.PriceMin = 0
	}
	if f.PriceMax < 0 {
		f.PriceMax = 0
	}
	f.PropertyType = PropertyType(strings.ToLower(strings.TrimSpace(string(f.PropertyType))))
	if !validPropertyType(f.PropertyType) {
		f.PropertyType = PropertyAny
	}
	f.RentalTerm = RentalTerm(strings.ToLower(strings.TrimSpace(string(f.RentalTerm))))
	if !validRentalTerm(f.RentalTerm) {
		f.RentalTerm = TermAny
	}
	f.Sort = Sort(strings.ToLower(strings.TrimSpace(string(f.Sort))))
	if !ValidSort(f.Sort) {
		f.Sort = c.sort()
	}
	if f.Page < 1 {
		f.Page = 1
	}
	switch {
	case f.Limit < 1:
		f.Limit = c.limit()
	case f.Limit > MaxLimit:
		f.Limit = MaxLimit
	}
	return f
}

// Encode renders the canonical query string for f, without a leading "?".
// Optional filters are omitted when unset; page, limit and sort are always
// present because the listings endpoint expects them.
func (c Codec) Encode(f FilterState) string {
	f = c.Normalize(f)

	var b strings.Builder
	add := func(key, value string) {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(value))
	}
	addInt := func(key string, value int) {
		if value > 0 {
			add(key, strconv.Itoa(value))
		}
	}

	if f.City != "" {
		add("city", f.City)
	}
	if f.CheckIn != "" {
		add("check_in", f.CheckIn)
	}
	if f.CheckOut != "" {
		add("check_out", f.CheckOut)
	}
	addInt("min_guests", f.Guests)
	addInt("price_min", f.PriceMin)
	addInt("price_max", f.PriceMax)
	if f.PropertyType != PropertyAny {
		add("type", string(f.PropertyType))
	}
	if f.RentalTerm != TermAny {
		add("rental_term", string(f.RentalTerm))
	}
	add("page", strconv.Itoa(f.Page))
	add("limit", strconv.Itoa(f.Limit))
	add("sort", string(f.Sort))
	return b.String()
}

// Decode parses a query string (with or without "?") into a normalized
// FilterState. Unknown keys are ignored; malformed values fall back to
// their defaults.
func (c Codec) Decode(q string) FilterState {
	// ParseQuery keeps every well-formed pair even when it reports an error.
	values, _ := url.ParseQuery(strings.TrimPrefix(strings.TrimSpace(q), "?"))

	f := FilterState{
		City:         first(values, "city", "location"),
		CheckIn:      first(values, "check_in"),
		CheckOut:     first(values, "check_out"),
		Guests:       count(first(values, "min_guests", "guests")),
		PriceMin:     count(first(values, "price_min", "price_min_rub")),
		PriceMax:     count(first(values, "price_max", "price_max_rub")),
		PropertyType: PropertyType(first(values, "type", "property_type")),
		RentalTerm:   RentalTerm(first(values, "rental_term")),
		Sort:         Sort(first(values, "sort")),
		Page:         count(first(values, "page")),
		Limit:        count(first(values, "limit")),
	}
	return c.Normalize(f)
}

// first returns the first non-blank value among keys, in priority order.
func first(values url.Values, keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(values.Get(key)); v != "" {
			return v
		}
	}
	return ""
}

// count parses a non-negative integer; anything else is zero.
func count(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
