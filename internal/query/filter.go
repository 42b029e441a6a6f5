// Package query maps catalog filter state to and from its URL query form.
package query

import (
	"strings"
	"time"
)

// Sort orders catalog results.
type Sort string

const (
	SortPriceAsc   Sort = "price_asc"
	SortPriceDesc  Sort = "price_desc"
	SortRatingDesc Sort = "rating_desc"
	SortNewest     Sort = "newest"
)

// Sorts lists the accepted sort keys in display order.
var Sorts = []Sort{SortPriceAsc, SortPriceDesc, SortRatingDesc, SortNewest}

// PropertyType narrows results to one kind of home. Empty means any.
type PropertyType string

const (
	PropertyAny       PropertyType = ""
	PropertyApartment PropertyType = "apartment"
	PropertyLoft      PropertyType = "loft"
	PropertyTownhouse PropertyType = "townhouse"
	PropertyCabin     PropertyType = "cabin"
)

// PropertyTypes lists the accepted property types, starting with "any".
var PropertyTypes = []PropertyType{PropertyAny, PropertyApartment, PropertyLoft, PropertyTownhouse, PropertyCabin}

// RentalTerm narrows results to nightly or monthly stays. Empty means any.
type RentalTerm string

const (
	TermAny   RentalTerm = ""
	TermShort RentalTerm = "short_term"
	TermLong  RentalTerm = "long_term"
)

// RentalTerms lists the accepted rental terms, starting with "any".
var RentalTerms = []RentalTerm{TermAny, TermShort, TermLong}

const (
	// DefaultLimit is the catalog page size when none is configured.
	DefaultLimit = 20
	// MaxLimit caps the page size accepted from a URL.
	MaxLimit = 100
	// DefaultSort applies when the URL carries no or an unknown sort key.
	DefaultSort = SortPriceAsc

	dateLayout = time.DateOnly
)

// FilterState is the structured catalog query. Zero-valued optional fields
// mean "no constraint". Page is 1-based.
type FilterState struct {
	City         string
	CheckIn      string
	CheckOut     string
	Guests       int
	PriceMin     int
	PriceMax     int
	PropertyType PropertyType
	RentalTerm   RentalTerm
	Sort         Sort
	Page         int
	Limit        int
}

// Offset returns the zero-based index of the first result on the page.
func (f FilterState) Offset() int {
	if f.Page < 1 || f.Limit < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// HasConstraints reports whether any optional filter is set.
func (f FilterState) HasConstraints() bool {
	return f.City != "" || f.CheckIn != "" || f.CheckOut != "" || f.Guests > 0 ||
		f.PriceMin > 0 || f.PriceMax > 0 || f.PropertyType != PropertyAny || f.RentalTerm != TermAny
}

// ValidSort reports whether s is a known sort key.
func ValidSort(s Sort) bool {
	for _, known := range Sorts {
		if s == known {
			return true
		}
	}
	return false
}

func validPropertyType(p PropertyType) bool {
	for _, known := range PropertyTypes {
		if p == known {
			return true
		}
	}
	return false
}

func validRentalTerm(r RentalTerm) bool {
	for _, known := range RentalTerms {
		if r == known {
			return true
		}
	}
	return false
}

func normalizeDate(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	parsed, err := time.Parse(dateLayout, trimmed)
	if err != nil {
		return ""
	}
	return parsed.Format(dateLayout)
}

// Next returns the element after current in options, wrapping around.
func Next[T comparable](options []T, current T) T {
	for i, option := range options {
		if option == current {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}
