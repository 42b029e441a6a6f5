package listingform

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// keyNoMaxNights toggles Form.NoMaxNights from a listing file.
const keyNoMaxNights = "no_max_nights"

// Decode reads a listing written as TOML into f. Top-level keys are field
// names; the address may be given either as dotted keys or as an
// [address] table. Fields missing from the file keep their current value,
// so Decode can patch a form loaded with FromListing.
//
//	title = "Loft by the river"
//	property_type = "loft"
//	rate_rub = 4200
//	amenities = ["wifi", "washer"]
//
//	[address]
//	city = "Brno"
func (f *Form) Decode(r io.Reader) error {
	var raw map[string]any
	if err := toml.NewDecoder(r).Decode(&raw); err != nil {
		return fmt.Errorf("parse listing: %w", err)
	}

	flat := make(map[string]any, len(raw))
	flatten("", raw, flat)

	if v, ok := flat[keyNoMaxNights]; ok {
		b, isBool := v.(bool)
		if !isBool {
			return fmt.Errorf("%s: want true or false, got %v", keyNoMaxNights, v)
		}
		f.NoMaxNights = b
		delete(flat, keyNoMaxNights)
	}

	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var problems []string
	for _, k := range keys {
		field := Field(k)
		def, ok := Schema[field]
		if !ok {
			problems = append(problems, fmt.Sprintf("%s: %v", k, ErrUnknownField))
			continue
		}
		v, err := valueOf(def.Kind, flat[k])
		if err == nil {
			err = f.Set(field, v)
		}
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", k, err))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("listing file: %s", strings.Join(problems, "; "))
	}
	return nil
}

func flatten(prefix string, in map[string]any, out map[string]any) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if table, ok := v.(map[string]any); ok {
			flatten(key, table, out)
			continue
		}
		out[key] = v
	}
}

func valueOf(k Kind, raw any) (Value, error) {
	switch v := raw.(type) {
	case int64:
		if k == KindNumber {
			return Number(float64(v)), nil
		}
	case float64:
		if k == KindNumber {
			return Number(v), nil
		}
	case string:
		return Parse(k, v)
	case []any:
		if k != KindList {
			break
		}
		items := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return Value{}, fmt.Errorf("list items must be strings, got %v", item)
			}
			items = append(items, s)
		}
		return List(items...), nil
	case fmt.Stringer:
		// Bare TOML dates such as available_from = 2026-05-01.
		return Parse(k, v.String())
	}
	return Value{}, fmt.Errorf("%v does not fit a %s field", raw, k)
}
