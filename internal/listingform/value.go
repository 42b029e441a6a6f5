package listingform

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Kind discriminates the variants a field value can hold.
type Kind int

const (
	KindNumber Kind = iota
	KindEnum
	KindText
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindEnum:
		return "enum"
	case KindText:
		return "text"
	case KindList:
		return "list"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is one field's content. Exactly one of the payloads is meaningful,
// chosen by Kind.
type Value struct {
	kind  Kind
	num   float64
	text  string
	items []string
}

// Number builds a numeric value.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// Enum builds a value chosen from a fixed option set.
func Enum(option string) Value {
	return Value{kind: KindEnum, text: strings.ToLower(strings.TrimSpace(option))}
}

// Text builds a free-text value.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// List builds a list value, dropping blank entries.
func List(items ...string) Value {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return Value{kind: KindList, items: out}
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// Num returns the number, or 0 for other kinds.
func (v Value) Num() float64 {
	if v.kind != KindNumber {
		return 0
	}
	return v.num
}

// Int returns the number rounded to the nearest integer.
func (v Value) Int() int { return int(math.Round(v.Num())) }

// Str returns the enum option or text, or "" for other kinds.
func (v Value) Str() string {
	if v.kind != KindEnum && v.kind != KindText {
		return ""
	}
	return v.text
}

// Items returns a copy of the list, or nil for other kinds.
func (v Value) Items() []string {
	if v.kind != KindList {
		return nil
	}
	return slices.Clone(v.items)
}

// String renders the value for editing: numbers without trailing zeros,
// lists one item per line.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindList:
		return strings.Join(v.items, "\n")
	default:
		return v.text
	}
}

// Parse converts raw user input into a value of kind k.
func Parse(k Kind, raw string) (Value, error) {
	switch k {
	case KindNumber:
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			return Number(0), nil
		}
		n, err := strconv.ParseFloat(strings.ReplaceAll(trimmed, ",", "."), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return Value{}, fmt.Errorf("%q is not a number", trimmed)
		}
		return Number(n), nil
	case KindEnum:
		return Enum(raw), nil
	case KindText:
		return Text(raw), nil
	case KindList:
		return List(strings.Split(raw, "\n")...), nil
	default:
		return Value{}, fmt.Errorf("unsupported kind %s", k)
	}
}
