package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/five82/rentme/internal/api"
)

// formatCents renders an amount in minor units as "123.45".
func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

func formatMoney(m api.Money) string {
	if m.Currency == "" {
		return formatCents(m.Amount)
	}
	return formatCents(m.Amount) + " " + strings.ToUpper(m.Currency)
}

// formatRate renders a listing price with its unit, "night" by default.
func formatRate(cents int64, unit string) string {
	if unit == "" {
		unit = "night"
	}
	return formatCents(cents) + "/" + unit
}

func formatRating(r float64) string {
	if r <= 0 {
		return "new"
	}
	return fmt.Sprintf("★ %.1f", r)
}

// formatTimestamp shortens an RFC3339 time to local "Jan 02 15:04".
func formatTimestamp(raw string) string {
	if raw == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	return t.Local().Format("Jan 02 15:04")
}

// truncate shortens s to at most n runes, marking the cut with "…".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
