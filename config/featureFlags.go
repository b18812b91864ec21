package config

import (
	"os"
	"strconv"
	"strings"
)

// SuggestionsDisabled turns off the external account-matching model entirely;
// mapping suggestions come from the local heuristic scorer only. Imports and
// consolidations never depend on this flag.
//
// Set via env:
// - SUGGESTIONS_DISABLED=true
func SuggestionsDisabled() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("SUGGESTIONS_DISABLED")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// StrictPeriodLabels makes unparseable period column labels a hard import
// error instead of carrying them through as opaque reference strings.
//
// Set via env:
// - STRICT_PERIOD_LABELS=true
func StrictPeriodLabels() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("STRICT_PERIOD_LABELS")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// RunEventsDisabled suppresses outbox publishing to Pub/Sub (local dev,
// CI). Outbox rows are still written; the dispatcher just never drains them.
//
// Set via env:
// - RUN_EVENTS_DISABLED=true
func RunEventsDisabled() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("RUN_EVENTS_DISABLED")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// AutoMapThreshold is the confidence at or above which a mapping suggestion
// goes live without review. Suggestions below it are stored pending.
//
// Set via env:
// - AUTO_MAP_THRESHOLD=0.8
func AutoMapThreshold() float64 {
	v := strings.TrimSpace(os.Getenv("AUTO_MAP_THRESHOLD"))
	if v == "" {
		return 0.8
	}
	threshold, err := strconv.ParseFloat(v, 64)
	if err != nil || threshold <= 0 || threshold > 1 {
		return 0.8
	}
	return threshold
}
