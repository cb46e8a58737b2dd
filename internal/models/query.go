// internal/models/query.go
package models

import "strings"

// ExplicitMode is the caller's mode request.
type ExplicitMode string

const (
	ExplicitModeNone     ExplicitMode = "none"
	ExplicitModeInternet ExplicitMode = "internet"
)

// ParseExplicitMode accepts "", "none" and "internet" in any case.
func ParseExplicitMode(s string) (ExplicitMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return ExplicitModeNone, true
	case "internet":
		return ExplicitModeInternet, true
	}
	return "", false
}

// Query is one caller question.
type Query struct {
	Text         string       `json:"question"`
	ExplicitMode ExplicitMode `json:"mode,omitempty"`
}

// Language is the tag produced by language detection.
type Language string

const (
	LanguageLocal   Language = "local"
	LanguageDefault Language = "default"
)

// Mode is the answer source chosen for a query.
type Mode string

const (
	ModeInternal Mode = "internal"
	ModeInternet Mode = "internet"
)
