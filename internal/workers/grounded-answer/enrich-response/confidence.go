// internal/workers/grounded-answer/enrich-response/confidence.go
package enrichresponse

import (
	"strings"
	"unicode/utf8"

	"github.com/Sankalp-SISL/MIDC-chatbot/pkg/registry"
)

const (
	confidenceUnavailable = 0.0
	confidenceSentinel    = 0.1
	confidenceTiered      = 0.9
	overlapBase           = 0.3
	overlapPerWord        = 0.02
	minOverlapWordRunes   = 3
)

// Confidence scores an answer against the context it was grounded on. The
// result is always in [0,1]; the unavailability text scores 0 and any answer
// carrying the not-available sentinel scores exactly 0.1.
func Confidence(formula Formula, text, context string, messages registry.Messages) float64 {
	for _, s := range messages.Unavailable.All() {
		if strings.TrimSpace(text) == s {
			return confidenceUnavailable
		}
	}
	for _, s := range messages.NotAvailable.All() {
		if strings.Contains(text, s) {
			return confidenceSentinel
		}
	}
	if strings.TrimSpace(text) == "" {
		return confidenceSentinel
	}

	if formula == FormulaTiered {
		return confidenceTiered
	}
	return clamp(overlapBase + overlapPerWord*float64(sharedWords(text, context)))
}

func sharedWords(text, context string) int {
	if context == "" {
		return 0
	}
	ctx := registry.NewText(context)
	shared := 0
	for _, w := range registry.NewText(text).Words() {
		if utf8.RuneCountInString(w) < minOverlapWordRunes {
			continue
		}
		if ctx.Contains(w) {
			shared++
		}
	}
	return shared
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
