// internal/workers/grounded-answer/detect-language/handler.go
package detectlanguage

import (
	"unicode"

	"github.com/Sankalp-SISL/MIDC-chatbot/internal/models"
	"github.com/Sankalp-SISL/MIDC-chatbot/pkg/registry"
)

const Stage = "detect-language"

// devanagari is the U+0900..U+097F block used by Marathi and Hindi.
var devanagari = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x0900, Hi: 0x097F, Stride: 1}},
}

// Detect tags text as local when any rune is Devanagari.
func Detect(text string) models.Language {
	for _, r := range text {
		if unicode.Is(devanagari, r) {
			return models.LanguageLocal
		}
	}
	return models.LanguageDefault
}

type Handler struct {
	registry *registry.KeywordRegistry
}

func NewHandler(reg *registry.KeywordRegistry) *Handler {
	return &Handler{registry: reg}
}

// Execute never fails.
func (h *Handler) Execute(input *Input) *Output {
	lang := Detect(input.Text)
	return &Output{
		Language:    lang,
		Instruction: h.registry.Messages.LanguageInstruction.For(lang),
	}
}
