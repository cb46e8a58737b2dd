// pkg/registry/schema.go
package registry

import "github.com/Sankalp-SISL/MIDC-chatbot/internal/models"

// KeywordRegistry holds the named keyword sets and message tables that drive
// mode arbitration, document selection and response enrichment.
type KeywordRegistry struct {
	Version                 string              `yaml:"version"`
	EntitySafety            []string            `yaml:"entitySafety"`
	ExplicitInternet        []string            `yaml:"explicitInternet"`
	HighPriority            []string            `yaml:"highPriority"`
	CanonicalContactSection string              `yaml:"canonicalContactSection"`
	FallbackSections        []string            `yaml:"fallbackSections"`
	MandatoryTopics         []MandatoryTopic    `yaml:"mandatoryTopics"`
	SectionHints            map[string][]string `yaml:"sectionHints"`
	Intents                 []IntentRule        `yaml:"intents"`
	FollowUps               map[string]string   `yaml:"followUps"`
	Messages                Messages            `yaml:"messages"`
}

// MandatoryTopic forces every companion section into the grounding set when
// one of its triggers appears in the query.
type MandatoryTopic struct {
	Name     string   `yaml:"name"`
	Triggers []string `yaml:"triggers"`
	Sections []string `yaml:"sections"`
}

type IntentRule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

type Messages struct {
	NotAvailable        LocalizedText `yaml:"notAvailable"`
	Unavailable         LocalizedText `yaml:"unavailable"`
	Disclaimer          LocalizedText `yaml:"disclaimer"`
	LanguageInstruction LocalizedText `yaml:"languageInstruction"`
}

// LocalizedText carries one message per language tag.
type LocalizedText struct {
	Default string `yaml:"default"`
	Local   string `yaml:"local"`
}

// For returns the text for lang, falling back to the default language.
func (t LocalizedText) For(lang models.Language) string {
	if lang == models.LanguageLocal && t.Local != "" {
		return t.Local
	}
	return t.Default
}

// All returns every non-empty variant.
func (t LocalizedText) All() []string {
	out := make([]string, 0, 2)
	if t.Default != "" {
		out = append(out, t.Default)
	}
	if t.Local != "" {
		out = append(out, t.Local)
	}
	return out
}
