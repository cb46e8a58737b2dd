// pkg/registry/registry.go
package registry

import (
	"bytes"
	"embed"
	"fmt"
	"os"

	"github.com/Sankalp-SISL/MIDC-chatbot/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/keywords.yaml
var defaultsFS embed.FS

// Default returns the built-in registry.
func Default() (*KeywordRegistry, error) {
	data, err := defaultsFS.ReadFile("defaults/keywords.yaml")
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Load reads a registry file. An empty path yields the built-in registry.
func Load(path string) (*KeywordRegistry, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keyword registry %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML registry. Unknown keys are rejected so a
// misspelt set name cannot silently disable a rule.
func Parse(data []byte) (*KeywordRegistry, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var reg KeywordRegistry
	if err := dec.Decode(&reg); err != nil {
		return nil, fmt.Errorf("decode keyword registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Validate checks the structural rules every registry must satisfy.
func (r *KeywordRegistry) Validate() error {
	switch {
	case len(r.EntitySafety) == 0:
		return fmt.Errorf("keyword registry: entitySafety must not be empty")
	case len(r.ExplicitInternet) == 0:
		return fmt.Errorf("keyword registry: explicitInternet must not be empty")
	case len(r.FallbackSections) == 0:
		return fmt.Errorf("keyword registry: fallbackSections must not be empty")
	case r.CanonicalContactSection == "":
		return fmt.Errorf("keyword registry: canonicalContactSection is required")
	}

	for i, topic := range r.MandatoryTopics {
		if topic.Name == "" || len(topic.Triggers) == 0 || len(topic.Sections) == 0 {
			return fmt.Errorf("keyword registry: mandatoryTopics[%d] needs name, triggers and sections", i)
		}
	}

	known := make(map[string]bool, len(r.Intents))
	for i, rule := range r.Intents {
		if !models.IsIntent(rule.Name) {
			return fmt.Errorf("keyword registry: intents[%d] has unknown intent %q", i, rule.Name)
		}
		if len(rule.Keywords) == 0 {
			return fmt.Errorf("keyword registry: intent %q has no keywords", rule.Name)
		}
		known[rule.Name] = true
	}
	for intent := range r.FollowUps {
		if !known[intent] && intent != models.IntentGeneral {
			return fmt.Errorf("keyword registry: followUps references unknown intent %q", intent)
		}
	}

	messages := map[string]LocalizedText{
		"notAvailable":        r.Messages.NotAvailable,
		"unavailable":         r.Messages.Unavailable,
		"disclaimer":          r.Messages.Disclaimer,
		"languageInstruction": r.Messages.LanguageInstruction,
	}
	for name, text := range messages {
		if text.Default == "" || text.Local == "" {
			return fmt.Errorf("keyword registry: messages.%s needs default and local text", name)
		}
	}
	return nil
}

// IntentFor returns the first intent whose keywords occur in text, or
// "general".
func (r *KeywordRegistry) IntentFor(text *Text) string {
	for _, rule := range r.Intents {
		if _, ok := text.FirstMatch(rule.Keywords); ok {
			return rule.Name
		}
	}
	return models.IntentGeneral
}

// FollowUpFor returns the canned follow-up message for intent, if any.
func (r *KeywordRegistry) FollowUpFor(intent string) string {
	return r.FollowUps[intent]
}

// MatchedTopics returns the mandatory topics triggered by text.
func (r *KeywordRegistry) MatchedTopics(text *Text) []MandatoryTopic {
	var out []MandatoryTopic
	for _, topic := range r.MandatoryTopics {
		if _, ok := text.FirstMatch(topic.Triggers); ok {
			out = append(out, topic)
		}
	}
	return out
}

// HintedSections counts, per sectionId, how many hint keywords in text point
// at it.
func (r *KeywordRegistry) HintedSections(text *Text) map[string]int {
	hits := make(map[string]int)
	for keyword, sections := range r.SectionHints {
		if !text.Contains(keyword) {
			continue
		}
		for _, s := range sections {
			hits[s]++
		}
	}
	return hits
}
