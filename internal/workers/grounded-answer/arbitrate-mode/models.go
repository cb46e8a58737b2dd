// internal/workers/grounded-answer/arbitrate-mode/models.go
package arbitratemode

import "github.com/Sankalp-SISL/MIDC-chatbot/internal/models"

// Rule names which decision rule fired.
type Rule string

const (
	RuleEntitySafety  Rule = "entity_safety"
	RuleExplicitFlag  Rule = "explicit_flag"
	RuleTriggerPhrase Rule = "trigger_phrase"
	RuleDefault       Rule = "default"
)

type Input struct {
	Text         string              `json:"text"`
	ExplicitMode models.ExplicitMode `json:"explicitMode"`
}

type Output struct {
	Mode    models.Mode `json:"mode"`
	Rule    Rule        `json:"rule"`
	Keyword string      `json:"keyword,omitempty"`
}

// EntitySafety reports whether the entity-safety override decided the mode.
func (o *Output) EntitySafety() bool {
	return o.Rule == RuleEntitySafety
}
