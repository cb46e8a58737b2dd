// internal/workers/grounded-answer/select-documents/models.go
package selectdocuments

import "github.com/Sankalp-SISL/MIDC-chatbot/internal/models"

type Input struct {
	Text string `json:"text"`
	// EntitySafety is set when the mode arbiter forced internal mode.
	EntitySafety bool `json:"entitySafety"`
}

// SelectedDocument is one grounding document and why it was picked.
type SelectedDocument struct {
	Record    models.DocumentRecord `json:"record"`
	Mandatory bool                  `json:"mandatory"`
	Priority  bool                  `json:"priority"`
	Reason    string                `json:"reason"`
}

type Output struct {
	Documents []SelectedDocument `json:"documents"`
	Strategy  string             `json:"strategy"`
	FellBack  bool               `json:"fellBack"`
}

// SectionIDs lists the selected sections in order.
func (o *Output) SectionIDs() []string {
	ids := make([]string, len(o.Documents))
	for i, d := range o.Documents {
		ids[i] = d.Record.SectionID
	}
	return ids
}
