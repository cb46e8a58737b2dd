// internal/workers/grounded-answer/assemble-context/models.go
package assemblecontext

import (
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/models"
	selectdocuments "github.com/Sankalp-SISL/MIDC-chatbot/internal/workers/grounded-answer/select-documents"
)

type Input struct {
	Documents []selectdocuments.SelectedDocument `json:"documents"`
}

type Output struct {
	Context          string                  `json:"context"`
	ChunkCount       int                     `json:"chunkCount"`
	Contributing     []string                `json:"contributing"`
	Sources          []string                `json:"sources"`
	RecommendedPages []models.Link           `json:"recommendedPages"`
	Forms            []models.FormDescriptor `json:"forms"`
	ExternalLinks    []models.Link           `json:"externalLinks"`
}
