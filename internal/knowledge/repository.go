// Package knowledge provides the document repositories that ground answers
// and the in-memory snapshot requests read from.
package knowledge

import (
	"context"
	"regexp"

	"github.com/Sankalp-SISL/MIDC-chatbot/internal/models"
)

// Repository is the read contract the answer pipeline depends on.
// Implementations return errors matching errors.ErrKnowledgeBaseUnavailable
// when the backing store cannot be reached and errors.ErrDocumentNotFound
// when a section does not exist.
type Repository interface {
	ListDocuments(ctx context.Context) ([]models.DocumentRecord, error)
	GetDocument(ctx context.Context, sectionID string) (*models.DocumentRecord, error)
}

// Writer is implemented by stores that kb-admin can push records into.
type Writer interface {
	Upsert(ctx context.Context, doc models.DocumentRecord) error
}

// Invalidator is implemented by caching layers that must be cleared before
// a snapshot refresh.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

var sectionIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,127}$`)

// ValidSectionID reports whether id is safe to use as a path segment, index
// document id or cache key suffix.
func ValidSectionID(id string) bool {
	return sectionIDPattern.MatchString(id)
}
