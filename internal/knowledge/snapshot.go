package knowledge

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	apperrors "github.com/Sankalp-SISL/MIDC-chatbot/internal/common/errors"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/logger"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/metrics"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/models"
)

type snapshotState struct {
	docs     []models.DocumentRecord
	index    map[string]int
	loadedAt time.Time
}

// Snapshot is a process-lifetime, read-only copy of a source repository.
// Refresh rebuilds it wholesale and swaps it in atomically; readers never see
// a partially built state.
type Snapshot struct {
	source  Repository
	state   atomic.Pointer[snapshotState]
	refresh sync.Mutex
	logger  logger.Logger
}

func NewSnapshot(source Repository, log logger.Logger) *Snapshot {
	return &Snapshot{
		source: source,
		logger: log.WithFields(map[string]interface{}{"component": "snapshot"}),
	}
}

// Refresh reloads every document from the source. On failure the previous
// state is kept and the error returned.
func (s *Snapshot) Refresh(ctx context.Context) error {
	s.refresh.Lock()
	defer s.refresh.Unlock()

	if inv, ok := s.source.(Invalidator); ok {
		if err := inv.Invalidate(ctx); err != nil {
			s.logger.Warn("cache invalidation failed", map[string]interface{}{"error": err.Error()})
		}
	}

	docs, err := s.source.ListDocuments(ctx)
	if err != nil {
		metrics.SnapshotRefreshes.WithLabelValues("error").Inc()
		s.logger.Error("snapshot refresh failed", map[string]interface{}{"error": err.Error()})
		return err
	}

	next := &snapshotState{
		docs:     docs,
		index:    make(map[string]int, len(docs)),
		loadedAt: time.Now().UTC(),
	}
	for i, d := range docs {
		if _, dup := next.index[d.SectionID]; dup {
			s.logger.Warn("duplicate sectionId, keeping first", map[string]interface{}{"sectionId": d.SectionID})
			continue
		}
		next.index[d.SectionID] = i
	}

	s.state.Store(next)
	metrics.SnapshotRefreshes.WithLabelValues("ok").Inc()
	metrics.SnapshotDocuments.Set(float64(len(docs)))
	s.logger.Info("snapshot refreshed", map[string]interface{}{"documents": len(docs)})
	return nil
}

// Ready reports whether at least one refresh has succeeded.
func (s *Snapshot) Ready() bool {
	return s.state.Load() != nil
}

// LoadedAt is the time of the last successful refresh.
func (s *Snapshot) LoadedAt() time.Time {
	if st := s.state.Load(); st != nil {
		return st.loadedAt
	}
	return time.Time{}
}

func (s *Snapshot) ListDocuments(ctx context.Context) ([]models.DocumentRecord, error) {
	st := s.state.Load()
	if st == nil {
		return nil, apperrors.NewKnowledgeBaseUnavailableError("snapshot", nil)
	}
	return st.docs, nil
}

func (s *Snapshot) GetDocument(ctx context.Context, sectionID string) (*models.DocumentRecord, error) {
	st := s.state.Load()
	if st == nil {
		return nil, apperrors.NewKnowledgeBaseUnavailableError("snapshot", nil)
	}
	i, ok := st.index[sectionID]
	if !ok {
		return nil, apperrors.NewDocumentNotFoundError(sectionID)
	}
	doc := st.docs[i]
	return &doc, nil
}
