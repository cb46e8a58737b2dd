package knowledge

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	apperrors "github.com/Sankalp-SISL/MIDC-chatbot/internal/common/errors"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/logger"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/models"
)

var tableNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// PostgresRepository keeps each DocumentRecord as JSONB keyed by section_id.
type PostgresRepository struct {
	db     *sql.DB
	table  string
	logger logger.Logger
}

func NewPostgresRepository(db *sql.DB, table string, log logger.Logger) (*PostgresRepository, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, apperrors.NewConfigurationError(fmt.Sprintf("invalid table name %q", table))
	}
	return &PostgresRepository{
		db:     db,
		table:  table,
		logger: log.WithFields(map[string]interface{}{"repository": "postgres", "table": table}),
	}, nil
}

// EnsureSchema creates the backing table when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		section_id TEXT PRIMARY KEY,
		record JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`, r.table)
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return apperrors.NewExternalServiceError("postgres", err)
	}
	return nil
}

func (r *PostgresRepository) ListDocuments(ctx context.Context) ([]models.DocumentRecord, error) {
	query := fmt.Sprintf("SELECT section_id, record FROM %s ORDER BY section_id", r.table)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.NewKnowledgeBaseUnavailableError("postgres", err)
	}
	defer rows.Close()

	var docs []models.DocumentRecord
	for rows.Next() {
		var (
			sectionID string
			raw       []byte
		)
		if err := rows.Scan(&sectionID, &raw); err != nil {
			return nil, apperrors.NewKnowledgeBaseUnavailableError("postgres", err)
		}

		var doc models.DocumentRecord
		if err := json.Unmarshal(raw, &doc); err != nil {
			r.logger.Warn("skipping malformed record", map[string]interface{}{
				"sectionId": sectionID,
				"error":     err.Error(),
			})
			continue
		}
		doc.SectionID = sectionID
		docs = append(docs, normalize(doc))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewKnowledgeBaseUnavailableError("postgres", err)
	}
	return docs, nil
}

func (r *PostgresRepository) GetDocument(ctx context.Context, sectionID string) (*models.DocumentRecord, error) {
	query := fmt.Sprintf("SELECT record FROM %s WHERE section_id = $1", r.table)

	var raw []byte
	err := r.db.QueryRowContext(ctx, query, sectionID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewDocumentNotFoundError(sectionID)
	}
	if err != nil {
		return nil, apperrors.NewKnowledgeBaseUnavailableError("postgres", err)
	}

	var doc models.DocumentRecord
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, apperrors.NewKnowledgeBaseUnavailableError("postgres", fmt.Errorf("decode %s: %w", sectionID, err))
	}
	doc.SectionID = sectionID
	doc = normalize(doc)
	return &doc, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, doc models.DocumentRecord) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`INSERT INTO %s (section_id, record, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (section_id) DO UPDATE SET record = EXCLUDED.record, updated_at = NOW()`, r.table)
	if _, err := r.db.ExecContext(ctx, query, doc.SectionID, raw); err != nil {
		return apperrors.NewExternalServiceError("postgres", err)
	}
	return nil
}
