package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperrors "github.com/Sankalp-SISL/MIDC-chatbot/internal/common/errors"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/logger"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/validation"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/models"

	"golang.org/x/sync/errgroup"
)

const (
	contentFileName  = "content.json"
	maxParallelReads = 8
)

// documentFile is the on-disk shape written by the ingestion job:
// <root>/<sectionId>/content.json.
type documentFile struct {
	Title        string        `json:"title"`
	SourceURL    string        `json:"source_url"`
	Chunks       []string      `json:"chunks"`
	RelatedLinks []models.Link `json:"related_links"`
	Forms        []struct {
		Name           string   `json:"name"`
		URL            string   `json:"url"`
		RequiredFields []string `json:"required_fields"`
	} `json:"forms"`
	ContentType string `json:"content_type"`
}

// FileRepository reads section directories from a local root.
type FileRepository struct {
	root   string
	logger logger.Logger
}

func NewFileRepository(root string, log logger.Logger) *FileRepository {
	return &FileRepository{
		root:   root,
		logger: log.WithFields(map[string]interface{}{"repository": "file", "root": root}),
	}
}

// Root returns the directory the repository reads from.
func (r *FileRepository) Root() string {
	return r.root
}

func (r *FileRepository) ListDocuments(ctx context.Context) ([]models.DocumentRecord, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		return nil, apperrors.NewKnowledgeBaseUnavailableError("file", err)
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() && ValidSectionID(e.Name()) {
			ids = append(ids, e.Name())
		}
	}
	sort.Strings(ids)

	records := make([]*models.DocumentRecord, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelReads)

	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := r.readSection(id)
			if err != nil {
				if !errors.Is(err, fs.ErrNotExist) {
					r.logger.Warn("skipping unreadable section", map[string]interface{}{
						"sectionId": id,
						"error":     err.Error(),
					})
				}
				return nil
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperrors.NewKnowledgeBaseUnavailableError("file", err)
	}

	docs := make([]models.DocumentRecord, 0, len(records))
	for _, rec := range records {
		if rec != nil {
			docs = append(docs, *rec)
		}
	}
	return docs, nil
}

func (r *FileRepository) GetDocument(ctx context.Context, sectionID string) (*models.DocumentRecord, error) {
	if !ValidSectionID(sectionID) {
		return nil, apperrors.NewDocumentNotFoundError(sectionID)
	}
	if _, err := os.Stat(r.root); err != nil {
		return nil, apperrors.NewKnowledgeBaseUnavailableError("file", err)
	}

	rec, err := r.readSection(sectionID)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NewDocumentNotFoundError(sectionID)
		}
		return nil, apperrors.NewKnowledgeBaseUnavailableError("file", err)
	}
	return rec, nil
}

func (r *FileRepository) readSection(sectionID string) (*models.DocumentRecord, error) {
	data, err := os.ReadFile(filepath.Join(r.root, sectionID, contentFileName))
	if err != nil {
		return nil, err
	}
	return DecodeDocumentFile(sectionID, data)
}

// DecodeDocumentFile validates and converts one content.json payload.
func DecodeDocumentFile(sectionID string, data []byte) (*models.DocumentRecord, error) {
	result, err := validation.ValidateJSON(validation.DocumentFile, data)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, fmt.Errorf("section %s: %s", sectionID, result.Summary())
	}

	var f documentFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("section %s: %w", sectionID, err)
	}

	rec := &models.DocumentRecord{
		SectionID:    sectionID,
		Title:        strings.TrimSpace(f.Title),
		SourceURL:    strings.TrimSpace(f.SourceURL),
		Chunks:       f.Chunks,
		RelatedLinks: f.RelatedLinks,
		ContentType:  models.ContentType(f.ContentType),
	}
	if rec.Title == "" {
		rec.Title = models.TitleFromSectionID(sectionID)
	}
	if !rec.ContentType.Valid() {
		rec.ContentType = models.ContentTypePage
	}
	for _, form := range f.Forms {
		rec.Forms = append(rec.Forms, models.FormDescriptor{
			Name:           form.Name,
			URL:            form.URL,
			RequiredFields: form.RequiredFields,
		})
	}
	return rec, nil
}
