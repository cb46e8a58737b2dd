package knowledge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/Sankalp-SISL/MIDC-chatbot/internal/common/errors"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/logger"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSection(t *testing.T, root, sectionID, body string) {
	t.Helper()
	dir := filepath.Join(root, sectionID)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, contentFileName), []byte(body), 0o644))
}

func TestFileRepository_ListDocuments(t *testing.T) {
	root := t.TempDir()
	writeSection(t, root, "contact", `{
		"title": "Contact Us",
		"source_url": "https://www.midcindia.org/contact",
		"chunks": ["Udyog Sarathi, Andheri (E), Mumbai"],
		"related_links": [{"title": "Regional offices", "url": "https://www.midcindia.org/regional"}]
	}`)
	writeSection(t, root, "about-midc", `{
		"chunks": ["MIDC was established in 1962."],
		"forms": [{"name": "Plot application", "required_fields": ["applicant"]}],
		"content_type": "form"
	}`)
	writeSection(t, root, "broken", `{"title": 7}`)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty-dir"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("x"), 0o644))

	repo := NewFileRepository(root, logger.NewTestLogger(t))
	docs, err := repo.ListDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "about-midc", docs[0].SectionID)
	assert.Equal(t, "About Midc", docs[0].Title)
	assert.Equal(t, models.ContentTypeForm, docs[0].ContentType)
	require.Len(t, docs[0].Forms, 1)
	assert.Equal(t, []string{"applicant"}, docs[0].Forms[0].RequiredFields)

	assert.Equal(t, "contact", docs[1].SectionID)
	assert.Equal(t, "Contact Us", docs[1].Title)
	assert.Equal(t, models.ContentTypePage, docs[1].ContentType)
	assert.Equal(t, "https://www.midcindia.org/regional", docs[1].RelatedLinks[0].URL)
}

func TestFileRepository_MissingRoot(t *testing.T) {
	repo := NewFileRepository(filepath.Join(t.TempDir(), "nope"), logger.NewTestLogger(t))

	_, err := repo.ListDocuments(context.Background())
	assert.True(t, errors.Is(err, apperrors.ErrKnowledgeBaseUnavailable))

	_, err = repo.GetDocument(context.Background(), "contact")
	assert.True(t, errors.Is(err, apperrors.ErrKnowledgeBaseUnavailable))
}

func TestFileRepository_GetDocument(t *testing.T) {
	root := t.TempDir()
	writeSection(t, root, "faq", `{"title":"FAQ","chunks":["What is a plot?"]}`)
	repo := NewFileRepository(root, logger.NewTestLogger(t))

	doc, err := repo.GetDocument(context.Background(), "faq")
	require.NoError(t, err)
	assert.Equal(t, "FAQ", doc.Title)

	tests := []string{"missing", "../etc", "UPPER", ""}
	for _, id := range tests {
		t.Run(id, func(t *testing.T) {
			_, err := repo.GetDocument(context.Background(), id)
			assert.True(t, errors.Is(err, apperrors.ErrDocumentNotFound))
		})
	}
}

func TestDecodeDocumentFile_Invalid(t *testing.T) {
	_, err := DecodeDocumentFile("x", []byte(`{"title":"no chunks"}`))
	assert.Error(t, err)

	_, err = DecodeDocumentFile("x", []byte(`not json`))
	assert.Error(t, err)
}
