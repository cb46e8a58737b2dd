package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	apperrors "github.com/Sankalp-SISL/MIDC-chatbot/internal/common/errors"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/logger"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const maxIndexedDocuments = 1000

// ElasticsearchRepository stores one DocumentRecord per index document, with
// the sectionId as document id.
type ElasticsearchRepository struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewElasticsearchRepository(client *elasticsearch.Client, index string, log logger.Logger) *ElasticsearchRepository {
	return &ElasticsearchRepository{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"repository": "elasticsearch", "index": index}),
	}
}

type esSearchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string                `json:"_id"`
			Source models.DocumentRecord `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

type esGetResponse struct {
	Found  bool                  `json:"found"`
	Source models.DocumentRecord `json:"_source"`
}

func (r *ElasticsearchRepository) ListDocuments(ctx context.Context) ([]models.DocumentRecord, error) {
	body, _ := json.Marshal(map[string]interface{}{
		"size":  maxIndexedDocuments,
		"query": map[string]interface{}{"match_all": map[string]interface{}{}},
	})

	req := esapi.SearchRequest{
		Index: []string{r.index},
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, r.client)
	if err != nil {
		return nil, apperrors.NewKnowledgeBaseUnavailableError("elasticsearch", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, apperrors.NewKnowledgeBaseUnavailableError("elasticsearch", fmt.Errorf("search: %s", res.Status()))
	}

	var parsed esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperrors.NewKnowledgeBaseUnavailableError("elasticsearch", fmt.Errorf("decode search: %w", err))
	}

	docs := make([]models.DocumentRecord, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		doc := hit.Source
		if doc.SectionID == "" {
			doc.SectionID = hit.ID
		}
		docs = append(docs, normalize(doc))
	}
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].SectionID < docs[j].SectionID })

	if len(docs) == maxIndexedDocuments {
		r.logger.Warn("document listing hit the size cap", map[string]interface{}{"cap": maxIndexedDocuments})
	}
	return docs, nil
}

func (r *ElasticsearchRepository) GetDocument(ctx context.Context, sectionID string) (*models.DocumentRecord, error) {
	if !ValidSectionID(sectionID) {
		return nil, apperrors.NewDocumentNotFoundError(sectionID)
	}

	req := esapi.GetRequest{Index: r.index, DocumentID: sectionID}
	res, err := req.Do(ctx, r.client)
	if err != nil {
		return nil, apperrors.NewKnowledgeBaseUnavailableError("elasticsearch", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, apperrors.NewDocumentNotFoundError(sectionID)
	}
	if res.IsError() {
		return nil, apperrors.NewKnowledgeBaseUnavailableError("elasticsearch", fmt.Errorf("get: %s", res.Status()))
	}

	var parsed esGetResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperrors.NewKnowledgeBaseUnavailableError("elasticsearch", fmt.Errorf("decode get: %w", err))
	}
	if !parsed.Found {
		return nil, apperrors.NewDocumentNotFoundError(sectionID)
	}

	doc := parsed.Source
	if doc.SectionID == "" {
		doc.SectionID = sectionID
	}
	doc = normalize(doc)
	return &doc, nil
}

// Upsert indexes doc under its sectionId.
func (r *ElasticsearchRepository) Upsert(ctx context.Context, doc models.DocumentRecord) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      r.index,
		DocumentID: doc.SectionID,
		Body:       bytes.NewReader(body),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, r.client)
	if err != nil {
		return apperrors.NewExternalServiceError("elasticsearch", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return apperrors.NewExternalServiceError("elasticsearch", fmt.Errorf("index %s: %s", doc.SectionID, res.Status()))
	}
	return nil
}

func normalize(doc models.DocumentRecord) models.DocumentRecord {
	if doc.Title == "" {
		doc.Title = models.TitleFromSectionID(doc.SectionID)
	}
	if !doc.ContentType.Valid() {
		doc.ContentType = models.ContentTypePage
	}
	return doc
}
