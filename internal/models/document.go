// internal/models/document.go
package models

import "strings"

// ContentType classifies the origin of a DocumentRecord.
type ContentType string

const (
	ContentTypePage     ContentType = "page"
	ContentTypePDF      ContentType = "pdf"
	ContentTypeForm     ContentType = "form"
	ContentTypeExternal ContentType = "external"
)

// Valid reports whether c is one of the known content types.
func (c ContentType) Valid() bool {
	switch c {
	case ContentTypePage, ContentTypePDF, ContentTypeForm, ContentTypeExternal:
		return true
	}
	return false
}

// Link is a titled URL.
type Link struct {
	Title string `json:"title,omitempty"`
	URL   string `json:"url"`
}

// FormDescriptor describes a downloadable or online form mentioned by a
// document.
type FormDescriptor struct {
	Name           string   `json:"name"`
	URL            string   `json:"url,omitempty"`
	RequiredFields []string `json:"requiredFields,omitempty"`
}

// Key identifies a form for de-duplication.
func (f FormDescriptor) Key() string {
	return strings.ToLower(strings.TrimSpace(f.Name)) + "|" + strings.TrimSpace(f.URL)
}

// DocumentRecord is one logical unit of curated content. Records are produced
// by ingestion and never mutated after load.
type DocumentRecord struct {
	SectionID    string           `json:"sectionId"`
	Title        string           `json:"title"`
	SourceURL    string           `json:"sourceUrl,omitempty"`
	Chunks       []string         `json:"chunks"`
	RelatedLinks []Link           `json:"relatedLinks,omitempty"`
	Forms        []FormDescriptor `json:"forms,omitempty"`
	ContentType  ContentType      `json:"contentType"`
}

// Label is the text keyword scoring runs against: the title plus the
// sectionId with dashes read as spaces.
func (d *DocumentRecord) Label() string {
	return d.Title + " " + strings.ReplaceAll(d.SectionID, "-", " ")
}

// TitleFromSectionID turns "about-midc" into "About Midc".
func TitleFromSectionID(sectionID string) string {
	words := strings.FieldsFunc(sectionID, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
