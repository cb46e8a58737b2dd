// Package markup renders answer Markdown to HTML and reads links back out of
// the rendered document.
package markup

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/Sankalp-SISL/MIDC-chatbot/internal/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.Linkify, extension.Table),
)

// Render converts Markdown to HTML. Raw HTML in the source is not passed
// through.
func Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ExtractLinks returns the absolute http(s) anchors of an HTML fragment in
// document order, de-duplicated by URL.
func ExtractLinks(html string) ([]models.Link, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var links []models.Link
	seen := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		u, err := url.Parse(href)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return
		}
		if seen[href] {
			return
		}
		seen[href] = true

		title := strings.TrimSpace(s.Text())
		if title == href {
			title = ""
		}
		links = append(links, models.Link{Title: title, URL: href})
	})
	return links, nil
}
