package markup

import (
	"testing"

	"github.com/Sankalp-SISL/MIDC-chatbot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	html, err := Render("## Contact\n\n- Phone: 1800-233-2634\n- [Website](https://www.midcindia.org)")
	require.NoError(t, err)
	assert.Contains(t, html, "<h2>Contact</h2>")
	assert.Contains(t, html, "<li>Phone: 1800-233-2634</li>")
	assert.Contains(t, html, `<a href="https://www.midcindia.org">Website</a>`)
}

func TestRender_DropsRawHTML(t *testing.T) {
	html, err := Render("<script>alert(1)</script>\n\ntext")
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestExtractLinks(t *testing.T) {
	html, err := Render("See [MIDC](https://www.midcindia.org), https://www.midcindia.org again, " +
		"[relative](/about) and [mail](mailto:info@midcindia.org). Also https://maitri.mahaonline.gov.in")
	require.NoError(t, err)

	links, err := ExtractLinks(html)
	require.NoError(t, err)
	assert.Equal(t, []models.Link{
		{Title: "MIDC", URL: "https://www.midcindia.org"},
		{URL: "https://maitri.mahaonline.gov.in"},
	}, links)
}
