package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"legaldoc/internal/models"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

var markdownEngine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Typographer,
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithHardWraps(),
		htmlrenderer.WithXHTML(),
	),
)

// MarkdownToHTML renders model output. Raw HTML in the input is not passed
// through.
func MarkdownToHTML(md string) (string, error) {
	text := strings.TrimSpace(md)
	if text == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

var summaryPage = template.Must(template.New("summary").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8" />
<title>{{.Name}}</title>
</head>
<body>
<article>
<header>
<h1>{{.Name}}</h1>
<p><time>{{.Timestamp}}</time>{{if .Terms}} &middot; {{.Terms}}{{end}}</p>
</header>
{{.Body}}
</article>
</body>
</html>
`))

// SummaryPage renders a saved summary as a standalone HTML document.
func SummaryPage(rec models.SummaryRecord) (string, error) {
	body, err := MarkdownToHTML(rec.Summary)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	err = summaryPage.Execute(&buf, struct {
		Name      string
		Timestamp string
		Terms     string
		Body      template.HTML
	}{
		Name:      rec.DocumentName,
		Timestamp: rec.Timestamp,
		Terms:     strings.Join(rec.TermsLookedUp, ", "),
		Body:      template.HTML(body),
	})
	if err != nil {
		return "", fmt.Errorf("render summary page: %w", err)
	}
	return buf.String(), nil
}
