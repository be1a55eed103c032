package render

import (
	"html/template"
	"io"

	"golang.org/x/xerrors"

	"github.com/securesentinels/vuln-search/types"
)

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<h2>{{.Title}}</h2>
{{- if .Loading}}
<p class="loading">{{.LoadingText}}</p>
{{- else}}
{{- with .Err}}
<p class="error">{{.}}</p>
{{- end}}
{{- if .Message}}
<p class="message">{{.Message}}</p>
{{- else if .Empty}}
<p class="empty">{{.NoResults}}</p>
{{- else if .Summaries}}
<ul class="summaries">
{{- range .Summaries}}
<li><strong>{{if .Link}}<a href="{{.Link}}" target="_blank" rel="noopener noreferrer">{{.ID}}</a>{{else}}{{.ID}}{{end}}</strong> - {{.Description}}</li>
{{- end}}
</ul>
{{- else}}
{{- range .Tables}}
<table class="record">
<thead><tr><th>Attribute</th><th>Value</th></tr></thead>
<tbody>
{{- range .}}
<tr><td><strong>{{.Key}}</strong></td><td>{{if .IsURL}}<a href="{{.Value}}" target="_blank" rel="noopener noreferrer">{{.Value}}</a>{{else}}{{.Value}}{{end}}</td></tr>
{{- end}}
</tbody>
</table>
{{- end}}
{{- end}}
{{- end}}
</body>
</html>
`

var reportTmpl = template.Must(template.New("report").Parse(htmlTemplate))

type htmlPage struct {
	Title       string
	Loading     bool
	Err         string
	Message     string
	Empty       bool
	Summaries   []Summary
	Tables      [][]Row
	LoadingText string
	NoResults   string
}

// HTML writes a standalone HTML document.
type HTML struct {
	w io.Writer
}

func NewHTML(w io.Writer) *HTML {
	return &HTML{w: w}
}

func (h *HTML) Render(v View) error {
	page := htmlPage{
		Title:       v.Title,
		Loading:     v.Status.Kind == types.StatusLoading,
		Message:     v.Message,
		LoadingText: LoadingText,
		NoResults:   v.emptyText(),
	}
	if page.Title == "" {
		page.Title = "Vulnerability search"
	}
	if v.Status.Kind == types.StatusFailure {
		page.Err = v.Status.Message
	}
	page.Empty = len(v.Items) == 0 && page.Err == "" && v.Status.Kind != types.StatusIdle

	if v.Mode == ModeSummaries {
		for _, item := range v.Items {
			page.Summaries = append(page.Summaries, Summarize(item))
		}
	} else {
		for _, item := range v.Items {
			page.Tables = append(page.Tables, Rows(item))
		}
	}

	if err := reportTmpl.Execute(h.w, page); err != nil {
		return xerrors.Errorf("failed to render HTML: %w", err)
	}
	return nil
}
