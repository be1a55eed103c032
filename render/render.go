// Package render displays search results as text tables or an HTML report.
package render

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/securesentinels/vuln-search/types"
)

const (
	NoDescription = "No description available"
	NoResults     = "No results found."
	NoVulns       = "No vulnerabilities found."
	LoadingText   = "Loading..."

	nvdDetailURL = "https://nvd.nist.gov/vuln/detail/"
)

type Mode int

const (
	// ModeRecords shows every attribute of arbitrary records.
	ModeRecords Mode = iota
	// ModeSummaries shows CVE id and English description only.
	ModeSummaries
)

// View is everything a renderer needs to draw one search page.
type View struct {
	Title  string
	Mode   Mode
	Items  []types.Record
	Status types.Status
	// Message replaces the result list, e.g. a backend "No CVEs found" answer.
	Message string
	// Empty is shown when there are no items; NoResults if unset.
	Empty string
}

func (v View) emptyText() string {
	if v.Empty == "" {
		return NoResults
	}
	return v.Empty
}

type Renderer interface {
	Render(v View) error
}

type Row struct {
	Key   string
	Value string
	IsURL bool
}

type Summary struct {
	ID          string
	Link        string
	Description string
}

// IsURL reports whether s looks like a web link.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://")
}

func NVDLink(id string) string {
	if id == "" {
		return ""
	}
	return nvdDetailURL + id
}

// Description returns the English description of a CVE-shaped record.
func Description(r types.Record) string {
	d := r.Get(`cve.descriptions.#(lang=="en").value`)
	if d.Type != gjson.String || d.String() == "" {
		return NoDescription
	}
	return d.String()
}

// Rows lists the top-level attributes of r in document order.
func Rows(r types.Record) []Row {
	doc := gjson.ParseBytes(r)
	if !doc.IsObject() {
		return []Row{{Key: "value", Value: valueString(doc)}}
	}

	var rows []Row
	doc.ForEach(func(key, value gjson.Result) bool {
		row := Row{Key: key.String(), Value: valueString(value)}
		row.IsURL = value.Type == gjson.String && IsURL(row.Value)
		rows = append(rows, row)
		return true
	})
	return rows
}

func Summarize(r types.Record) Summary {
	id := r.ID()
	return Summary{
		ID:          id,
		Link:        NVDLink(id),
		Description: Description(r),
	}
}

func valueString(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.String()
	case gjson.Null:
		return ""
	case gjson.JSON:
		var buf bytes.Buffer
		if err := json.Compact(&buf, []byte(v.Raw)); err == nil {
			return buf.String()
		}
	}
	return v.Raw
}
