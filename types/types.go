package types

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/exp/slices"
	"golang.org/x/xerrors"
)

// Severity is a CVSS v3 qualitative severity rating.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Severities lists the ratings accepted by the CVSS search endpoint, lowest first.
var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

func (s Severity) String() string {
	return string(s)
}

func (s Severity) Valid() bool {
	return slices.Contains(Severities, s)
}

// ParseSeverity accepts a rating in any letter case.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(strings.ToUpper(strings.TrimSpace(s)))
	if !sev.Valid() {
		return "", xerrors.Errorf("unknown severity %q (expected one of LOW, MEDIUM, HIGH, CRITICAL)", s)
	}
	return sev, nil
}

// Record is a vulnerability record as returned by the backend. Its schema is
// not fixed, so it is kept as raw JSON and queried by path.
type Record json.RawMessage

func (r Record) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	return r, nil
}

func (r *Record) UnmarshalJSON(b []byte) error {
	if r == nil {
		return xerrors.New("types.Record: UnmarshalJSON on nil pointer")
	}
	*r = append((*r)[0:0], b...)
	return nil
}

// Get resolves a gjson path such as "cve.id" against the record.
func (r Record) Get(path string) gjson.Result {
	return gjson.GetBytes(r, path)
}

// ID returns the CVE identifier of a CVE-shaped record, or "" for any other record.
func (r Record) ID() string {
	return r.Get("cve.id").String()
}

// IsObject reports whether the record is a JSON object.
func (r Record) IsObject() bool {
	return gjson.ParseBytes(r).IsObject()
}

// CVSSPage is the response of the CVSS severity search.
type CVSSPage struct {
	Vulnerabilities []Record `json:"vulnerabilities"`
	TotalResults    int      `json:"totalResults"`
}

// VulnerabilityList is the envelope used by the date and vendor searches.
type VulnerabilityList struct {
	Vulnerabilities []Record `json:"vulnerabilities"`
	Error           string   `json:"error,omitempty"`
}

// KeywordResult holds the keyword search response, which is either a list of
// records or a bare message such as "No CVEs found".
type KeywordResult struct {
	Message string
	Records []Record
}

func (k *KeywordResult) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0:
		return xerrors.New("empty keyword search response")
	case b[0] == '"':
		return json.Unmarshal(b, &k.Message)
	case b[0] == '[':
		return json.Unmarshal(b, &k.Records)
	case bytes.Equal(b, []byte("null")):
		return nil
	}
	return xerrors.Errorf("unexpected keyword search response: %.40s", b)
}

type StatusKind int

const (
	StatusIdle StatusKind = iota
	StatusLoading
	StatusSuccess
	StatusFailure
)

func (k StatusKind) String() string {
	switch k {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	}
	return "unknown"
}

// Status is the state of the last user-triggered query.
type Status struct {
	Kind    StatusKind
	Message string
}
