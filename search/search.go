// Package search runs the single-request searches: keyword, CWE category and
// publication date. Required input is validated before anything is sent.
package search

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"golang.org/x/xerrors"

	"github.com/securesentinels/vuln-search/types"
)

const (
	dateLayout = "2006-01-02"

	// OtherCategory lets the user type a category that is not in Categories.
	OtherCategory = "Other"
)

// Categories are the CWE categories offered for selection.
var Categories = []string{
	"Cross-Site Scripting (XSS)",
	"SQL Injection",
	"Buffer Overflow",
	"Improper Authentication",
	"Information Exposure",
	"Cross-Site Request Forgery (CSRF)",
	"Improper Input Validation",
	"Path Traversal",
	"Use of Hard-coded Credentials",
	"Code Injection",
}

// ValidationError is returned before any request is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func IsValidationError(err error) bool {
	var e *ValidationError
	return xerrors.As(err, &e)
}

type API interface {
	SearchKeyword(keyword string) (types.KeywordResult, error)
	SearchCategory(category string) ([]types.Record, error)
	SearchDate(date string) ([]types.Record, error)
}

type Searcher struct {
	api API
	loc *time.Location
}

type option func(*Searcher)

// WithLocation sets the time zone dates are resolved in. Input without a
// zone is read in loc; input with one is converted to loc before the day is taken.
func WithLocation(loc *time.Location) option {
	return func(s *Searcher) { s.loc = loc }
}

func New(api API, opts ...option) Searcher {
	s := Searcher{api: api, loc: time.Local}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Keyword searches CVEs published recently whose text matches keyword.
func (s Searcher) Keyword(keyword string) (types.KeywordResult, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return types.KeywordResult{}, &ValidationError{Field: "keyword", Message: "Please enter a keyword."}
	}
	res, err := s.api.SearchKeyword(keyword)
	if err != nil {
		return types.KeywordResult{}, xerrors.Errorf("keyword %q: %w", keyword, err)
	}
	return res, nil
}

// Category searches CVEs by CWE category. Values outside Categories are sent
// as typed, except the OtherCategory placeholder itself.
func (s Searcher) Category(category string) ([]types.Record, error) {
	category = strings.TrimSpace(category)
	if category == "" || category == OtherCategory {
		return nil, &ValidationError{Field: "category", Message: "Please select or enter a category."}
	}
	records, err := s.api.SearchCategory(category)
	if err != nil {
		return nil, xerrors.Errorf("category %q: %w", category, err)
	}
	return records, nil
}

// Date searches CVEs published on the given day. The input may be in any
// format dateparse understands; it is sent as YYYY-MM-DD.
func (s Searcher) Date(input string) (string, []types.Record, error) {
	date, err := s.NormalizeDate(input)
	if err != nil {
		return "", nil, err
	}
	records, err := s.api.SearchDate(date)
	if err != nil {
		return date, nil, xerrors.Errorf("date %s: %w", date, err)
	}
	return date, records, nil
}

func (s Searcher) NormalizeDate(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", &ValidationError{Field: "date", Message: "Please select a date."}
	}
	t, err := dateparse.ParseIn(input, s.loc)
	if err != nil {
		return "", &ValidationError{Field: "date", Message: fmt.Sprintf("Invalid date: %s", input)}
	}
	return t.In(s.loc).Format(dateLayout), nil
}
