package search_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"

	"github.com/securesentinels/vuln-search/client"
	"github.com/securesentinels/vuln-search/search"
	"github.com/securesentinels/vuln-search/types"
)

type fakeAPI struct {
	calls   []string
	keyword types.KeywordResult
	records []types.Record
	err     error
}

func (f *fakeAPI) SearchKeyword(keyword string) (types.KeywordResult, error) {
	f.calls = append(f.calls, "keyword:"+keyword)
	return f.keyword, f.err
}

func (f *fakeAPI) SearchCategory(category string) ([]types.Record, error) {
	f.calls = append(f.calls, "category:"+category)
	return f.records, f.err
}

func (f *fakeAPI) SearchDate(date string) ([]types.Record, error) {
	f.calls = append(f.calls, "date:"+date)
	return f.records, f.err
}

func TestSearcher_Validation(t *testing.T) {
	api := &fakeAPI{}
	s := search.New(api)

	_, err := s.Keyword("   ")
	require.Error(t, err)
	assert.True(t, search.IsValidationError(err))
	assert.Equal(t, "Please enter a keyword.", err.Error())

	_, err = s.Category("")
	assert.Equal(t, "Please select or enter a category.", search.Message(err, search.PageCategory))

	_, err = s.Category(search.OtherCategory)
	assert.True(t, search.IsValidationError(err))

	_, _, err = s.Date("")
	assert.Equal(t, "Please select a date.", search.Message(err, search.PageDate))

	_, _, err = s.Date("2024-13-45")
	assert.Equal(t, "Invalid date: 2024-13-45", search.Message(err, search.PageDate))

	assert.Empty(t, api.calls, "no request may be sent for invalid input")
}

func TestSearcher_NormalizeDate(t *testing.T) {
	s := search.New(&fakeAPI{}, search.WithLocation(time.UTC))
	tests := []struct {
		input string
		want  string
	}{
		{input: "2024-03-07", want: "2024-03-07"},
		{input: " 2024-03-07 ", want: "2024-03-07"},
		{input: "03/07/2024", want: "2024-03-07"},
		{input: "Mar 7, 2024", want: "2024-03-07"},
		{input: "2024-03-07T15:04:05Z", want: "2024-03-07"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := s.NormalizeDate(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSearcher_NormalizeDateLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	tests := []struct {
		name  string
		loc   *time.Location
		input string
		want  string
	}{
		{name: "utc", loc: time.UTC, input: "2024-03-07T23:30:00Z", want: "2024-03-07"},
		{name: "converted to zone", loc: tokyo, input: "2024-03-07T23:30:00Z", want: "2024-03-08"},
		{name: "no zone in input", loc: tokyo, input: "2024-03-07", want: "2024-03-07"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := search.New(&fakeAPI{}, search.WithLocation(tt.loc)).NormalizeDate(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSearcher_Requests(t *testing.T) {
	api := &fakeAPI{
		keyword: types.KeywordResult{Message: "No CVEs found"},
		records: []types.Record{types.Record(`{"cve": {"id": "CVE-2024-0001"}}`)},
	}
	s := search.New(api, search.WithLocation(time.UTC))

	res, err := s.Keyword(" log4j ")
	require.NoError(t, err)
	assert.Equal(t, "No CVEs found", res.Message)

	records, err := s.Category("My custom category")
	require.NoError(t, err)
	assert.Len(t, records, 1)

	date, records, err := s.Date("2024/01/31")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-31", date)
	assert.Len(t, records, 1)

	assert.Equal(t, []string{"keyword:log4j", "category:My custom category", "date:2024-01-31"}, api.calls)
}

func TestMessage(t *testing.T) {
	httpErr := xerrors.Errorf("search failed: %w", &client.HTTPError{StatusCode: 500})
	netErr := xerrors.Errorf("search failed: %w", &client.NetworkError{Err: xerrors.New("refused")})
	parseErr := xerrors.Errorf("search failed: %w", &client.ParseError{Err: xerrors.New("bad json")})

	tests := []struct {
		name string
		err  error
		page search.Page
		want string
	}{
		{name: "nil", err: nil, page: search.PageKeyword, want: ""},
		{name: "keyword http", err: httpErr, page: search.PageKeyword, want: "Failed to fetch data. Try again."},
		{name: "keyword network", err: netErr, page: search.PageKeyword, want: "Failed to fetch data. Try again."},
		{name: "category http", err: httpErr, page: search.PageCategory, want: "Failed to fetch vulnerabilities."},
		{name: "category network", err: netErr, page: search.PageCategory, want: "Failed to fetch data. Please check your connection."},
		{name: "category parse", err: parseErr, page: search.PageCategory, want: "Failed to fetch data. Please check your connection."},
		{name: "date http", err: httpErr, page: search.PageDate, want: "Error fetching data. Please try again."},
		{name: "date network", err: netErr, page: search.PageDate, want: "Failed to fetch data."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, search.Message(tt.err, tt.page))
		})
	}
}

func TestSearcher_WithBackend(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search-by-category":
			http.Error(w, `{"error": "boom"}`, http.StatusInternalServerError)
		case "/search-by-date/":
			assert.Equal(t, "2023-12-01", r.URL.Query().Get("date"))
			_, _ = w.Write([]byte(`{"vulnerabilities": [{"cve": {"id": "CVE-2023-1111"}}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	cl := client.New(client.WithBaseURL(lo.Must(url.Parse(ts.URL))))
	s := search.New(cl, search.WithLocation(time.UTC))

	_, err := s.Category("SQL Injection")
	require.Error(t, err)
	assert.Equal(t, "Failed to fetch vulnerabilities.", search.Message(err, search.PageCategory))

	date, records, err := s.Date("Dec 1, 2023")
	require.NoError(t, err)
	assert.Equal(t, "2023-12-01", date)
	require.Len(t, records, 1)
	assert.Equal(t, "CVE-2023-1111", records[0].ID())
}
