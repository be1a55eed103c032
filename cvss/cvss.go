// Package cvss pages through vulnerabilities of one CVSS severity.
package cvss

import (
	"sync"

	"github.com/samber/lo"
	"golang.org/x/xerrors"

	"github.com/securesentinels/vuln-search/logger"
	"github.com/securesentinels/vuln-search/types"
)

const (
	DefaultPageSize = 5

	msgFetchFailed = "Failed to fetch data. Try again."
)

type API interface {
	SearchCVSS(severity types.Severity, startIndex, resultsPerPage int) (types.CVSSPage, error)
}

// TotalPages is ceil(total / size); it is 0 when there are no results.
func TotalPages(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// StartIndex is the zero-based offset of the first record on page.
func StartIndex(page, size int) int {
	return (page - 1) * size
}

// Buttons returns the one-indexed page numbers to offer for total results.
func Buttons(total, size int) []int {
	n := TotalPages(total, size)
	if n == 0 {
		return []int{}
	}
	return lo.RangeFrom(1, n)
}

type State struct {
	Severity     types.Severity
	Page         int
	PageSize     int
	TotalResults int
	Items        []types.Record
	Loading      bool
	Err          string
}

func (s State) TotalPages() int {
	return TotalPages(s.TotalResults, s.PageSize)
}

func (s State) StartIndex() int {
	return StartIndex(s.Page, s.PageSize)
}

func (s State) PageButtons() []int {
	return Buttons(s.TotalResults, s.PageSize)
}

func (s State) Status() types.Status {
	switch {
	case s.Loading:
		return types.Status{Kind: types.StatusLoading}
	case s.Err != "":
		return types.Status{Kind: types.StatusFailure, Message: s.Err}
	}
	return types.Status{Kind: types.StatusSuccess}
}

type option func(*Controller)

func WithPageSize(n int) option {
	return func(c *Controller) { c.state.PageSize = n }
}

func WithSeverity(s types.Severity) option {
	return func(c *Controller) { c.state.Severity = s }
}

// WithOnChange registers fn to be called with a copy of the state after every
// transition. fn runs outside the lock, possibly on a response goroutine, so
// calls are not guaranteed to arrive in transition order; State() is always current.
func WithOnChange(fn func(State)) option {
	return func(c *Controller) { c.onChange = fn }
}

// Controller owns a (severity, page) pair. Every change re-fetches that page;
// only the response to the most recent request may update the state.
type Controller struct {
	api      API
	onChange func(State)

	mu    sync.Mutex
	state State
	seq   uint64
	wg    sync.WaitGroup
}

func New(api API, opts ...option) *Controller {
	c := &Controller{
		api: api,
		state: State{
			Severity: types.SeverityLow,
			Page:     1,
			PageSize: DefaultPageSize,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Wait blocks until every request issued so far has been applied or discarded.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// SetFilter switches to severity s and fetches its first page.
func (c *Controller) SetFilter(s types.Severity) error {
	if !s.Valid() {
		return xerrors.Errorf("unknown severity %q", s)
	}
	c.mu.Lock()
	c.state.Severity = s
	c.state.Page = 1
	c.mu.Unlock()

	c.Refresh()
	return nil
}

// SetPage fetches page n of the current severity. n is not clamped to
// TotalPages; callers offer only the numbers returned by PageButtons.
func (c *Controller) SetPage(n int) error {
	if n < 1 {
		return xerrors.Errorf("page must be at least 1, got %d", n)
	}
	c.mu.Lock()
	c.state.Page = n
	c.mu.Unlock()

	c.Refresh()
	return nil
}

// Refresh re-issues the request for the current severity and page.
func (c *Controller) Refresh() {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	severity, start, size := c.state.Severity, c.state.StartIndex(), c.state.PageSize
	c.state.Loading = true
	c.state.Err = ""
	st := c.snapshot()
	c.mu.Unlock()
	c.notify(st)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		page, err := c.api.SearchCVSS(severity, start, size)

		c.mu.Lock()
		if seq != c.seq {
			c.mu.Unlock()
			logger.Logger.Debugw("Discard stale CVSS page", "severity", severity, "startIndex", start)
			return
		}
		c.state.Loading = false
		if err != nil {
			// keep the previous page on screen
			logger.Logger.Debugw("Failed to fetch CVSS page", "severity", severity, "startIndex", start, "error", err)
			c.state.Err = msgFetchFailed
		} else {
			c.state.Items = page.Vulnerabilities
			c.state.TotalResults = page.TotalResults
		}
		st := c.snapshot()
		c.mu.Unlock()
		c.notify(st)
	}()
}

// snapshot must be called with c.mu held.
func (c *Controller) snapshot() State {
	st := c.state
	st.Items = append([]types.Record(nil), st.Items...)
	return st
}

func (c *Controller) notify(st State) {
	if c.onChange != nil {
		c.onChange(st)
	}
}
