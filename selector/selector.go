// Package selector implements the vendor → product → version search flow.
//
// Each field's options are loaded only once its parent holds a value, and
// changing a parent clears everything that depends on it. Loads run in their
// own goroutine; a response is applied only if it belongs to the latest
// request of its kind and the parent selection it was issued for is still
// current, so a slow answer for an old vendor can never show up under a new one.
package selector

import (
	"sync"

	"github.com/samber/lo"
	"golang.org/x/xerrors"

	"github.com/securesentinels/vuln-search/client"
	"github.com/securesentinels/vuln-search/logger"
	"github.com/securesentinels/vuln-search/types"
)

const (
	msgVendorsFailed  = "Failed to load vendors."
	msgProductsFailed = "Failed to load products."
	msgVersionsFailed = "Failed to load versions."
	msgSearchFailed   = "An error occurred while fetching vulnerabilities."
	msgConnectFailed  = "Failed to connect to the server."
)

var (
	ErrFieldDisabled  = xerrors.New("field is disabled until its parent is selected")
	ErrSearchDisabled = xerrors.New("vendor, product and version must all be selected")
)

type API interface {
	Vendors() ([]string, error)
	Products(vendor string) ([]string, error)
	Versions(vendor, product string) ([]string, error)
	SearchVendor(vendor, product, version string) ([]types.Record, error)
}

type Field struct {
	Value   string
	Options []string
	Enabled bool
	Loading bool
	Err     string
}

type State struct {
	Vendor  Field
	Product Field
	Version Field

	Results   []types.Record
	Searching bool
	Searched  bool
	Err       string
}

// CanSearch reports whether every field holds a value.
func (s State) CanSearch() bool {
	return s.Vendor.Value != "" && s.Product.Value != "" && s.Version.Value != ""
}

// Status summarises the search request.
func (s State) Status() types.Status {
	switch {
	case s.Searching:
		return types.Status{Kind: types.StatusLoading}
	case s.Err != "":
		return types.Status{Kind: types.StatusFailure, Message: s.Err}
	case s.Searched:
		return types.Status{Kind: types.StatusSuccess}
	}
	return types.Status{Kind: types.StatusIdle}
}

type option func(*Controller)

// WithOnChange registers fn to be called with a copy of the state after every
// transition. fn runs outside the lock, possibly on a response goroutine, so
// calls are not guaranteed to arrive in transition order; State() is always current.
func WithOnChange(fn func(State)) option {
	return func(c *Controller) { c.onChange = fn }
}

// sequence numbers of the latest request per kind
type sequences struct {
	vendors, products, versions, search uint64
}

type Controller struct {
	api      API
	onChange func(State)

	mu    sync.Mutex
	state State
	seq   sequences
	wg    sync.WaitGroup
}

func New(api API, opts ...option) *Controller {
	c := &Controller{api: api}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Wait blocks until every request issued so far has been applied or discarded.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// LoadVendors fetches the full vendor list.
func (c *Controller) LoadVendors() {
	c.mu.Lock()
	c.seq.vendors++
	seq := c.seq.vendors
	c.state.Vendor.Loading = true
	c.state.Vendor.Err = ""
	st := c.snapshot()
	c.mu.Unlock()
	c.notify(st)

	c.run(func() {
		vendors, err := c.api.Vendors()

		c.mu.Lock()
		if seq != c.seq.vendors {
			c.mu.Unlock()
			logger.Logger.Debugw("Discard stale vendor list", "seq", seq)
			return
		}
		c.state.Vendor.Loading = false
		if err != nil {
			logger.Logger.Debugw("Failed to load vendors", "error", err)
			c.state.Vendor.Options = nil
			c.state.Vendor.Err = msgVendorsFailed
		} else {
			c.state.Vendor.Options = lo.Uniq(vendors)
		}
		st := c.snapshot()
		c.mu.Unlock()
		c.notify(st)
	})
}

// SetVendor selects a vendor, clears product and version, and loads the
// vendor's products when v is non-empty.
func (c *Controller) SetVendor(v string) {
	c.mu.Lock()
	c.state.Vendor.Value = v
	c.state.Product = Field{}
	c.state.Version = Field{}
	// in-flight product and version loads belong to the previous vendor
	c.seq.products++
	c.seq.versions++
	c.abandonSearch()
	if v != "" {
		c.loadProducts(v)
	}
	st := c.snapshot()
	c.mu.Unlock()
	c.notify(st)
}

// SetProduct selects a product, clears the version, and loads the product's
// versions. It fails while no vendor is selected.
func (c *Controller) SetProduct(p string) error {
	c.mu.Lock()
	if c.state.Vendor.Value == "" {
		c.mu.Unlock()
		return xerrors.Errorf("product: %w", ErrFieldDisabled)
	}
	c.state.Product.Value = p
	c.state.Version = Field{}
	c.seq.versions++
	c.abandonSearch()
	if p != "" {
		c.loadVersions(c.state.Vendor.Value, p)
	}
	st := c.snapshot()
	c.mu.Unlock()
	c.notify(st)
	return nil
}

// SetVersion selects a version. It fails while no product is selected.
func (c *Controller) SetVersion(v string) error {
	c.mu.Lock()
	if c.state.Product.Value == "" {
		c.mu.Unlock()
		return xerrors.Errorf("version: %w", ErrFieldDisabled)
	}
	c.state.Version.Value = v
	c.abandonSearch()
	st := c.snapshot()
	c.mu.Unlock()
	c.notify(st)
	return nil
}

// Search looks up vulnerabilities for the selected vendor, product and version.
// No request is issued unless all three are selected.
func (c *Controller) Search() error {
	c.mu.Lock()
	if !c.state.CanSearch() {
		c.mu.Unlock()
		return ErrSearchDisabled
	}
	c.seq.search++
	seq := c.seq.search
	vendor, product, version := c.state.Vendor.Value, c.state.Product.Value, c.state.Version.Value
	c.state.Searching = true
	c.state.Err = ""
	st := c.snapshot()
	c.mu.Unlock()
	c.notify(st)

	c.run(func() {
		records, err := c.api.SearchVendor(vendor, product, version)

		c.mu.Lock()
		if seq != c.seq.search {
			c.mu.Unlock()
			logger.Logger.Debugw("Discard stale vendor search", "seq", seq)
			return
		}
		c.state.Searching = false
		c.state.Searched = true
		if err != nil {
			c.state.Err = searchMessage(err)
		} else {
			c.state.Results = records
		}
		st := c.snapshot()
		c.mu.Unlock()
		c.notify(st)
	})
	return nil
}

// loadProducts must be called with c.mu held.
func (c *Controller) loadProducts(vendor string) {
	seq := c.seq.products
	c.state.Product.Loading = true

	c.run(func() {
		products, err := c.api.Products(vendor)

		c.mu.Lock()
		if seq != c.seq.products || c.state.Vendor.Value != vendor {
			c.mu.Unlock()
			logger.Logger.Debugw("Discard stale product list", "vendor", vendor)
			return
		}
		c.state.Product.Loading = false
		if err != nil {
			logger.Logger.Debugw("Failed to load products", "vendor", vendor, "error", err)
			c.state.Product.Options = nil
			c.state.Product.Err = msgProductsFailed
		} else {
			c.state.Product.Options = lo.Uniq(products)
		}
		st := c.snapshot()
		c.mu.Unlock()
		c.notify(st)
	})
}

// loadVersions must be called with c.mu held.
func (c *Controller) loadVersions(vendor, product string) {
	seq := c.seq.versions
	c.state.Version.Loading = true

	c.run(func() {
		versions, err := c.api.Versions(vendor, product)

		c.mu.Lock()
		if seq != c.seq.versions || c.state.Vendor.Value != vendor || c.state.Product.Value != product {
			c.mu.Unlock()
			logger.Logger.Debugw("Discard stale version list", "vendor", vendor, "product", product)
			return
		}
		c.state.Version.Loading = false
		if err != nil {
			logger.Logger.Debugw("Failed to load versions", "vendor", vendor, "product", product, "error", err)
			c.state.Version.Options = nil
			c.state.Version.Err = msgVersionsFailed
		} else {
			c.state.Version.Options = lo.Uniq(versions)
		}
		st := c.snapshot()
		c.mu.Unlock()
		c.notify(st)
	})
}

// abandonSearch drops the answer of an in-flight search whose selection is
// being changed. It must be called with c.mu held.
func (c *Controller) abandonSearch() {
	if c.state.Searching {
		c.seq.search++
		c.state.Searching = false
	}
}

func (c *Controller) run(f func()) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		f()
	}()
}

// snapshot must be called with c.mu held.
func (c *Controller) snapshot() State {
	st := c.state
	st.Vendor.Enabled = true
	st.Product.Enabled = st.Vendor.Value != ""
	st.Version.Enabled = st.Product.Value != ""
	st.Vendor.Options = copyStrings(st.Vendor.Options)
	st.Product.Options = copyStrings(st.Product.Options)
	st.Version.Options = copyStrings(st.Version.Options)
	st.Results = append([]types.Record(nil), st.Results...)
	return st
}

func (c *Controller) notify(st State) {
	if c.onChange != nil {
		c.onChange(st)
	}
}

func searchMessage(err error) string {
	if httpErr, ok := client.AsHTTPError(err); ok {
		if msg := httpErr.Message(); msg != "" {
			return msg
		}
		return msgSearchFailed
	}
	if client.IsNetworkError(err) {
		return msgConnectFailed
	}
	return msgSearchFailed
}

func copyStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string{}, s...)
}
