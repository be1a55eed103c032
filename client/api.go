package client

import (
	"net/url"
	"strconv"

	"golang.org/x/xerrors"

	"github.com/securesentinels/vuln-search/types"
)

const (
	keywordPath      = "/search-by-keyword"
	cvssPath         = "/search-by-cvss/"
	categoryPath     = "/search-by-category"
	datePath         = "/search-by-date/"
	vendorsPath      = "/search-by-vendor/vendors"
	productsPath     = "/search-by-vendor/products"
	versionsPath     = "/search-by-vendor/versions"
	vendorSearchPath = "/search-by-vendor/search"
)

func (c *Client) SearchKeyword(keyword string) (types.KeywordResult, error) {
	var res types.KeywordResult
	if err := c.GetJSON(keywordPath, url.Values{"keyword": {keyword}}, &res); err != nil {
		return types.KeywordResult{}, xerrors.Errorf("keyword search failed: %w", err)
	}
	return res, nil
}

func (c *Client) SearchCVSS(severity types.Severity, startIndex, resultsPerPage int) (types.CVSSPage, error) {
	params := url.Values{
		"severity":       {severity.String()},
		"startIndex":     {strconv.Itoa(startIndex)},
		"resultsPerPage": {strconv.Itoa(resultsPerPage)},
	}
	var page types.CVSSPage
	if err := c.GetJSON(cvssPath, params, &page); err != nil {
		return types.CVSSPage{}, xerrors.Errorf("CVSS search failed: %w", err)
	}
	return page, nil
}

func (c *Client) SearchCategory(category string) ([]types.Record, error) {
	var records []types.Record
	if err := c.GetJSON(categoryPath, url.Values{"category": {category}}, &records); err != nil {
		return nil, xerrors.Errorf("category search failed: %w", err)
	}
	return records, nil
}

// SearchDate expects date in YYYY-MM-DD form.
func (c *Client) SearchDate(date string) ([]types.Record, error) {
	var list types.VulnerabilityList
	if err := c.GetJSON(datePath, url.Values{"date": {date}}, &list); err != nil {
		return nil, xerrors.Errorf("date search failed: %w", err)
	}
	return list.Vulnerabilities, nil
}

func (c *Client) Vendors() ([]string, error) {
	return c.options(vendorsPath, nil)
}

func (c *Client) Products(vendor string) ([]string, error) {
	return c.options(productsPath, url.Values{"vendor": {vendor}})
}

func (c *Client) Versions(vendor, product string) ([]string, error) {
	return c.options(versionsPath, url.Values{"vendor": {vendor}, "product": {product}})
}

// SearchVendor returns an *HTTPError whose Message carries the backend's
// explanation when the backend answers with {"error": "..."}.
func (c *Client) SearchVendor(vendor, product, version string) ([]types.Record, error) {
	params := url.Values{
		"vendor":  {vendor},
		"product": {product},
		"version": {version},
	}
	var list types.VulnerabilityList
	if err := c.GetJSON(vendorSearchPath, params, &list); err != nil {
		return nil, xerrors.Errorf("vendor search failed: %w", err)
	}
	return list.Vulnerabilities, nil
}

func (c *Client) options(path string, params url.Values) ([]string, error) {
	var opts []string
	if err := c.GetJSON(path, params, &opts); err != nil {
		return nil, xerrors.Errorf("unable to list %s: %w", path, err)
	}
	return opts, nil
}
