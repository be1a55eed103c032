package search

import (
	"golang.org/x/xerrors"

	"github.com/securesentinels/vuln-search/client"
)

// Page identifies which search produced an error; each page words its
// failures differently.
type Page int

const (
	PageKeyword Page = iota
	PageCategory
	PageDate
)

type messages struct {
	// failed is shown for a non-2xx answer.
	failed string
	// unreachable is shown when no usable answer arrived.
	unreachable string
}

var pageMessages = map[Page]messages{
	PageKeyword: {
		failed:      "Failed to fetch data. Try again.",
		unreachable: "Failed to fetch data. Try again.",
	},
	PageCategory: {
		failed:      "Failed to fetch vulnerabilities.",
		unreachable: "Failed to fetch data. Please check your connection.",
	},
	PageDate: {
		failed:      "Error fetching data. Please try again.",
		unreachable: "Failed to fetch data.",
	},
}

// Message turns err into the short text shown to the user on page.
// Validation errors keep their own wording.
func Message(err error, page Page) string {
	if err == nil {
		return ""
	}
	var ve *ValidationError
	if xerrors.As(err, &ve) {
		return ve.Message
	}

	m, ok := pageMessages[page]
	if !ok {
		m = pageMessages[PageKeyword]
	}
	if _, ok := client.AsHTTPError(err); ok {
		return m.failed
	}
	// network and parse failures
	return m.unreachable
}
