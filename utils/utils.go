package utils

import (
	"os"
	"regexp"
	"strings"

	"golang.org/x/xerrors"
)

// TrimSpaceNewline deletes space character and newline character(CR/LF)
func TrimSpaceNewline(str string) string {
	str = strings.TrimSpace(str)
	return strings.Trim(str, "\r\n")
}

var cveIDPattern = regexp.MustCompile(`(?i)^CVE-(\d{4})-\d+$`)

// CVEYear returns the year part of a CVE-ID such as CVE-2024-1234.
// Anything else is rejected, so the ID is safe to use as a file name.
func CVEYear(cveID string) (string, error) {
	m := cveIDPattern.FindStringSubmatch(cveID)
	if m == nil {
		return "", xerrors.Errorf("invalid CVE-ID format: %s", cveID)
	}
	return m[1], nil
}

func LookupEnv(key, defaultValue string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultValue
}
