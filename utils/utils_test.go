package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/securesentinels/vuln-search/utils"
)

func TestCVEYear(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "CVE-2024-3094", want: "2024"},
		{in: "cve-1999-0001", want: "1999"},
		{in: "CVE-2024", wantErr: true},
		{in: "CVE-2024-../../../../etc/pwned", wantErr: true},
		{in: "CVE-../2024-1", wantErr: true},
		{in: "CVE-24-0001", wantErr: true},
		{in: "CVE-2024-0001/x", wantErr: true},
		{in: "CVE-2024-0001\n", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := utils.CVEYear(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestLookupEnv(t *testing.T) {
	t.Setenv("VULN_SEARCH_TEST_KEY", "set")
	assert.Equal(t, "set", utils.LookupEnv("VULN_SEARCH_TEST_KEY", "default"))
	assert.Equal(t, "default", utils.LookupEnv("VULN_SEARCH_TEST_MISSING", "default"))
}

func TestTrimSpaceNewline(t *testing.T) {
	assert.Equal(t, "acme", utils.TrimSpaceNewline("  acme\r\n"))
}
