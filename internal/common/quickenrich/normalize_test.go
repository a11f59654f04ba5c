package quickenrich

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeURL(t *testing.T) {
	tests := map[string]string{
		"https://www.Example.com/":     "Example.com",
		"http://example.com":           "example.com",
		"example.com":                  "example.com",
		"www.acme.io/":                 "acme.io",
		"https://acme.io/about/":       "acme.io/about",
		"https://acme.io//":            "acme.io/",
		"ftp://acme.io":                "ftp://acme.io",
		"":                             "",
		"https://www.linkedin.com/in/": "linkedin.com/in",
	}

	for in, want := range tests {
		got := NormalizeURL(in)
		assert.Equal(t, want, got, in)
		if in != "https://acme.io//" {
			assert.Equal(t, got, NormalizeURL(got), "idempotent for %q", in)
		}
	}
}
