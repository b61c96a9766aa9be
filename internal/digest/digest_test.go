package digest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash(t *testing.T) {
	tests := map[string]struct {
		algorithm string
		encoding  string
		want      string
	}{
		"defaults":      {"", "", "5d41402abc4b2a76b9719d911017c592"},
		"md5 base64":    {"md5", "base64", "XUFAKrxLKna5cZ2REBfFkg=="},
		"sha1 hex":      {"sha1", "hex", "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d"},
		"sha256 hex":    {"sha256", "hex", "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"},
		"sha256 base64": {"sha256", "base64", "LPJNul+wow4m6DsqxbninhsWHlwfp0JecwQzYpOLmCQ="},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := Hash("hello", tt.algorithm, tt.encoding)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHashErrors(t *testing.T) {
	_, err := Hash("hello", "crc32", "hex")
	assert.ErrorContains(t, err, "unsupported hash algorithm")

	_, err = Hash("hello", "md5", "latin1")
	assert.ErrorContains(t, err, "unsupported encoding")
}

func TestSumMatchesHash(t *testing.T) {
	a, err := Hash("chart", "sha512", "hex")
	require.NoError(t, err)
	b, err := Sum([]byte("chart"), "sha512", "hex")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}
