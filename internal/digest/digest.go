// Package digest hashes strings and byte slices with a named algorithm and
// encoding.
package digest

import (
	"crypto/md5"  //nolint:gosec // used for S3 Content-MD5, not security
	"crypto/sha1" //nolint:gosec // parity with callers that key on sha1
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"hash"
)

// Defaults match the most common use, a hex md5.
const (
	DefaultAlgorithm = "md5"
	DefaultEncoding  = "hex"
)

var algorithms = map[string]func() hash.Hash{
	"md5":    md5.New,
	"sha1":   sha1.New,
	"sha256": sha256.New,
	"sha512": sha512.New,
}

// Hash returns the digest of value. Empty algorithm or encoding use the
// defaults. Supported encodings are "hex" and "base64".
func Hash(value, algorithm, encoding string) (string, error) {
	return Sum([]byte(value), algorithm, encoding)
}

// Sum is Hash for byte slices.
func Sum(data []byte, algorithm, encoding string) (string, error) {
	if algorithm == "" {
		algorithm = DefaultAlgorithm
	}
	if encoding == "" {
		encoding = DefaultEncoding
	}

	newHash, ok := algorithms[algorithm]
	if !ok {
		return "", fmt.Errorf("unsupported hash algorithm %q", algorithm)
	}
	h := newHash()
	h.Write(data)
	sum := h.Sum(nil)

	switch encoding {
	case "hex":
		return hex.EncodeToString(sum), nil
	case "base64":
		return base64.StdEncoding.EncodeToString(sum), nil
	default:
		return "", fmt.Errorf("unsupported encoding %q", encoding)
	}
}
