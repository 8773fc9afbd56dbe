package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const (
	// maxEncodedKeyLength bounds encoded keys well under the NATS subject
	// token limit while staying readable in bucket listings.
	maxEncodedKeyLength = 128

	// hashSuffixLength is "_" plus eight hex characters.
	hashSuffixLength = 9

	emptyKeyPlaceholder = "empty"
)

// encodeKey maps a logical cache key onto the restricted JetStream KV key
// alphabet. Valid characters pass through lower-cased; runs of anything else
// collapse to a single underscore. Whenever the encoding is lossy (characters
// replaced or the key truncated) an 8-hex-char sha256 suffix of the original
// key is appended so distinct goals cannot collide on their encoded form.
func encodeKey(logical string) string {
	if logical == "" {
		return emptyKeyPlaceholder
	}

	var b strings.Builder
	b.Grow(len(logical))
	lossy := false
	lastUnderscore := false
	for _, r := range strings.ToLower(logical) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '.':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if r != '_' {
				lossy = true
			}
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}

	encoded := strings.Trim(b.String(), "_.")
	if encoded == "" {
		encoded = emptyKeyPlaceholder
		lossy = true
	}

	if len(encoded) > maxEncodedKeyLength {
		encoded = strings.TrimRight(encoded[:maxEncodedKeyLength-hashSuffixLength], "_.")
		lossy = true
	}

	if lossy {
		sum := sha256.Sum256([]byte(logical))
		encoded += "_" + hex.EncodeToString(sum[:])[:8]
	}

	return encoded
}
