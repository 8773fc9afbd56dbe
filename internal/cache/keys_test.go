package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyDerivation(t *testing.T) {
	assert.Equal(t, "plan:launch a podcast", Key("  Launch a Podcast "))
	assert.Equal(t, "plan:", Key("   "))
}

func TestEncodeKeyAlphabet(t *testing.T) {
	encoded := encodeKey("plan:launch a podcast")

	for _, r := range encoded {
		valid := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' || r == '.'
		assert.True(t, valid, "invalid rune %q in encoded key %q", r, encoded)
	}
	assert.Contains(t, encoded, "plan_launch_a_podcast")
}

func TestEncodeKeyDeterministic(t *testing.T) {
	a := encodeKey("plan:ship the Q3 roadmap")
	b := encodeKey("plan:ship the Q3 roadmap")
	assert.Equal(t, a, b)
}

func TestEncodeKeyDistinguishesCollapsedGoals(t *testing.T) {
	// Both goals collapse to the same underscore form; the hash suffix
	// keeps their encoded keys distinct.
	a := encodeKey("plan:a b")
	b := encodeKey("plan:a  b")
	assert.NotEqual(t, a, b)
}

func TestEncodeKeyTruncatesLongGoals(t *testing.T) {
	long := "plan:" + strings.Repeat("x", 500)
	encoded := encodeKey(long)

	assert.LessOrEqual(t, len(encoded), maxEncodedKeyLength)

	// Same prefix, different tail: must not collide after truncation.
	other := encodeKey("plan:" + strings.Repeat("x", 499) + "y")
	assert.NotEqual(t, encoded, other)
}

func TestEncodeKeyEmpty(t *testing.T) {
	assert.Equal(t, emptyKeyPlaceholder, encodeKey(""))
	assert.NotEmpty(t, encodeKey("plan:"))
}
