// Package secrets detects credentials accidentally pasted into goal text.
//
// Goals are free-form user input and occasionally arrive with API keys or
// tokens embedded in them. Every goal passes through the scrubber before it
// is sent to a third-party generation backend, written to storage, or logged.
package secrets

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zricethezav/gitleaks/v8/detect"
)

// Scrubber replaces detected secrets in goal text with redaction markers.
// Detection uses the gitleaks default ruleset. The zero-value Scrubber is
// not usable; construct with NewScrubber.
type Scrubber struct {
	detector *detect.Detector
	enabled  bool
}

// NewScrubber builds a scrubber backed by the gitleaks default config.
// When enabled is false, Scrub passes text through unchanged; the detector
// is still constructed so the flag can only disable behavior, never hide a
// broken ruleset until production.
func NewScrubber(enabled bool) (*Scrubber, error) {
	detector, err := detect.NewDetectorDefaultConfig()
	if err != nil {
		return nil, fmt.Errorf("building gitleaks detector: %w", err)
	}
	return &Scrubber{detector: detector, enabled: enabled}, nil
}

// Enabled reports whether scrubbing is active.
func (s *Scrubber) Enabled() bool { return s.enabled }

// Scrub replaces each detected secret in text with "[REDACTED:<rule-id>]"
// and returns the scrubbed text plus the number of findings. A goal that is
// entirely a secret scrubs down to a lone marker and still flows through
// synthesis; garbage in is tolerated, leakage is not.
func (s *Scrubber) Scrub(text string) (string, int) {
	if !s.enabled || text == "" {
		return text, 0
	}

	findings := s.detector.DetectString(text)
	if len(findings) == 0 {
		return text, 0
	}

	// Replace longer secrets first so a secret that contains another
	// secret as a substring cannot leave fragments behind.
	markers := make(map[string]string, len(findings))
	for _, f := range findings {
		if f.Secret == "" {
			continue
		}
		markers[f.Secret] = "[REDACTED:" + f.RuleID + "]"
	}

	secretsByLen := make([]string, 0, len(markers))
	for secret := range markers {
		secretsByLen = append(secretsByLen, secret)
	}
	sort.Slice(secretsByLen, func(i, j int) bool {
		if len(secretsByLen[i]) != len(secretsByLen[j]) {
			return len(secretsByLen[i]) > len(secretsByLen[j])
		}
		return secretsByLen[i] < secretsByLen[j]
	})

	for _, secret := range secretsByLen {
		text = strings.ReplaceAll(text, secret, markers[secret])
	}

	return text, len(findings)
}
