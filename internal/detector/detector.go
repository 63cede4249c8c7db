// Package detector extracts token contract identifiers from chat messages.
// One detector per chain; adding a chain means adding a detector with a
// disjoint pattern and registering it at startup.
package detector

import (
	"alpha-radar/internal/domain"
)

// Detector extracts candidate contracts from one message body. Extract is
// pure: no I/O, no state, deterministic for a given input. Malformed tokens
// are simply not emitted; a detector never fails.
type Detector interface {
	// ChainName returns the canonical lowercase chain identifier.
	ChainName() string

	// Extract returns the matches found in text, deduplicated within the
	// message after chain-specific normalization.
	Extract(text string, chatID, messageID int64) []domain.Match
}

// Registry fans one message through all registered detectors in order.
// It is built once at startup and immutable thereafter.
type Registry struct {
	detectors []Detector
}

// NewRegistry creates a registry over the given detectors. Order is
// preserved in Extract output.
func NewRegistry(detectors ...Detector) *Registry {
	return &Registry{detectors: detectors}
}

// Extract concatenates the matches of every detector. No cross-detector
// dedup is needed: normalized contract strings never collide across chains.
func (r *Registry) Extract(text string, chatID, messageID int64) []domain.Match {
	var matches []domain.Match
	for _, d := range r.detectors {
		matches = append(matches, d.Extract(text, chatID, messageID)...)
	}
	return matches
}

// ChainNames lists the registered chains in registration order.
func (r *Registry) ChainNames() []string {
	names := make([]string, 0, len(r.detectors))
	for _, d := range r.detectors {
		names = append(names, d.ChainName())
	}
	return names
}
