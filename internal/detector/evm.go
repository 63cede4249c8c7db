package detector

import (
	"regexp"
	"strings"
	"time"

	"alpha-radar/internal/domain"
)

// Standard EVM address: 0x followed by exactly 40 hex characters.
var evmPattern = regexp.MustCompile(`\b0x[0-9a-fA-F]{40}\b`)

// Zero, dead-max and conventional burn addresses.
var evmBlacklist = map[string]struct{}{
	"0x0000000000000000000000000000000000000000": {},
	"0xffffffffffffffffffffffffffffffffffffffff": {},
	"0x000000000000000000000000000000000000dead": {},
	"0xdead000000000000000000000000000000000000": {},
}

// EVMDetector detects EVM-compatible contract addresses (Ethereum, BSC,
// Polygon, Base, Arbitrum, ...). Addresses are case-insensitive and are
// lowercased before dedup; EIP-55 checksumming is not preserved.
type EVMDetector struct {
	now func() time.Time
}

// NewEVMDetector creates an EVM detector.
func NewEVMDetector() *EVMDetector {
	return &EVMDetector{now: time.Now}
}

// ChainName implements Detector.
func (d *EVMDetector) ChainName() string { return domain.ChainEVM }

// Extract implements Detector.
func (d *EVMDetector) Extract(text string, chatID, messageID int64) []domain.Match {
	var matches []domain.Match
	seen := make(map[string]struct{})
	observed := d.now().UTC()

	for _, raw := range evmPattern.FindAllString(text, -1) {
		normalized := strings.ToLower(raw)
		if _, dup := seen[normalized]; dup {
			continue
		}
		if _, bad := evmBlacklist[normalized]; bad {
			continue
		}
		seen[normalized] = struct{}{}
		matches = append(matches, domain.Match{
			Contract:   normalized,
			Chain:      domain.ChainEVM,
			ChatID:     chatID,
			MessageID:  messageID,
			ObservedAt: observed,
		})
	}
	return matches
}
