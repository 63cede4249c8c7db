package detector

import (
	"regexp"
	"time"
	"unicode"

	"github.com/mr-tron/base58"

	"alpha-radar/internal/domain"
)

// Base58 alphabet (no 0, O, I, l), 32-44 chars.
var base58Pattern = regexp.MustCompile(`\b[1-9A-HJ-NP-Za-km-z]{32,44}\b`)

// Common capitalized words that happen to fit the Base58 alphabet.
var solanaFalsePositives = map[string]struct{}{
	"Bitcoin": {}, "bitcoin": {},
	"Ethereum": {}, "ethereum": {},
	"Solana": {}, "solana": {},
	"Polygon": {}, "polygon": {},
	"Avalanche": {}, "avalanche": {},
	"Cardano": {}, "cardano": {},
	"Polkadot": {}, "polkadot": {},
	"Chainlink": {}, "chainlink": {},
	"Uniswap": {}, "uniswap": {},
	"Airdrop": {}, "airdrop": {},
	"Binance": {}, "binance": {},
	"Coinbase": {}, "coinbase": {},
	"Bullish": {}, "bullish": {},
	"Bearish": {}, "bearish": {},
	"Moonshot": {}, "moonshot": {},
	"Diamond": {}, "diamond": {},
	"Phantom": {}, "phantom": {},
	"Jupiter": {}, "jupiter": {},
	"Raydium": {}, "raydium": {},
	"Meteora": {}, "meteora": {},
	"Telegram": {}, "telegram": {},
	"Channel": {}, "channel": {},
	"Private": {}, "private": {},
	"Welcome": {}, "welcome": {},
	"Trading": {}, "trading": {},
	"Profits": {}, "profits": {},
	"Million": {}, "million": {},
	"Billion": {}, "billion": {},
	"Congratulations": {}, "congratulations": {},
}

// Well-known program IDs and sysvars that are never token mints.
var solanaSystemAddresses = map[string]struct{}{
	"11111111111111111111111111111111":             {},
	"TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA":  {},
	"So11111111111111111111111111111111111111112":  {},
	"SysvarC1ock11111111111111111111111111111111":  {},
	"SysvarRent111111111111111111111111111111111":  {},
	"ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL": {},
	"metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s":  {},
}

// SolanaDetector detects Solana mint addresses: Base58 runs of 32-44 chars.
// Addresses are case-sensitive, so no normalization is applied.
type SolanaDetector struct {
	// strict additionally requires the candidate to decode to a 32-byte key.
	strict bool
	now    func() time.Time
}

// NewSolanaDetector creates a Solana detector. With strict enabled,
// candidates must base58-decode to exactly 32 bytes.
func NewSolanaDetector(strict bool) *SolanaDetector {
	return &SolanaDetector{strict: strict, now: time.Now}
}

// ChainName implements Detector.
func (d *SolanaDetector) ChainName() string { return domain.ChainSolana }

// Extract implements Detector.
func (d *SolanaDetector) Extract(text string, chatID, messageID int64) []domain.Match {
	var matches []domain.Match
	seen := make(map[string]struct{})
	observed := d.now().UTC()

	for _, candidate := range base58Pattern.FindAllString(text, -1) {
		if _, dup := seen[candidate]; dup {
			continue
		}
		if !d.accept(candidate) {
			continue
		}
		seen[candidate] = struct{}{}
		matches = append(matches, domain.Match{
			Contract:   candidate,
			Chain:      domain.ChainSolana,
			ChatID:     chatID,
			MessageID:  messageID,
			ObservedAt: observed,
		})
	}
	return matches
}

// accept applies the rejection rules in order: false-positive word list,
// system address set, mixed-case heuristic, optional strict decode.
func (d *SolanaDetector) accept(candidate string) bool {
	if _, bad := solanaFalsePositives[candidate]; bad {
		return false
	}
	if _, sys := solanaSystemAddresses[candidate]; sys {
		return false
	}

	// All-lowercase or all-uppercase runs are almost always English words,
	// not Base58 keys.
	var hasUpper, hasLower bool
	for _, c := range candidate {
		if unicode.IsUpper(c) {
			hasUpper = true
		} else if unicode.IsLower(c) {
			hasLower = true
		}
	}
	if !hasUpper || !hasLower {
		return false
	}

	if d.strict {
		raw, err := base58.Decode(candidate)
		if err != nil || len(raw) != 32 {
			return false
		}
	}
	return true
}
