package detector

import (
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alpha-radar/internal/domain"
)

const bonkMint = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"

func TestSolanaDetector_ExtractsMint(t *testing.T) {
	d := NewSolanaDetector(false)

	matches := d.Extract("aping into "+bonkMint+" right now", 10, 1)
	require.Len(t, matches, 1)

	m := matches[0]
	assert.Equal(t, bonkMint, m.Contract)
	assert.Equal(t, domain.ChainSolana, m.Chain)
	assert.Equal(t, int64(10), m.ChatID)
	assert.Equal(t, int64(1), m.MessageID)
	assert.False(t, m.ObservedAt.IsZero())
}

func TestSolanaDetector_FalsePositiveWords(t *testing.T) {
	d := NewSolanaDetector(false)

	// Scenario: common English words colliding with the Base58 alphabet.
	assert.Empty(t, d.Extract("Congratulations on the Launch", 1, 1))
	assert.Empty(t, d.Extract("Bullish on Ethereum and Solana today", 1, 2))
}

func TestSolanaDetector_SystemAddresses(t *testing.T) {
	d := NewSolanaDetector(false)

	assert.Empty(t, d.Extract("send to 11111111111111111111111111111111", 1, 1))
	assert.Empty(t, d.Extract("wrap via So11111111111111111111111111111111111111112", 1, 2))
	assert.Empty(t, d.Extract("spl: TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA", 1, 3))
}

func TestSolanaDetector_MixedCaseHeuristic(t *testing.T) {
	d := NewSolanaDetector(false)

	// All-lowercase and all-uppercase runs are English words, not keys.
	assert.Empty(t, d.Extract("abcdefghijkmnopqrstuvwxyzabcdefghijk", 1, 1))
	assert.Empty(t, d.Extract("AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA", 1, 2))
}

func TestSolanaDetector_LengthBounds(t *testing.T) {
	d := NewSolanaDetector(false)

	// 31 chars: below minimum.
	assert.Empty(t, d.Extract("AbCdEfGhJkMnPqRsTuVwXyZ12345678", 1, 1))

	for _, m := range d.Extract("x "+bonkMint+" y AbCdEfGhJkMnPqRsTuVwXyZ123456789abcDEF", 1, 2) {
		assert.GreaterOrEqual(t, len(m.Contract), 32)
		assert.LessOrEqual(t, len(m.Contract), 44)
	}
}

func TestSolanaDetector_DedupWithinMessage(t *testing.T) {
	d := NewSolanaDetector(false)

	matches := d.Extract(bonkMint+" is pumping, I repeat "+bonkMint, 1, 1)
	require.Len(t, matches, 1)
}

func TestSolanaDetector_Strict(t *testing.T) {
	d := NewSolanaDetector(true)

	// A 32-byte payload survives strict mode.
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i + 1)
	}
	valid := base58.Encode(key)
	require.Len(t, d.Extract("fresh mint "+valid, 1, 1), 1)

	// Syntactically plausible but decodes to fewer than 32 bytes.
	assert.Empty(t, d.Extract("AbCdEfGhJkMnPqRsTuVwXyZa12345678", 1, 2))
}

func TestSolanaDetector_PairwiseDistinct(t *testing.T) {
	d := NewSolanaDetector(false)

	text := bonkMint + " vs So11111111111111111111111111111111111111112 vs " + bonkMint
	matches := d.Extract(text, 1, 1)

	seen := make(map[string]bool)
	for _, m := range matches {
		assert.False(t, seen[m.Contract], "contract %s emitted twice", m.Contract)
		seen[m.Contract] = true
	}
}
