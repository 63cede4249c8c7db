package detector

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alpha-radar/internal/domain"
)

var normalizedEVM = regexp.MustCompile(`^0x[0-9a-f]{40}$`)

func TestEVMDetector_NormalizesCase(t *testing.T) {
	d := NewEVMDetector()

	matches := d.Extract("check 0xABCDEFabcdef0123456789012345678901234567AB", 10, 1)
	require.Len(t, matches, 1)

	assert.Equal(t, "0xabcdefabcdef0123456789012345678901234567ab", matches[0].Contract)
	assert.Equal(t, domain.ChainEVM, matches[0].Chain)
}

func TestEVMDetector_DedupAfterNormalization(t *testing.T) {
	d := NewEVMDetector()

	// Same address in three different casings collapses to one match.
	text := "0xABCDEFabcdef0123456789012345678901234567AB " +
		"0xabcdefabcdef0123456789012345678901234567ab " +
		"0xABCDEFABCDEF0123456789012345678901234567AB"
	matches := d.Extract(text, 10, 1)
	require.Len(t, matches, 1)
}

func TestEVMDetector_Blacklist(t *testing.T) {
	d := NewEVMDetector()

	assert.Empty(t, d.Extract("burn 0x0000000000000000000000000000000000000000", 1, 1))
	assert.Empty(t, d.Extract("max 0xFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF", 1, 2))
	assert.Empty(t, d.Extract("rip 0x000000000000000000000000000000000000dEaD", 1, 3))
}

func TestEVMDetector_ExactLength(t *testing.T) {
	d := NewEVMDetector()

	// 39 and 41 hex digits must not match.
	assert.Empty(t, d.Extract("0xabcdefabcdef012345678901234567890123456", 1, 1))
	assert.Empty(t, d.Extract("0xabcdefabcdef01234567890123456789012345678", 1, 2))

	matches := d.Extract("0xabcdefabcdef0123456789012345678901234567 gm", 1, 3)
	for _, m := range matches {
		assert.Regexp(t, normalizedEVM, m.Contract)
		assert.Len(t, m.Contract, 42)
	}
}

func TestRegistry_FansThroughAllDetectors(t *testing.T) {
	reg := NewRegistry(NewSolanaDetector(false), NewEVMDetector())

	text := "pair " + bonkMint + " with 0xABCDEFabcdef0123456789012345678901234567AB"
	matches := reg.Extract(text, 7, 42)
	require.Len(t, matches, 2)

	// Detector order is preserved.
	assert.Equal(t, domain.ChainSolana, matches[0].Chain)
	assert.Equal(t, domain.ChainEVM, matches[1].Chain)

	assert.Equal(t, []string{"solana", "evm"}, reg.ChainNames())
}
