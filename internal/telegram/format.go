package telegram

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"

	"alpha-radar/internal/domain"
)

// FormatAlert renders one trending token as the alert message body.
func FormatAlert(t *domain.TrendingToken) string {
	velocityDisplay := "NEW"
	if t.Velocity != 0 {
		velocityDisplay = fmt.Sprintf("%+.0f%%", t.Velocity*100)
	}

	return fmt.Sprintf(
		"**TRENDING TOKEN DETECTED**\n\n"+
			"**Chain:** %s\n"+
			"**Contract:** `%s`\n"+
			"**Mentions:** %d\n"+
			"**Unique Groups:** %d\n"+
			"**Velocity:** %s\n"+
			"**Score:** %.1f\n",
		strings.ToUpper(t.Chain),
		displayContract(t),
		t.Mentions,
		t.UniqueChats,
		velocityDisplay,
		t.Score,
	)
}

// displayContract renders EVM contracts with their EIP-55 checksum for
// readability. Stored contracts stay lowercase; this is display only.
func displayContract(t *domain.TrendingToken) string {
	if t.Chain == domain.ChainEVM {
		return ChecksumAddress(t.Contract)
	}
	return t.Contract
}

// ChecksumAddress applies EIP-55 mixed-case checksumming to a lowercase
// 0x-prefixed address. Inputs that are not a plain hex address are
// returned unchanged.
func ChecksumAddress(addr string) string {
	if len(addr) != 42 || !strings.HasPrefix(addr, "0x") {
		return addr
	}
	body := strings.ToLower(addr[2:])
	if _, err := hex.DecodeString(body); err != nil {
		return addr
	}

	hasher := sha3.NewLegacyKeccak256()
	hasher.Write([]byte(body))
	hash := hasher.Sum(nil)

	out := make([]byte, len(body))
	for i := 0; i < len(body); i++ {
		ch := body[i]
		if ch >= 'a' && ch <= 'f' {
			nibble := hash[i/2] >> 4
			if i%2 == 1 {
				nibble = hash[i/2] & 0x0f
			}
			if nibble >= 8 {
				ch = ch - 'a' + 'A'
			}
		}
		out[i] = ch
	}
	return "0x" + string(out)
}
