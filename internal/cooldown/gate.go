// Package cooldown suppresses repeat alerts for a contract within a
// configurable interval.
package cooldown

import "time"

// Gate maps contract → cooldown expiry. It is intentionally unsynchronized:
// all access happens from the trending loop, never from the ingress path.
// State is process-local; a restart clears it, at worst costing one repeat
// alert per contract.
type Gate struct {
	ttl     time.Duration
	entries map[string]time.Time
	now     func() time.Time
}

// NewGate creates a gate with the given cooldown interval.
func NewGate(ttl time.Duration) *Gate {
	return &Gate{
		ttl:     ttl,
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Admit reports whether an alert for contract may be emitted now. On
// admission the cooldown is armed; a denied contract is left untouched.
func (g *Gate) Admit(contract string) bool {
	now := g.now()
	if expires, ok := g.entries[contract]; ok && now.Before(expires) {
		return false
	}
	g.entries[contract] = now.Add(g.ttl)
	return true
}

// Prune removes expired entries and returns how many were dropped.
func (g *Gate) Prune() int {
	now := g.now()
	pruned := 0
	for contract, expires := range g.entries {
		if !now.Before(expires) {
			delete(g.entries, contract)
			pruned++
		}
	}
	return pruned
}

// Size returns the number of live entries (expired ones included until the
// next prune).
func (g *Gate) Size() int {
	return len(g.entries)
}
