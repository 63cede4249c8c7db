// Package domain defines the core entities shared across the radar pipeline.
package domain

import "time"

// Chain identifiers. Detectors guarantee that normalized contract strings
// never collide across chains, so the chain tag on a mention is authoritative.
const (
	ChainSolana = "solana"
	ChainEVM    = "evm"
)

// Match is a single contract mention extracted from one message.
// Contract is chain-normalized; ObservedAt is the detection time (UTC),
// not the message's own timestamp.
type Match struct {
	Contract   string
	Chain      string
	ChatID     int64
	MessageID  int64
	ObservedAt time.Time
}

// MessageEvent is one chat message as delivered by the transport.
type MessageEvent struct {
	Text      string
	ChatID    int64
	MessageID int64
	Forwarded bool
}
