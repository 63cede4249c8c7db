package domain

import "time"

// Aggregate is the windowed view of one contract's mentions, computed per
// trending query. It is never persisted.
type Aggregate struct {
	Contract    string
	Chain       string
	Mentions    int
	UniqueChats int
	FirstSeen   time.Time
	LastSeen    time.Time
}

// TrendingToken is a scored trending candidate produced by one scan cycle.
type TrendingToken struct {
	Contract    string
	Chain       string
	Mentions    int
	UniqueChats int
	Velocity    float64
	Score       float64
}

// ComputeScore applies the fixed scoring formula:
//
//	score = 2*mentions + 3*unique_chats + 5*velocity
//
// The coefficients are deliberately constant so alert behavior is
// reproducible across deployments; tuning happens via the min_* gates.
func (t *TrendingToken) ComputeScore() {
	t.Score = 2*float64(t.Mentions) + 3*float64(t.UniqueChats) + 5*t.Velocity
}

// AlertRecord is one emitted alert, kept for audit.
type AlertRecord struct {
	Contract    string
	Chain       string
	Score       float64
	Mentions    int
	UniqueChats int
	Velocity    float64
	AlertedAt   time.Time
}
