// Package memory provides in-memory storage implementations for tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"alpha-radar/internal/domain"
	"alpha-radar/internal/storage"
)

// MentionStore is an in-memory implementation of storage.MentionStore.
type MentionStore struct {
	mu       sync.RWMutex
	mentions map[string]*domain.Match // keyed by (contract, chat_id, message_id)
}

// NewMentionStore creates a new in-memory mention store.
func NewMentionStore() *MentionStore {
	return &MentionStore{
		mentions: make(map[string]*domain.Match),
	}
}

// Compile-time interface check.
var _ storage.MentionStore = (*MentionStore)(nil)

func mentionKey(contract string, chatID, messageID int64) string {
	return fmt.Sprintf("%s|%d|%d", contract, chatID, messageID)
}

// Record implements storage.MentionStore.
func (s *MentionStore) Record(_ context.Context, m *domain.Match) (bool, error) {
	if m == nil || m.Contract == "" || m.Chain == "" {
		return false, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := mentionKey(m.Contract, m.ChatID, m.MessageID)
	if _, exists := s.mentions[key]; exists {
		return false, nil
	}

	// Store a copy to prevent external mutation
	matchCopy := *m
	s.mentions[key] = &matchCopy
	return true, nil
}

// Trending implements storage.MentionStore. The window is [Since, now);
// callers never record future-dated mentions so the upper bound is implicit.
func (s *MentionStore) Trending(_ context.Context, q storage.TrendingQuery) ([]*domain.Aggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type bucket struct {
		agg   *domain.Aggregate
		chats map[int64]struct{}
	}
	buckets := make(map[string]*bucket)

	for _, m := range s.mentions {
		if m.ObservedAt.Before(q.Since) {
			continue
		}
		if q.Chain != "" && m.Chain != q.Chain {
			continue
		}

		b, ok := buckets[m.Contract]
		if !ok {
			b = &bucket{
				agg: &domain.Aggregate{
					Contract:  m.Contract,
					Chain:     m.Chain,
					FirstSeen: m.ObservedAt,
					LastSeen:  m.ObservedAt,
				},
				chats: make(map[int64]struct{}),
			}
			buckets[m.Contract] = b
		}

		b.agg.Mentions++
		b.chats[m.ChatID] = struct{}{}
		if m.ObservedAt.Before(b.agg.FirstSeen) {
			b.agg.FirstSeen = m.ObservedAt
		}
		if m.ObservedAt.After(b.agg.LastSeen) {
			b.agg.LastSeen = m.ObservedAt
		}
	}

	var result []*domain.Aggregate
	for _, b := range buckets {
		b.agg.UniqueChats = len(b.chats)
		if b.agg.Mentions >= q.MinMentions && b.agg.UniqueChats >= q.MinUniqueChats {
			result = append(result, b.agg)
		}
	}
	return result, nil
}

// Count implements storage.MentionStore.
func (s *MentionStore) Count(_ context.Context, contract string, since, until time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, m := range s.mentions {
		if m.Contract != contract {
			continue
		}
		if m.ObservedAt.Before(since) || !m.ObservedAt.Before(until) {
			continue
		}
		count++
	}
	return count, nil
}

// Purge implements storage.MentionStore.
func (s *MentionStore) Purge(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for key, m := range s.mentions {
		if m.ObservedAt.Before(before) {
			delete(s.mentions, key)
			deleted++
		}
	}
	return deleted, nil
}

// Healthy implements storage.MentionStore.
func (s *MentionStore) Healthy(context.Context) bool { return true }

// Len returns the number of stored mentions (test helper).
func (s *MentionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.mentions)
}
