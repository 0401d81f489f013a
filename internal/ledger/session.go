package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"stakeLedger/internal/storage"
)

// Entity kinds used to partition the keyspace.
const (
	KindPool             = "pool"
	KindUser             = "user"
	KindUserInPool       = "user_in_pool"
	KindDepositPool      = "deposit_pool"
	KindReferrer         = "referrer"
	KindReferral         = "referral"
	KindPoolInteraction  = "pool_interaction"
	KindUserInteraction  = "user_interaction"
	KindInteractionCount = "interaction_count"
	KindAudit            = "audit"
	KindAppliedLog       = "applied_log"
)

// Session is a unit of work over a KV. Reads observe staged writes; Commit
// flushes every staged write in one atomic Write.
type Session struct {
	kv     storage.KV
	staged map[string]int
	writes []storage.Entry
}

func NewSession(kv storage.KV) *Session {
	return &Session{kv: kv, staged: make(map[string]int)}
}

// Commit persists the staged writes and resets the session.
func (s *Session) Commit(ctx context.Context) error {
	if err := s.kv.Write(ctx, s.writes); err != nil {
		return fmt.Errorf("commit %d entities: %w", len(s.writes), err)
	}
	s.Discard()
	return nil
}

// Discard drops staged writes.
func (s *Session) Discard() {
	s.staged = make(map[string]int)
	s.writes = nil
}

// Pending reports the number of staged writes.
func (s *Session) Pending() int {
	return len(s.writes)
}

func (s *Session) get(ctx context.Context, kind string, key []byte) ([]byte, bool, error) {
	if idx, ok := s.staged[stageKey(kind, key)]; ok {
		return s.writes[idx].Value, true, nil
	}
	return s.kv.Get(ctx, kind, key)
}

func (s *Session) put(kind string, key, value []byte) {
	sk := stageKey(kind, key)
	entry := storage.Entry{Kind: kind, Key: append([]byte(nil), key...), Value: value}
	if idx, ok := s.staged[sk]; ok {
		s.writes[idx] = entry
		return
	}
	s.staged[sk] = len(s.writes)
	s.writes = append(s.writes, entry)
}

func load[T any](ctx context.Context, s *Session, kind string, key []byte) (*T, bool, error) {
	raw, ok, err := s.get(ctx, kind, key)
	if err != nil || !ok {
		return nil, false, err
	}
	out := new(T)
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, false, fmt.Errorf("decode %s %x: %w", kind, key, err)
	}
	return out, true, nil
}

func save[T any](s *Session, kind string, key []byte, v *T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s %x: %w", kind, key, err)
	}
	s.put(kind, key, raw)
	return nil
}

func stageKey(kind string, key []byte) string {
	return kind + ":" + string(key)
}
