// Package audit records an immutable per-turn trail: which rules fired,
// which states were derived, whether the turn escalated, and a stable
// reference hash that external systems can recompute to verify that
// identical input produced an identical response.
package audit

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Record is one turn's audit entry. Immutable once written.
type Record struct {
	ID                 string    `json:"id"`
	SessionID          string    `json:"session_id"`
	Turn               int       `json:"turn"`
	RulesFired         []string  `json:"rules_fired"`
	DerivedStates      []string  `json:"derived_states"`
	Escalated          bool      `json:"escalated"`
	EscalationCategory string    `json:"escalation_category,omitempty"`
	AdvisoryLevel      string    `json:"advisory_level,omitempty"`
	Ref                string    `json:"ref"`
	CreatedAt          time.Time `json:"created_at"`
}

// NewID returns a fresh ULID for an audit record.
func NewID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// Ref computes the opaque turn reference: a sha256 over the session id,
// turn index, and the ordered fact keys contributing to the turn's
// response. Identical input always yields an identical reference.
func Ref(sessionID string, turn int, factKeys []string) string {
	h := sha256.New()
	h.Write([]byte(sessionID))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(turn)))
	for _, key := range factKeys {
		h.Write([]byte{0})
		h.Write([]byte(key))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Sink persists audit records.
type Sink interface {
	Append(ctx context.Context, rec Record) error
	Close() error
}

// NoopSink discards records. Used in tests and when auditing is
// disabled by configuration.
type NoopSink struct{}

func (NoopSink) Append(context.Context, Record) error { return nil }
func (NoopSink) Close() error                         { return nil }

func joinList(items []string) string { return strings.Join(items, ",") }
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
