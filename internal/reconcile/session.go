// Package reconcile tracks which form fields still need manual input and
// guards asynchronous URL validation against out-of-order completion.
package reconcile

import (
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/fundops/dealfill/internal/model"
)

// Session is the reconciliation state of one wizard session: the
// needs-manual-input set seeded by parsing, the per-field validation
// status machine, and the founder rows proposed by extraction. Safe for
// concurrent use.
type Session struct {
	mu         sync.Mutex
	needs      map[model.FieldKey]bool
	status     map[model.FieldKey]model.FieldStatus
	generation map[model.FieldKey]uint64
	founders   []model.Founder
	proposed   bool
	logger     *zap.Logger
}

// NewSession creates an empty session. A nil logger disables diagnostics.
func NewSession(logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		needs:      make(map[model.FieldKey]bool),
		status:     make(map[model.FieldKey]model.FieldStatus),
		generation: make(map[model.FieldKey]uint64),
		logger:     logger,
	}
}

// ApplyParse replaces the tracked needs-manual-input set wholesale. A
// fresh paste supersedes whatever backlog the previous one left behind.
func (s *Session) ApplyParse(needs []model.FieldKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.needs = make(map[model.FieldKey]bool, len(needs))
	for _, key := range needs {
		s.needs[key] = true
	}

	s.logger.Debug("reconcile: parse applied", zap.Int("needs", len(needs)))
}

// FieldChanged records a user edit. A non-empty value removes the key
// from the needs set; clearing it afterwards does not re-add it, since
// only a new ApplyParse re-seeds the set. Every edit bumps the key's
// generation so an in-flight check for the previous value lands stale;
// clearing additionally resets the validation status to idle.
func (s *Session) FieldChanged(key model.FieldKey, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation[key]++

	if strings.TrimSpace(value) != "" {
		if s.needs[key] {
			delete(s.needs, key)
			s.logger.Debug("reconcile: need satisfied", zap.String("field", string(key)))
		}
		return
	}

	s.status[key] = model.StatusIdle
}

// StartValidation marks the key as validating and returns the token its
// completion must present. Starting again supersedes the previous start.
func (s *Session) StartValidation(key model.FieldKey) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation[key]++
	s.status[key] = model.StatusValidating
	return s.generation[key]
}

// FinishValidation applies a check outcome. A token that no longer
// matches the key's generation belongs to a superseded value and is
// discarded.
func (s *Session) FinishValidation(key model.FieldKey, token uint64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.generation[key] {
		s.logger.Debug("reconcile: stale completion discarded",
			zap.String("field", string(key)),
			zap.Uint64("token", token),
			zap.Uint64("generation", s.generation[key]))
		return
	}

	if ok {
		s.status[key] = model.StatusValid
	} else {
		s.status[key] = model.StatusInvalid
	}
}

// Status returns the key's validation status, idle when never touched.
func (s *Session) Status(key model.FieldKey) model.FieldStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.status[key]; ok {
		return st
	}
	return model.StatusIdle
}

// Needs reports whether the key is still tracked as needing manual input.
func (s *Session) Needs(key model.FieldKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.needs[key]
}

// NeedsManualInput returns the tracked keys in sorted order.
func (s *Session) NeedsManualInput() []model.FieldKey {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]model.FieldKey, 0, len(s.needs))
	for key := range s.needs {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// ProposeFounders installs extracted founder rows. Only the first
// non-empty proposal is accepted: once rows are on screen the user's
// edits are authoritative and a re-parse must not clobber them.
func (s *Session) ProposeFounders(founders []model.Founder) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.proposed || len(founders) == 0 {
		return false
	}

	s.founders = append([]model.Founder(nil), founders...)
	s.proposed = true
	s.logger.Debug("reconcile: founders proposed", zap.Int("count", len(founders)))
	return true
}

// Founders returns a copy of the accepted founder rows.
func (s *Session) Founders() []model.Founder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Founder(nil), s.founders...)
}
