package alloc

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/theirongolddev/allot/internal/model"
)

// EventKind names the mutation that produced an Event.
type EventKind string

const (
	EventAdded    EventKind = "added"
	EventUpdated  EventKind = "updated"
	EventRemoved  EventKind = "removed"
	EventReplaced EventKind = "replaced"
	EventFunds    EventKind = "funds"
	EventRestored EventKind = "restored"
)

// Event is emitted after every successful mutation. Replaced carries the
// preset ids in insertion order so a frontend can stagger their appearance.
type Event struct {
	Seq     int64         `json:"seq"`
	Kind    EventKind     `json:"kind"`
	IDs     []string      `json:"ids,omitempty"`
	At      time.Time     `json:"at"`
	Summary model.Summary `json:"summary"`
}

// Persister stores the session record after each mutation.
type Persister interface {
	Save(key string, rec Record) error
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithPersister saves the record under key after every mutation.
func WithPersister(p Persister, key string) SessionOption {
	return func(s *Session) {
		s.persist = p
		if key != "" {
			s.key = key
		}
	}
}

// WithLogger sets the logger used for persistence warnings.
func WithLogger(l zerolog.Logger) SessionOption {
	return func(s *Session) { s.log = l }
}

// Session owns one portfolio: total funds, the ledger and its subscribers.
// It is the only writer of its ledger and is safe for concurrent use.
type Session struct {
	mu sync.RWMutex

	ledger   *Ledger
	fundsRaw string
	funds    float64 // 0 while unset
	closed   bool

	key            string
	persist        Persister
	lastPersistErr error
	log            zerolog.Logger

	seq     int64
	nextSub int
	subs    map[int]func(Event)
}

// NewSession returns an empty session with unset total funds.
func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		ledger: NewLedger(),
		key:    RecordKey,
		log:    zerolog.Nop(),
		subs:   make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ParseTotalFunds parses user input. An empty string means unset (ok=false,
// no error); anything else must be a positive finite number.
func ParseTotalFunds(raw string) (value float64, ok bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false, nil
	}
	v, perr := strconv.ParseFloat(raw, 64)
	if perr != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false, fmt.Errorf("%w: %q", ErrInvalidTotalFunds, raw)
	}
	return v, true, nil
}

// TotalFunds returns the raw input, its value, and whether it is set.
func (s *Session) TotalFunds() (raw string, value float64, set bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fundsRaw, s.funds, s.fundsRaw != ""
}

// SetTotalFunds changes total funds and rewrites every amount from its
// percentage. An empty string unsets funds. Invalid input leaves the session
// untouched.
func (s *Session) SetTotalFunds(raw string) error {
	v, ok, err := ParseTotalFunds(raw)
	if err != nil {
		return err
	}
	return s.mutate(EventFunds, func() ([]string, error) {
		if ok {
			s.fundsRaw = strings.TrimSpace(raw)
		} else {
			s.fundsRaw = ""
		}
		s.funds = v
		s.ledger.RecomputeAmountsFromPercentages(v)
		return nil, nil
	})
}

// AddItem appends a new line item. Total funds must be set and positive.
func (s *Session) AddItem(f NewItem) (string, error) {
	var id string
	err := s.mutate(EventAdded, func() ([]string, error) {
		if err := s.requireFunds("add item"); err != nil {
			return nil, err
		}
		var err error
		id, err = s.ledger.Add(f, s.funds)
		if err != nil {
			return nil, err
		}
		return []string{id}, nil
	})
	return id, err
}

// AddDefaultPortfolio replaces the ledger with the preset allocation in one step.
func (s *Session) AddDefaultPortfolio() ([]string, error) {
	var ids []string
	err := s.mutate(EventReplaced, func() ([]string, error) {
		if err := s.requireFunds("default portfolio"); err != nil {
			return nil, err
		}
		ids = s.ledger.AddDefaultPortfolio(s.funds)
		return ids, nil
	})
	return ids, err
}

// UpdateItem applies a patch to one item.
func (s *Session) UpdateItem(id string, p Patch) error {
	return s.mutate(EventUpdated, func() ([]string, error) {
		if err := s.ledger.Update(id, p, s.funds); err != nil {
			return nil, err
		}
		return []string{id}, nil
	})
}

// RemoveItem deletes one item.
func (s *Session) RemoveItem(id string) error {
	return s.mutate(EventRemoved, func() ([]string, error) {
		if err := s.ledger.Remove(id); err != nil {
			return nil, err
		}
		return []string{id}, nil
	})
}

// Restore loads a deserialized state. Unparseable or non-positive funds are
// treated as unset. Stored amounts are kept as-is. It returns how many item
// ids had to be reassigned to keep them unique.
func (s *Session) Restore(st State) (int, error) {
	var reassigned int
	err := s.mutate(EventRestored, func() ([]string, error) {
		v, ok, err := ParseTotalFunds(st.TotalFunds)
		if err != nil {
			s.log.Warn().Str("total_funds", st.TotalFunds).Msg("ignoring invalid stored total funds")
		}
		if ok {
			s.fundsRaw = strings.TrimSpace(st.TotalFunds)
			s.funds = v
		} else {
			s.fundsRaw, s.funds = "", 0
		}
		reassigned = s.ledger.Replace(st.Items, st.Counter)
		if reassigned > 0 {
			s.log.Warn().Int("count", reassigned).Msg("reassigned missing or duplicate item ids")
		}
		return nil, nil
	})
	return reassigned, err
}

// Items returns a copy of the ledger in display order.
func (s *Session) Items() []model.LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Items()
}

// Item returns one item by id.
func (s *Session) Item(id string) (model.LineItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Get(id)
}

// Summary computes the current portfolio totals.
func (s *Session) Summary() model.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ComputeSummary(s.ledger.items, s.funds)
}

// Chart returns the renderer payload for the current ledger.
func (s *Session) Chart() model.ChartSeries {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ChartSeries(s.ledger.items)
}

// OverAllocated reports whether the item pushes allocations past total funds.
func (s *Session) OverAllocated(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return OverAllocated(s.ledger.items, id, s.funds)
}

// Snapshot is a consistent read of everything a frontend renders.
type Snapshot struct {
	TotalFunds string            `json:"total_funds"`
	FundsSet   bool              `json:"funds_set"`
	Items      []model.LineItem  `json:"items"`
	Summary    model.Summary     `json:"summary"`
	Chart      model.ChartSeries `json:"chart"`
	Counter    int               `json:"id_counter"`
}

// Snapshot returns the current state under a single read lock.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		TotalFunds: s.fundsRaw,
		FundsSet:   s.fundsRaw != "",
		Items:      s.ledger.Items(),
		Summary:    ComputeSummary(s.ledger.items, s.funds),
		Chart:      ChartSeries(s.ledger.items),
		Counter:    s.ledger.Counter(),
	}
}

// Record serializes the current session.
func (s *Session) Record() Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Serialize(s.fundsRaw, s.ledger.items, s.ledger.Counter())
}

// LastPersistError returns the error from the most recent save, if any.
func (s *Session) LastPersistError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastPersistErr
}

// Subscribe registers fn for every future Event. Callbacks run after the
// session lock is released, so they may read from the session. The returned
// func unsubscribes.
func (s *Session) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSub++
	id := s.nextSub
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Close rejects further mutations with ErrInvalidState.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *Session) requireFunds(op string) error {
	if !(s.funds > 0) {
		return fmt.Errorf("%s: %w: %w", op, ErrInvalidState, ErrInvalidTotalFunds)
	}
	return nil
}

// mutate runs fn under the write lock, persists on success and then notifies
// subscribers outside the lock.
func (s *Session) mutate(kind EventKind, fn func() ([]string, error)) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("%s: session closed: %w", kind, ErrInvalidState)
	}
	ids, err := fn()
	if err != nil {
		s.mu.Unlock()
		return err
	}

	s.seq++
	ev := Event{
		Seq:     s.seq,
		Kind:    kind,
		IDs:     ids,
		At:      time.Now(),
		Summary: ComputeSummary(s.ledger.items, s.funds),
	}
	s.save()

	subs := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
	return nil
}

// save must be called with s.mu held. Failures are logged and remembered,
// never returned: the edit itself already succeeded.
func (s *Session) save() {
	if s.persist == nil {
		return
	}
	rec := Serialize(s.fundsRaw, s.ledger.items, s.ledger.Counter())
	if err := s.persist.Save(s.key, rec); err != nil {
		s.lastPersistErr = err
		s.log.Error().Err(err).Str("key", s.key).Msg("saving portfolio record")
		return
	}
	s.lastPersistErr = nil
}
