// Package expense implements the expense store: the single source of truth
// for expense records, persisted through a key/value port after every
// mutation.
package expense

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/theirongolddev/iexpense/internal/model"

	"github.com/google/uuid"
)

// StorageKey is the key the serialized record list lives under.
const StorageKey = "expenses"

// Port is the key/value capability the store persists through.
// Get reports found=false with a nil error when the key is absent.
type Port interface {
	Get(key string) (value []byte, found bool, err error)
	Set(key string, value []byte) error
}

// Op names a store operation in events and diagnostics.
type Op string

const (
	OpLoad   Op = "load"
	OpDecode Op = "decode"
	OpEncode Op = "encode"
	OpWrite  Op = "write"
	OpAppend Op = "append"
	OpRemove Op = "remove"
)

// Event is delivered to the change handler after a mutation has been
// applied and persisted.
type Event struct {
	Op    Op
	Items []model.Expense
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for load/persist diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithErrorHandler registers a callback for swallowed load/persist failures.
func WithErrorHandler(fn func(op Op, err error)) Option {
	return func(s *Store) { s.onError = fn }
}

// WithChangeHandler registers a callback invoked after every mutation.
func WithChangeHandler(fn func(Event)) Option {
	return func(s *Store) { s.onChange = fn }
}

// Store owns the ordered list of expenses. It is not safe for concurrent use.
type Store struct {
	port  Port
	items []model.Expense

	logger   *slog.Logger
	onError  func(op Op, err error)
	onChange func(Event)
}

// New creates a store over port and loads any previously persisted records.
// Load failures leave the store empty; they are never returned.
func New(port Port, opts ...Option) *Store {
	s := &Store{
		port:   port,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.items = s.load()
	if n := s.reassignDuplicateIDs(); n > 0 {
		s.logger.Warn("reassigned duplicate expense ids", "count", n)
		s.persist()
	}
	return s
}

func (s *Store) load() []model.Expense {
	data, found, err := s.port.Get(StorageKey)
	if err != nil {
		s.fail(OpLoad, err)
		return []model.Expense{}
	}
	if !found {
		return []model.Expense{}
	}

	var decoded []model.Expense
	if err := json.Unmarshal(data, &decoded); err != nil {
		s.fail(OpDecode, err)
		return []model.Expense{}
	}
	if decoded == nil {
		decoded = []model.Expense{}
	}

	s.logger.Debug("loaded expenses", "count", len(decoded))
	return decoded
}

func (s *Store) persist() {
	data, err := json.Marshal(s.items)
	if err != nil {
		s.fail(OpEncode, err)
		return
	}
	if err := s.port.Set(StorageKey, data); err != nil {
		s.fail(OpWrite, err)
	}
}

func (s *Store) fail(op Op, err error) {
	s.logger.Warn("expense store failure", "op", string(op), "error", err)
	if s.onError != nil {
		s.onError(op, fmt.Errorf("expense %s: %w", op, err))
	}
}

func (s *Store) changed(op Op) {
	if s.onChange != nil {
		s.onChange(Event{Op: op, Items: s.Items()})
	}
}

// Append adds e to the end of the list and persists. A nil or already used
// ID is replaced with a fresh one. The stored record is returned.
func (s *Store) Append(e model.Expense) model.Expense {
	if e.ID == uuid.Nil || s.hasID(e.ID) {
		e.ID = uuid.New()
	}
	s.items = append(s.items, e)
	s.persist()
	s.changed(OpAppend)
	return e
}

// Add builds a new record and appends it.
func (s *Store) Add(name, category string, amount float64) model.Expense {
	return s.Append(model.NewExpense(name, category, amount))
}

// RemoveByCategory removes records addressed by their positions within the
// category projection, not the master list. Positions are resolved to IDs
// first, so interleaved categories are never touched. Out-of-range positions
// are ignored. It returns the number of records removed.
func (s *Store) RemoveByCategory(category string, indices ...int) int {
	filtered := s.ByCategory(category)

	doomed := make(map[uuid.UUID]struct{}, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(filtered) {
			continue
		}
		doomed[filtered[idx].ID] = struct{}{}
	}

	kept := make([]model.Expense, 0, len(s.items))
	for _, e := range s.items {
		if _, ok := doomed[e.ID]; ok {
			continue
		}
		kept = append(kept, e)
	}
	removed := len(s.items) - len(kept)
	s.items = kept

	s.persist()
	s.changed(OpRemove)
	return removed
}

// ByCategory returns the records of one category in master order.
func (s *Store) ByCategory(category string) []model.Expense {
	var out []model.Expense
	for _, e := range s.items {
		if e.Type == category {
			out = append(out, e)
		}
	}
	return out
}

// Items returns a copy of the master list.
func (s *Store) Items() []model.Expense {
	out := make([]model.Expense, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.items)
}

// Categories returns the distinct categories present, in first-seen order.
func (s *Store) Categories() []string {
	seen := make(map[string]struct{})
	var cats []string
	for _, e := range s.items {
		if _, ok := seen[e.Type]; ok {
			continue
		}
		seen[e.Type] = struct{}{}
		cats = append(cats, e.Type)
	}
	return cats
}

// reassignDuplicateIDs gives every repeated or nil ID after its first
// occurrence a fresh one, so removal by ID never reaches a twin record.
func (s *Store) reassignDuplicateIDs() int {
	seen := make(map[uuid.UUID]struct{}, len(s.items))
	n := 0
	for i := range s.items {
		id := s.items[i].ID
		if _, dup := seen[id]; dup || id == uuid.Nil {
			for {
				id = uuid.New()
				if _, taken := seen[id]; !taken {
					break
				}
			}
			s.items[i].ID = id
			n++
		}
		seen[id] = struct{}{}
	}
	return n
}

func (s *Store) hasID(id uuid.UUID) bool {
	for _, e := range s.items {
		if e.ID == id {
			return true
		}
	}
	return false
}
