// Package game holds the authoritative session state: player identity,
// inventory, currency, captured pokecats and the transient UI signals
// the scenes render. Every durable mutation mirrors synchronously to
// the save repository; nothing outside this package writes state
// directly.
package game

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pokecat-game/pokecat/server/internal/domain/creature"
	"github.com/pokecat-game/pokecat/server/internal/domain/item"
	"github.com/pokecat-game/pokecat/server/internal/domain/player"
	"github.com/pokecat-game/pokecat/server/internal/infra/storage"
	"github.com/pokecat-game/pokecat/server/internal/platform/logger"
	"github.com/pokecat-game/pokecat/server/internal/platform/metrics"
)

// NotificationType classifies a toast notification.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

// Notification is the single active toast. A new one replaces any prior
// one; it expires on its own after the configured display window.
type Notification struct {
	Message string           `json:"message"`
	Type    NotificationType `json:"type"`
}

// Snapshot is an immutable copy of the store state handed to readers.
type Snapshot struct {
	User         *player.Identity  `json:"user"`
	CaughtList   []creature.Caught `json:"caughtList"`
	Items        []item.GameItem   `json:"items"`
	Dirhams      int               `json:"dirhams"`
	Notification *Notification     `json:"notification"`
	Selected     *creature.Caught  `json:"selected"`
}

// Listener receives a snapshot after every state change.
type Listener func(Snapshot)

const persistTimeout = 3 * time.Second

// Store is the single process-wide state container. All mutation goes
// through its methods; readers get snapshots, never live references.
type Store struct {
	mu   sync.Mutex
	repo storage.SaveRepository // nil means memory-only for this session
	log  *logger.Logger

	user       *player.Identity
	caughtList []creature.Caught
	items      []item.GameItem
	dirhams    int

	notification    *Notification
	notificationSeq uint64
	notificationTTL time.Duration
	selected        *creature.Caught

	listeners []Listener
}

// NewStore builds a store hydrated from the save repository. A nil repo
// yields a memory-only store; unreadable keys fall back to their
// documented defaults and are reported through the logger, never fatal.
func NewStore(repo storage.SaveRepository, log *logger.Logger, notificationTTL time.Duration) *Store {
	s := &Store{
		repo:            repo,
		log:             log,
		dirhams:         player.StartingDirhams,
		notificationTTL: notificationTTL,
	}
	s.hydrate()
	return s
}

func (s *Store) hydrate() {
	if s.repo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	loadKey(s, ctx, storage.KeyUser, &s.user)
	loadKey(s, ctx, storage.KeyCaughtList, &s.caughtList)
	loadKey(s, ctx, storage.KeyItems, &s.items)
	loadKey(s, ctx, storage.KeyDirhams, &s.dirhams)
}

// loadKey reads one save key into dst, leaving the default in place on
// absence or corruption.
func loadKey[T any](s *Store, ctx context.Context, key string, dst *T) {
	raw, ok, err := s.repo.Get(ctx, key)
	if err != nil {
		s.log.Warn("save state: failed to read %q, using default: %v", key, err)
		return
	}
	if !ok {
		return
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.log.Warn("save state: corrupt value for %q, using default: %v", key, err)
	}
}

// persist mirrors one durable field to storage. Failures degrade to
// memory-only for that write; they never fail the mutation.
func (s *Store) persist(key string, value interface{}) {
	if s.repo == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		metrics.Get().RecordStorageError()
		s.log.Error("save state: failed to marshal %q: %v", key, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.repo.Put(ctx, key, raw); err != nil {
		metrics.Get().RecordStorageError()
		s.log.Warn("save state: failed to persist %q, state kept in memory: %v", key, err)
		return
	}
	metrics.Get().RecordStorageWrite()
}

// Subscribe registers a listener that receives a snapshot after every
// state change. Listeners run outside the store lock.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

// notifyLocked snapshots the state and returns the fan-out closure.
// Callers invoke the closure after releasing the lock.
func (s *Store) notifyLocked() func() {
	snap := s.snapshotLocked()
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	return func() {
		for _, l := range listeners {
			l(snap)
		}
	}
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		CaughtList: make([]creature.Caught, len(s.caughtList)),
		Items:      make([]item.GameItem, len(s.items)),
		Dirhams:    s.dirhams,
	}
	copy(snap.CaughtList, s.caughtList)
	copy(snap.Items, s.items)
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	if s.notification != nil {
		n := *s.notification
		snap.Notification = &n
	}
	if s.selected != nil {
		c := *s.selected
		snap.Selected = &c
	}
	return snap
}

// Snapshot returns an immutable copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// SetUser replaces the player identity and persists it.
func (s *Store) SetUser(u player.Identity) {
	s.mu.Lock()
	s.user = &u
	s.persist(storage.KeyUser, s.user)
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()
}

// ClearUser wipes the whole save back to its first-run state: no
// identity, empty capture list, empty inventory, the starting balance.
func (s *Store) ClearUser() {
	s.mu.Lock()
	s.user = nil
	s.caughtList = nil
	s.items = nil
	s.dirhams = player.StartingDirhams
	s.notification = nil
	s.selected = nil
	if s.repo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		for _, key := range []string{storage.KeyUser, storage.KeyCaughtList, storage.KeyItems, storage.KeyDirhams} {
			if err := s.repo.Delete(ctx, key); err != nil {
				metrics.Get().RecordStorageError()
				s.log.Warn("save state: failed to clear %q: %v", key, err)
				continue
			}
			metrics.Get().RecordStorageWrite()
		}
		cancel()
	}
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()
}

// User returns the current identity, or nil before first run.
func (s *Store) User() *player.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// AddCaught appends a capture snapshot and persists the list. The list
// is append-only; owning several captures of the same template is fine.
func (s *Store) AddCaught(c creature.Caught) {
	s.mu.Lock()
	s.caughtList = append(s.caughtList, c)
	s.persist(storage.KeyCaughtList, s.caughtList)
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()
}

// AddItem adds quantity units of an item. An existing line for the same
// id is incremented; otherwise a new line is created from the catalog
// definition. Persists.
func (s *Store) AddItem(def item.Definition, quantity int) {
	if quantity <= 0 {
		return
	}
	s.mu.Lock()
	found := false
	next := make([]item.GameItem, len(s.items))
	for i, line := range s.items {
		if line.ID == def.ID {
			line.Quantity += quantity
			found = true
		}
		next[i] = line
	}
	if !found {
		next = append(next, item.FromDefinition(def, quantity))
	}
	s.items = next
	s.persist(storage.KeyItems, s.items)
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()
}

// RemoveItem decrements quantity units from the line with the given id,
// pruning the line entirely once it reaches zero or below. Persists.
func (s *Store) RemoveItem(id string, quantity int) {
	if quantity <= 0 {
		return
	}
	s.mu.Lock()
	next := make([]item.GameItem, 0, len(s.items))
	for _, line := range s.items {
		if line.ID == id {
			line.Quantity -= quantity
		}
		if line.Quantity > 0 {
			next = append(next, line)
		}
	}
	s.items = next
	s.persist(storage.KeyItems, s.items)
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()
}

// Item returns the inventory line for id, if owned.
func (s *Store) Item(id string) (item.GameItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, line := range s.items {
		if line.ID == id {
			return line, true
		}
	}
	return item.GameItem{}, false
}

// AddDirhams credits the balance unconditionally and persists it.
func (s *Store) AddDirhams(amount int) {
	if amount <= 0 {
		return
	}
	s.mu.Lock()
	s.dirhams += amount
	s.persist(storage.KeyDirhams, s.dirhams)
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()
}

// SpendDirhams debits the balance if it covers the amount, returning
// whether the debit happened. The check and the debit are one state
// transition; on failure the balance is untouched.
func (s *Store) SpendDirhams(amount int) bool {
	s.mu.Lock()
	if amount < 0 || s.dirhams < amount {
		s.mu.Unlock()
		return false
	}
	s.dirhams -= amount
	s.persist(storage.KeyDirhams, s.dirhams)
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()
	return true
}

// Dirhams returns the current balance.
func (s *Store) Dirhams() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirhams
}

// SetNotification replaces the active toast. It self-expires after the
// configured display window unless replaced or cleared first. Never
// persisted.
func (s *Store) SetNotification(message string, t NotificationType) {
	s.mu.Lock()
	s.notification = &Notification{Message: message, Type: t}
	s.notificationSeq++
	seq := s.notificationSeq
	notify := s.notifyLocked()
	ttl := s.notificationTTL
	s.mu.Unlock()
	notify()

	if ttl <= 0 {
		return
	}
	time.AfterFunc(ttl, func() {
		s.mu.Lock()
		// A later notification owns the slot now; leave it alone.
		if s.notificationSeq != seq || s.notification == nil {
			s.mu.Unlock()
			return
		}
		s.notification = nil
		expire := s.notifyLocked()
		s.mu.Unlock()
		expire()
	})
}

// ClearNotification dismisses the active toast (explicit close or route
// change).
func (s *Store) ClearNotification() {
	s.mu.Lock()
	s.notification = nil
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()
}

// Notification returns the active toast, or nil.
func (s *Store) Notification() *Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.notification == nil {
		return nil
	}
	n := *s.notification
	return &n
}

// OpenModal selects a captured pokecat for detail display.
func (s *Store) OpenModal(c creature.Caught) {
	s.mu.Lock()
	s.selected = &c
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()
}

// CloseModal deselects the modal pokecat.
func (s *Store) CloseModal() {
	s.mu.Lock()
	s.selected = nil
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()
}
