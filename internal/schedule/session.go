package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/hwang1401/travel-planner/internal/domain"
)

// ErrNothingToUndo is returned by Undo when the undo stack is empty.
var ErrNothingToUndo = errors.New("nothing to undo")

// DefaultUndoExpiry is how long an undo stays available after the last
// destructive edit.
const DefaultUndoExpiry = 10 * time.Second

// NoticeKind classifies a non-fatal condition reported by a Session.
type NoticeKind string

const (
	NoticeLoadFailed      NoticeKind = "load_failed"
	NoticeSubscribeFailed NoticeKind = "subscribe_failed"
	NoticeSaveFailed      NoticeKind = "save_failed"
	NoticeUndoAvailable   NoticeKind = "undo_available"
	NoticeUndoExpired     NoticeKind = "undo_expired"
)

// Notice is a transient, non-fatal condition for the user interface.
type Notice struct {
	Kind NoticeKind
	Err  error
}

// Option configures a Session.
type Option func(*Session)

// WithClientID sets the identity stamped on this client's writes.
// By default a session mints a fresh ULID.
func WithClientID(id string) Option {
	return func(s *Session) { s.clientID = id }
}

// WithLogger sets the session logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Session) { s.log = log }
}

// WithDebounce sets the coalescing window for freeform edits.
func WithDebounce(d time.Duration) Option {
	return func(s *Session) { s.debounceDelay = d }
}

// WithClearDelay sets how long dirty state outlives a completed save.
func WithClearDelay(d time.Duration) Option {
	return func(s *Session) { s.clearDelay = d }
}

// WithUndoExpiry sets how long an undo stays available.
func WithUndoExpiry(d time.Duration) Option {
	return func(s *Session) { s.undoExpiry = d }
}

// WithNoticeHandler registers a callback for non-fatal notices.
func WithNoticeHandler(fn func(Notice)) Option {
	return func(s *Session) { s.onNotice = fn }
}

// WithChangeHandler registers a callback invoked with the new document after
// every accepted remote change.
func WithChangeHandler(fn func(domain.Document)) Option {
	return func(s *Session) { s.onChange = fn }
}

// Session is the client-side state for one open trip: the optimistic local
// document, dirty tracking, version guard, undo stack and the persistence
// paths. Sessions share nothing, so several trips can be open in one process.
//
// A Session is safe for concurrent use. Store calls are made without holding
// the state lock, and saves are serialized.
type Session struct {
	store    domain.Store
	tripID   uuid.UUID
	clientID string
	log      *slog.Logger
	onNotice func(Notice)
	onChange func(domain.Document)

	debounceDelay time.Duration
	clearDelay    time.Duration
	undoExpiry    time.Duration

	saveMu sync.Mutex

	mu          sync.Mutex
	doc         domain.Document
	opened      bool
	opening     bool // an Open is loading and subscribing
	guard       *VersionGuard
	dirty       *Tracker
	undo        *UndoStack
	unsubscribe func()

	debounce   *Debouncer
	undoExpire *Debouncer
}

// NewSession returns an unopened session for tripID backed by store.
func NewSession(store domain.Store, tripID uuid.UUID, opts ...Option) *Session {
	s := &Session{
		store:         store,
		tripID:        tripID,
		clientID:      ulid.Make().String(),
		log:           slog.Default(),
		debounceDelay: DefaultDebounce,
		clearDelay:    DefaultClearDelay,
		undoExpiry:    DefaultUndoExpiry,
		undo:          NewUndoStack(DefaultUndoDepth),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("trip_id", tripID.String(), "client_id", s.clientID)
	s.guard = NewVersionGuard(s.clientID)
	s.dirty = NewTracker(s.clearDelay)
	s.debounce = NewDebouncer(s.debounceDelay, s.flushDebounced)
	s.undoExpire = NewDebouncer(s.undoExpiry, s.expireUndo)
	return s
}

// ClientID returns the identity stamped on this session's writes.
func (s *Session) ClientID() string { return s.clientID }

// TripID returns the trip this session edits.
func (s *Session) TripID() uuid.UUID { return s.tripID }

// Open loads the trip and subscribes to its change notifications.
//
// A failed load falls back to an empty document and a failed subscribe
// leaves the session without remote updates; both are reported as notices
// and the session stays usable.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.opened || s.opening {
		s.mu.Unlock()
		return fmt.Errorf("schedule.Session.Open: already open")
	}
	s.opening = true
	s.mu.Unlock()

	snap, err := s.store.Load(ctx, s.tripID)
	migrated := false
	if err != nil {
		s.log.Warn("load failed, starting from an empty schedule", "error", err)
		s.notify(Notice{Kind: NoticeLoadFailed, Err: err})
		snap = domain.Snapshot{}
	} else {
		normalized := Normalize(snap.Data)
		migrated = !reflect.DeepEqual(normalized, snap.Data)
		snap.Data = normalized
	}

	s.mu.Lock()
	s.doc = snap.Data
	s.guard.Seed(snap.Version)
	s.opened = true
	s.opening = false
	s.mu.Unlock()
	s.log.Info("schedule opened", "version", snap.Version, "days", snap.Data.TotalDays())

	unsubscribe, err := s.store.Subscribe(ctx, s.tripID, s.Ingest)
	if err != nil {
		s.log.Warn("subscribe failed, remote changes will not be received", "error", err)
		s.notify(Notice{Kind: NoticeSubscribeFailed, Err: err})
	} else {
		s.mu.Lock()
		s.unsubscribe = unsubscribe
		s.mu.Unlock()
	}

	if migrated {
		// Persist identifiers assigned to legacy items.
		s.debounce.Trigger()
	}
	return nil
}

// Close flushes a pending debounced write, then stops receiving remote
// changes and cancels every timer.
func (s *Session) Close(ctx context.Context) error {
	err := s.Flush(ctx)

	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.opened = false
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	s.debounce.Cancel()
	s.undoExpire.Cancel()
	s.dirty.Stop()
	return err
}

// Document returns the current local document.
func (s *Session) Document() domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Render returns the current local document expanded for display.
func (s *Session) Render() []RenderedDay {
	return Render(s.Document())
}

// Versions returns the highest accepted remote version and the highest
// version minted for this session's own saves.
func (s *Session) Versions() (lastReceived, lastSaved int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.guard.LastReceived(), s.guard.LastSaved()
}

// Dirty returns the days and metadata flag awaiting a confirmed save.
func (s *Session) Dirty() (DaySet, bool) {
	days, meta, _ := s.dirty.State()
	return days, meta
}

// UndoAvailable reports whether Undo would restore a snapshot.
func (s *Session) UndoAvailable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.undo.Len() > 0
}

// Ingest handles one change notification: it drops self-originated and
// stale versions, normalizes the payload and merges it with local state.
func (s *Session) Ingest(n domain.Notification) {
	s.mu.Lock()
	if !s.opened {
		s.mu.Unlock()
		return
	}
	verdict := s.guard.Check(n)
	if verdict != Accepted {
		s.mu.Unlock()
		s.log.Debug("notification dropped", "version", n.Version, "updated_by", n.UpdatedBy, "reason", verdict.String())
		return
	}
	days, meta, _ := s.dirty.State()
	merged := Merge(s.doc, Normalize(n.Data), days, meta)
	s.doc = merged
	s.mu.Unlock()

	s.log.Debug("notification merged", "version", n.Version, "updated_by", n.UpdatedBy,
		"dirty_days", len(days), "dirty_meta", meta)
	if s.onChange != nil {
		s.onChange(merged)
	}
}

// editMode selects the persistence path of an edit.
type editMode int

const (
	freeform editMode = iota
	structural
	destructive
)

// apply runs an edit against the current document, marks what it touched
// and persists it through the path its mode selects.
func (s *Session) apply(ctx context.Context, mode editMode, edit func(domain.Document) (Edit, error)) error {
	s.mu.Lock()
	if !s.opened {
		s.mu.Unlock()
		return domain.ErrUnavailable
	}
	prev := s.doc
	e, err := edit(prev)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if mode == destructive {
		s.undo.Push(prev)
	}
	for _, day := range e.Days {
		s.dirty.MarkDay(day)
	}
	if e.Meta {
		s.dirty.MarkMeta()
	}
	s.dirty.Observe(prev, e.Doc)
	s.doc = e.Doc
	s.mu.Unlock()

	if mode == destructive {
		s.undoExpire.Trigger()
		s.notify(Notice{Kind: NoticeUndoAvailable})
	}
	if mode == freeform {
		s.debounce.Trigger()
		return nil
	}
	return s.SaveNow(ctx)
}

// SaveNow cancels any pending debounced write and saves the current
// document immediately.
func (s *Session) SaveNow(ctx context.Context) error {
	s.debounce.Cancel()
	return s.save(ctx)
}

// Flush saves immediately if a debounced write is pending.
func (s *Session) Flush(ctx context.Context) error {
	if !s.debounce.Cancel() {
		return nil
	}
	return s.save(ctx)
}

func (s *Session) flushDebounced() {
	if err := s.save(context.Background()); err != nil {
		s.log.Debug("debounced save failed", "error", err)
	}
}

// save sends the full current document. On success the minted version is
// recorded and the dirty state is scheduled to clear. On failure local
// state is kept as is, so the next save carries the edit again.
func (s *Session) save(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if !s.opened {
		s.mu.Unlock()
		return domain.ErrUnavailable
	}
	doc := s.doc
	s.mu.Unlock()

	version, err := s.store.Save(ctx, s.tripID, s.clientID, doc)
	if err != nil {
		s.log.Warn("save failed, keeping local changes", "error", err)
		s.notify(Notice{Kind: NoticeSaveFailed, Err: err})
		return fmt.Errorf("schedule.Session.save: %w", err)
	}

	s.mu.Lock()
	s.guard.RecordSaved(version)
	s.mu.Unlock()
	s.dirty.ScheduleClear(s.dirty.Generation())
	s.log.Debug("schedule saved", "version", version)
	return nil
}

func (s *Session) expireUndo() {
	s.mu.Lock()
	had := s.undo.Len() > 0
	s.undo.Clear()
	s.mu.Unlock()
	if had {
		s.notify(Notice{Kind: NoticeUndoExpired})
	}
}

func (s *Session) notify(n Notice) {
	if s.onNotice != nil {
		s.onNotice(n)
	}
}
