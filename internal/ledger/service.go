package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"housebudget/internal/core"
	"housebudget/internal/log"
	"housebudget/internal/month"
	"housebudget/internal/storage"
)

// EventPublisher announces ledger changes to other processes.
type EventPublisher interface {
	PublishLedgerChanged(ctx context.Context, revision int64, op, month string) error
	PublishAlertRaised(ctx context.Context, alert core.Alert) error
}

// Mutation turns one ledger into the next.
type Mutation func(l Ledger, env Env) (Ledger, error)

type Options struct {
	// Key is the record key, storage.DefaultLedgerKey when empty.
	Key       string
	Publisher EventPublisher
	Clock     func() time.Time
	NewID     func() string
	Logger    *log.Logger

	// RefreshInterval bounds how often Fresh checks the store. Zero turns
	// Fresh into Snapshot.
	RefreshInterval time.Duration
}

// Service holds the live ledger of one process. Mutations are serialized;
// readers get immutable snapshots without waiting on writers.
//
// Persistence is best effort: a failed save is logged and counted but the
// mutation still stands in memory.
type Service struct {
	mu            sync.Mutex
	store         storage.RecordStore
	key           string
	pub           EventPublisher
	now           func() time.Time
	newID         func() string
	logger        *log.Logger
	slog          *log.StructuredLogger
	current       atomic.Pointer[Ledger]
	storeRevision int64 // guarded by mu; -1 when the stored revision is unknown
	failures      atomic.Int64
	refreshEvery  time.Duration
	lastRefresh   atomic.Int64 // unix nanos of the last store check
}

func NewService(store storage.RecordStore, opts Options) *Service {
	if opts.Key == "" {
		opts.Key = storage.DefaultLedgerKey
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.NewID == nil {
		panic("ledger: Options.NewID is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	logger := opts.Logger.WithComponent(log.ComponentLedger)
	s := &Service{
		store:        store,
		key:          opts.Key,
		pub:          opts.Publisher,
		now:          opts.Clock,
		newID:        opts.NewID,
		logger:       logger,
		slog:         log.NewStructuredLogger(logger),
		refreshEvery: opts.RefreshInterval,
	}
	initial := Initial(s.now())
	s.current.Store(&initial)
	return s
}

// Open loads the stored ledger. A missing record starts a fresh ledger. Any
// other load failure is logged and the service starts empty without ever
// overwriting the stored record.
func (s *Service) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	l, rev, err := s.load(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.logger.InfoContext(ctx, "No stored ledger, starting fresh", log.FieldLedgerKey, s.key)
		l, rev = Initial(s.now()), 0
	case err != nil:
		s.slog.LogError(ctx, "Failed to load ledger", err, log.ComponentLedger, log.OpLoad,
			log.NewFields().WithErrorType(log.ErrorTypeDatabase))
		l, rev = Initial(s.now()), -1
	default:
		s.logger.InfoContext(ctx, "Ledger loaded",
			log.FieldLedgerKey, s.key,
			log.FieldRevision, l.Revision,
			log.FieldStoreRevision, rev)
	}
	s.current.Store(&l)
	s.storeRevision = rev
	s.lastRefresh.Store(s.now().UnixNano())
	return nil
}

// Reload replaces the snapshot with the stored ledger when the store holds a
// newer revision than the one this process last wrote or read. It reports
// whether the snapshot changed.
func (s *Service) Reload(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, rev, err := s.load(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if rev == s.storeRevision {
		return false, nil
	}
	s.current.Store(&l)
	s.storeRevision = rev
	return true, nil
}

func (s *Service) load(ctx context.Context) (Ledger, int64, error) {
	rec, err := s.store.Load(ctx, s.key)
	if err != nil {
		return Ledger{}, 0, err
	}
	l, err := Decode(rec.Payload, s.now())
	if err != nil {
		return Ledger{}, 0, err
	}
	return l, rec.Revision, nil
}

// Fresh is Snapshot after picking up writes made by other processes, such as
// the worker's rollover. The store is checked at most once per
// RefreshInterval; a failed check serves the snapshot already held.
func (s *Service) Fresh(ctx context.Context) Ledger {
	if s.refreshEvery <= 0 {
		return s.Snapshot()
	}
	now := s.now().UnixNano()
	last := s.lastRefresh.Load()
	if now-last < int64(s.refreshEvery) || !s.lastRefresh.CompareAndSwap(last, now) {
		return s.Snapshot()
	}
	changed, err := s.Reload(ctx)
	switch {
	case err != nil:
		s.logger.WarnContext(ctx, "Ledger refresh failed, serving held snapshot",
			log.FieldError, err, log.FieldLedgerKey, s.key)
	case changed:
		s.logger.InfoContext(ctx, "Ledger refreshed from store",
			log.FieldRevision, s.Snapshot().Revision)
	}
	return s.Snapshot()
}

// Snapshot returns the current ledger. Callers must not modify its slices.
func (s *Service) Snapshot() Ledger {
	return *s.current.Load()
}

// PersistFailures counts saves that did not reach the store.
func (s *Service) PersistFailures() int64 {
	return s.failures.Load()
}

// Apply runs m against the current ledger. On success the revision is
// bumped, alerts for the working month are raised, and the result is saved
// and announced. A save that loses an optimistic race is rebased: the stored
// ledger is reloaded and m runs again on top of it.
func (s *Service) Apply(ctx context.Context, op string, m Mutation) (Ledger, error) {
	next, raised, err := s.apply(ctx, op, m)
	if err != nil {
		return next, err
	}
	s.slog.LogMutation(ctx, op, next.Revision, len(raised))
	s.publish(ctx, op, next, raised)
	return next, nil
}

func (s *Service) apply(ctx context.Context, op string, m Mutation) (Ledger, []core.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Persisting must finish even if the caller goes away.
	ctx = context.WithoutCancel(ctx)

	cur := *s.current.Load()
	next, raised, err := s.derive(cur, m)
	if err != nil {
		s.slog.LogRejected(ctx, op, err, ErrorType(err))
		return cur, nil, err
	}

	err = s.save(ctx, next)
	if errors.Is(err, storage.ErrStaleRevision) {
		s.logger.WarnContext(ctx, "Ledger changed in the store, rebasing",
			log.FieldOperation, op,
			log.FieldStoreRevision, s.storeRevision)
		fresh, rev, lerr := s.load(ctx)
		if lerr != nil {
			err = fmt.Errorf("reload after conflict: %w", lerr)
		} else {
			s.storeRevision = rev
			if next, raised, err = s.derive(fresh, m); err != nil {
				s.current.Store(&fresh)
				s.slog.LogRejected(ctx, op, err, ErrorType(err))
				return fresh, nil, err
			}
			err = s.save(ctx, next)
		}
	}
	if err != nil {
		s.failures.Add(1)
		s.slog.LogError(ctx, "Failed to persist ledger", err, log.ComponentLedger, log.OpPersist,
			log.NewFields().WithRevision(next.Revision).WithErrorType(persistErrorType(err)))
	}

	s.current.Store(&next)
	return next, raised, nil
}

func (s *Service) derive(cur Ledger, m Mutation) (Ledger, []core.Alert, error) {
	env := Env{Now: s.now(), NewID: s.newID}
	next, err := m(cur, env)
	if err != nil {
		return cur, nil, err
	}
	next.Revision = cur.Revision + 1

	var raised []core.Alert
	if next.OnboardingCompleted {
		next, raised = AddAlerts(next, env, next.PendingAlerts(s.workingMonth(next)))
	}
	return next, raised, nil
}

func (s *Service) workingMonth(l Ledger) string {
	if month.Validate(l.CurrentMonth) == nil {
		return l.CurrentMonth
	}
	return month.Current(s.now())
}

func (s *Service) save(ctx context.Context, l Ledger) error {
	if s.storeRevision < 0 {
		return errors.New("stored revision unknown, refusing to overwrite")
	}
	data, err := Encode(l)
	if err != nil {
		return err
	}
	rev, err := s.store.Save(ctx, s.key, data, s.storeRevision)
	if err != nil {
		return err
	}
	s.storeRevision = rev
	return nil
}

func persistErrorType(err error) string {
	if errors.Is(err, storage.ErrStaleRevision) {
		return log.ErrorTypeConflict
	}
	return log.ErrorTypeDatabase
}

func (s *Service) publish(ctx context.Context, op string, l Ledger, raised []core.Alert) {
	if s.pub == nil {
		return
	}
	if err := s.pub.PublishLedgerChanged(ctx, l.Revision, op, l.CurrentMonth); err != nil {
		s.slog.LogError(ctx, "Failed to publish ledger change", err, log.ComponentLedger, log.OpPublish,
			log.NewFields().WithRevision(l.Revision).WithErrorType(log.ErrorTypeNetwork))
	}
	for _, a := range raised {
		if err := s.pub.PublishAlertRaised(ctx, a); err != nil {
			s.slog.LogError(ctx, "Failed to publish alert", err, log.ComponentLedger, log.OpPublish,
				log.NewFields().WithErrorType(log.ErrorTypeNetwork))
		}
	}
}
