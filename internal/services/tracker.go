package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pocketledger/internal/aggregate"
	"pocketledger/internal/core"
	"pocketledger/internal/identity"
	"pocketledger/internal/ledger"
	"pocketledger/internal/log"
)

// TrackerOptions tunes a Tracker. Zero values use time.Local, the wall clock
// and a discarding logger.
type TrackerOptions struct {
	Location *time.Location
	Now      func() time.Time
	Logger   *log.Logger
}

// Tracker holds the signed-in session and routes every user-facing operation
// to the identity and ledger repositories. Ledger operations act on the
// session's user only.
type Tracker struct {
	users  *identity.Repository
	ledger *ledger.Repository
	loc    *time.Location
	now    func() time.Time
	logger *log.Logger

	mu      sync.RWMutex
	session *core.Session
}

func NewTracker(users *identity.Repository, txs *ledger.Repository, opts TrackerOptions) *Tracker {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	return &Tracker{
		users:  users,
		ledger: txs,
		loc:    opts.Location,
		now:    opts.Now,
		logger: opts.Logger.WithComponent(log.ComponentTracker),
	}
}

// Restore picks up the session persisted by an earlier run. A session whose
// user no longer exists is discarded.
func (t *Tracker) Restore(ctx context.Context) (core.Session, bool, error) {
	session, ok, err := t.users.CurrentSession(ctx)
	if err != nil {
		return core.Session{}, false, fmt.Errorf("restore session: %w", err)
	}
	if !ok {
		t.setSession(nil)
		return core.Session{}, false, nil
	}

	_, exists, err := t.users.Lookup(ctx, session.Email)
	if err != nil {
		return core.Session{}, false, fmt.Errorf("restore session: %w", err)
	}
	if !exists {
		t.logger.WarnContext(ctx, "Discarding session of unknown user",
			log.FieldOperation, log.OpRestore,
			log.FieldUserEmail, session.Email)
		if err := t.users.SignOut(ctx); err != nil {
			return core.Session{}, false, fmt.Errorf("discard dangling session: %w", err)
		}
		t.setSession(nil)
		return core.Session{}, false, nil
	}

	t.setSession(&session)
	return session, true, nil
}

// Register creates the account and signs it in.
func (t *Tracker) Register(ctx context.Context, in core.RegisterInput) (core.User, error) {
	user, err := t.users.Register(ctx, in)
	if err != nil {
		return core.User{}, fmt.Errorf("register: %w", err)
	}

	session, ok, err := t.users.CurrentSession(ctx)
	if err != nil || !ok {
		session = core.SessionFor(user, t.now())
	}
	t.setSession(&session)
	return user, nil
}

func (t *Tracker) SignIn(ctx context.Context, email, password string) (core.Session, error) {
	session, err := t.users.SignIn(ctx, email, password)
	if err != nil {
		return core.Session{}, fmt.Errorf("sign in: %w", err)
	}
	t.setSession(&session)
	return session, nil
}

// SignOut clears the session, persisted and in memory. It is idempotent.
func (t *Tracker) SignOut(ctx context.Context) error {
	if err := t.users.SignOut(ctx); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	t.setSession(nil)
	return nil
}

// Current returns the session held by the tracker.
func (t *Tracker) Current() (core.Session, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.session == nil {
		return core.Session{}, false
	}
	return *t.session, true
}

func (t *Tracker) Transactions(ctx context.Context) ([]core.Transaction, error) {
	userID, err := t.userID()
	if err != nil {
		return nil, err
	}
	txs, err := t.ledger.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func (t *Tracker) AddTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	userID, err := t.userID()
	if err != nil {
		return core.Transaction{}, err
	}
	tx, err := t.ledger.Add(ctx, userID, in)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}
	return tx, nil
}

// RemoveTransaction deletes one of the signed-in user's transactions and
// reports whether it existed.
func (t *Tracker) RemoveTransaction(ctx context.Context, id string) (bool, error) {
	userID, err := t.userID()
	if err != nil {
		return false, err
	}
	removed, err := t.ledger.Remove(ctx, userID, id)
	if err != nil {
		return false, fmt.Errorf("remove transaction: %w", err)
	}
	return removed, nil
}

// Dashboard summarizes the signed-in user's ledger as of now.
func (t *Tracker) Dashboard(ctx context.Context) (core.Summary, error) {
	txs, err := t.Transactions(ctx)
	if err != nil {
		return core.Summary{}, err
	}
	return aggregate.Summarize(txs, t.now(), t.loc), nil
}

func (t *Tracker) userID() (string, error) {
	session, ok := t.Current()
	if !ok {
		return "", core.ErrNotSignedIn
	}
	return session.Email, nil
}

func (t *Tracker) setSession(s *core.Session) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.session = s
}
