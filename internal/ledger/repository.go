// Package ledger stores every user's transactions as one flat list and scopes
// each read and delete to the owning user.
package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"pocketledger/internal/core"
	"pocketledger/internal/kv"
	"pocketledger/internal/log"
)

// Options tunes a Repository. Zero values fall back to the wall clock, UUIDv7
// ids and a discarding logger.
type Options struct {
	Now    func() time.Time
	NewID  func() (string, error)
	Logger *log.Logger
}

type Repository struct {
	store  kv.Store
	writer *kv.Writer
	now    func() time.Time
	newID  func() (string, error)
	logger *log.Logger
}

func NewRepository(store kv.Store, writer *kv.Writer, opts Options) *Repository {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = newV7
	}
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	return &Repository{
		store:  store,
		writer: writer,
		now:    opts.Now,
		newID:  opts.NewID,
		logger: opts.Logger.WithComponent(log.ComponentLedger),
	}
}

func newV7() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// List returns userID's transactions in the order they were added.
func (r *Repository) List(ctx context.Context, userID string) ([]core.Transaction, error) {
	all, _, err := kv.Load[[]core.Transaction](ctx, r.store, kv.KeyTransactions)
	if err != nil {
		return nil, err
	}
	return ownedBy(all, userID), nil
}

// Add validates in, assigns a fresh id and appends the transaction for userID.
func (r *Repository) Add(ctx context.Context, userID string, in core.TransactionInput) (core.Transaction, error) {
	if userID == "" {
		return core.Transaction{}, core.ErrNotSignedIn
	}

	tx, err := r.build(userID, in)
	if err != nil {
		r.logger.WarnContext(ctx, "Transaction rejected",
			log.FieldOperation, log.OpAppend,
			log.FieldErrorType, log.ErrorTypeValidation,
			log.FieldError, err)
		return core.Transaction{}, err
	}

	err = kv.Update(ctx, r.writer, r.store, kv.KeyTransactions, func(all []core.Transaction, _ bool) ([]core.Transaction, error) {
		return append(all, tx), nil
	})
	if err != nil {
		return core.Transaction{}, err
	}

	log.NewStructuredLogger(r.logger).LogTransactionAdded(ctx, userID, tx.ID, tx.Title, tx.Amount.String(), tx.Category.String())
	return tx, nil
}

// Remove deletes the transaction with id when userID owns it. It reports
// whether anything was removed; an absent or foreign id is not an error.
func (r *Repository) Remove(ctx context.Context, userID, id string) (bool, error) {
	removed := false
	err := kv.Update(ctx, r.writer, r.store, kv.KeyTransactions, func(all []core.Transaction, _ bool) ([]core.Transaction, error) {
		for i, tx := range all {
			if tx.ID == id && tx.UserID == userID {
				removed = true
				return append(all[:i:i], all[i+1:]...), nil
			}
		}
		return nil, kv.ErrNoChange
	})
	if err != nil {
		return false, err
	}

	r.logger.InfoContext(ctx, "Transaction remove",
		log.FieldOperation, log.OpRemove,
		log.FieldUserEmail, userID,
		log.FieldTxID, id,
		log.FieldRemoved, removed)
	return removed, nil
}

func (r *Repository) build(userID string, in core.TransactionInput) (core.Transaction, error) {
	verr := core.NewValidationError()

	title := strings.TrimSpace(in.Title)
	if title == "" {
		verr.Add("title", "is required")
	}

	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		if strings.TrimSpace(in.Amount) == "" {
			verr.Add("amount", "is required")
		} else {
			verr.Add("amount", "must be a number")
		}
	}

	category := in.Category
	if category == "" {
		category = core.Other
	}
	if !category.IsValid() {
		verr.Add("category", "must be one of food, transport, shopping, entertainment, bills, other")
	}

	if err := verr.OrNil(); err != nil {
		return core.Transaction{}, err
	}

	date := in.Date
	if date.IsZero() {
		date = r.now()
	}

	id, err := r.newID()
	if err != nil {
		return core.Transaction{}, err
	}

	return core.Transaction{
		ID:       id,
		UserID:   userID,
		Title:    title,
		Amount:   amount,
		Category: category,
		Date:     date,
	}, nil
}

func ownedBy(all []core.Transaction, userID string) []core.Transaction {
	out := make([]core.Transaction, 0, len(all))
	for _, tx := range all {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out
}
