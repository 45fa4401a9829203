// Package identity keeps the registered users and the single current session.
package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"pocketledger/internal/core"
	"pocketledger/internal/kv"
	"pocketledger/internal/log"
)

// Options tunes a Repository. The zero value uses bcrypt.DefaultCost, the
// wall clock and a discarding logger.
type Options struct {
	Cost   int
	Now    func() time.Time
	Logger *log.Logger
}

// Repository registers users, signs them in and out, and reports the session.
type Repository struct {
	store    kv.Store
	writer   *kv.Writer
	validate *validator.Validate
	hasher   *hasher
	now      func() time.Time
	logger   *log.Logger
}

// NewRepository returns a Repository over store. writer must be shared with
// every other component writing to the same store.
func NewRepository(store kv.Store, writer *kv.Writer, opts Options) *Repository {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	return &Repository{
		store:    store,
		writer:   writer,
		validate: newValidator(),
		hasher:   newHasher(opts.Cost),
		now:      opts.Now,
		logger:   opts.Logger.WithComponent(log.ComponentIdentity),
	}
}

// Register validates in, appends a new user and makes it the current session.
// A taken email fails with *core.ConflictError and leaves the user list unchanged.
// When the session cannot be saved the user is removed again, so a retry with
// the same email can succeed.
func (r *Repository) Register(ctx context.Context, in core.RegisterInput) (core.User, error) {
	in.UserName = strings.TrimSpace(in.UserName)
	in.Email = strings.TrimSpace(in.Email)

	if err := validateForm(r.validate, in); err != nil {
		r.logger.WarnContext(ctx, "Registration rejected",
			log.FieldOperation, log.OpRegister,
			log.FieldErrorType, log.ErrorTypeValidation,
			log.FieldError, err)
		return core.User{}, err
	}

	hash, err := r.hasher.Hash(in.Password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		verr := core.NewValidationError()
		verr.Add("password", "must be at most 72 bytes")
		return core.User{}, verr
	}
	if err != nil {
		return core.User{}, err
	}

	user := core.User{
		Email:        in.Email,
		UserName:     in.UserName,
		PasswordHash: hash,
		CreatedAt:    r.now(),
	}

	err = kv.Update(ctx, r.writer, r.store, kv.KeyUsers, func(users []core.User, _ bool) ([]core.User, error) {
		if _, ok := findUser(users, user.Email); ok {
			return nil, &core.ConflictError{Field: "email", Value: user.Email}
		}
		return append(users, user), nil
	})
	if err != nil {
		var conflict *core.ConflictError
		if errors.As(err, &conflict) {
			r.logger.WarnContext(ctx, "Email already registered",
				log.FieldOperation, log.OpRegister,
				log.FieldErrorType, log.ErrorTypeConflict,
				log.FieldUserEmail, user.Email)
		}
		return core.User{}, err
	}

	if err := r.saveSession(ctx, core.SessionFor(user, r.now())); err != nil {
		r.withdraw(ctx, user)
		return core.User{}, err
	}

	r.logger.InfoContext(ctx, "User registered", log.NewFields().
		WithOperation(log.OpRegister).
		WithUser(user.Email, user.UserName).
		ToSlice()...)

	return public(user), nil
}

// SignIn checks the credentials and makes the matching user the current
// session. Unknown emails and wrong passwords both fail with
// core.ErrInvalidCredentials.
func (r *Repository) SignIn(ctx context.Context, email, password string) (core.Session, error) {
	form := core.SignInInput{Email: strings.TrimSpace(email), Password: password}
	if err := validateForm(r.validate, form); err != nil {
		return core.Session{}, err
	}

	users, _, err := kv.Load[[]core.User](ctx, r.store, kv.KeyUsers)
	if err != nil {
		return core.Session{}, err
	}

	user, ok := findUser(users, form.Email)
	if !ok {
		r.hasher.CompareDummy(form.Password)
		r.logRejected(ctx, form.Email)
		return core.Session{}, core.ErrInvalidCredentials
	}
	if !r.hasher.Compare(user.PasswordHash, form.Password) {
		r.logRejected(ctx, form.Email)
		return core.Session{}, core.ErrInvalidCredentials
	}

	session := core.SessionFor(user, r.now())
	if err := r.saveSession(ctx, session); err != nil {
		return core.Session{}, err
	}

	r.logger.InfoContext(ctx, "User signed in",
		log.FieldOperation, log.OpSignIn,
		log.FieldUserEmail, user.Email)
	return session, nil
}

// CurrentSession returns the stored session. The boolean is false when nobody
// is signed in.
func (r *Repository) CurrentSession(ctx context.Context) (core.Session, bool, error) {
	session, ok, err := kv.Load[core.Session](ctx, r.store, kv.KeySession)
	if err != nil || !ok || !session.IsAuthenticated {
		return core.Session{}, false, err
	}
	return session, true, nil
}

// SignOut clears the session. Signing out with no session is not an error.
func (r *Repository) SignOut(ctx context.Context) error {
	err := r.writer.Do(ctx, kv.KeySession, func() error {
		return kv.Delete(ctx, r.store, kv.KeySession)
	})
	if err != nil {
		return err
	}
	r.logger.InfoContext(ctx, "Signed out", log.FieldOperation, log.OpSignOut)
	return nil
}

// Lookup finds a registered user by email. The returned user carries no
// password hash.
func (r *Repository) Lookup(ctx context.Context, email string) (core.User, bool, error) {
	users, _, err := kv.Load[[]core.User](ctx, r.store, kv.KeyUsers)
	if err != nil {
		return core.User{}, false, err
	}
	user, ok := findUser(users, strings.TrimSpace(email))
	if !ok {
		return core.User{}, false, nil
	}
	return public(user), true, nil
}

func (r *Repository) saveSession(ctx context.Context, session core.Session) error {
	return r.writer.Do(ctx, kv.KeySession, func() error {
		return kv.Save(ctx, r.store, kv.KeySession, session)
	})
}

// withdraw drops a user whose registration could not be completed so the
// email stays free for a retry.
func (r *Repository) withdraw(ctx context.Context, user core.User) {
	err := kv.Update(ctx, r.writer, r.store, kv.KeyUsers, func(users []core.User, _ bool) ([]core.User, error) {
		for i, u := range users {
			if u.Email == user.Email && u.PasswordHash == user.PasswordHash {
				return append(users[:i:i], users[i+1:]...), nil
			}
		}
		return nil, kv.ErrNoChange
	})
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to withdraw incomplete registration",
			log.FieldOperation, log.OpRegister,
			log.FieldErrorType, log.ErrorTypeStorage,
			log.FieldUserEmail, user.Email,
			log.FieldError, err)
	}
}

func (r *Repository) logRejected(ctx context.Context, email string) {
	r.logger.InfoContext(ctx, "Sign-in rejected",
		log.FieldOperation, log.OpSignIn,
		log.FieldErrorType, log.ErrorTypeAuth,
		log.FieldUserEmail, email)
}

func findUser(users []core.User, email string) (core.User, bool) {
	for _, u := range users {
		if u.Email == email {
			return u, true
		}
	}
	return core.User{}, false
}

func public(u core.User) core.User {
	u.PasswordHash = ""
	return u
}
