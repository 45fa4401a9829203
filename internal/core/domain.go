package core

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	Food          Category = "food"
	Transport     Category = "transport"
	Shopping      Category = "shopping"
	Entertainment Category = "entertainment"
	Bills         Category = "bills"
	Other         Category = "other"
)

type (
	Category string

	// User is a registered account. Email is the natural key.
	User struct {
		Email        string    `json:"email"`
		UserName     string    `json:"userName"`
		PasswordHash string    `json:"passwordHash"`
		CreatedAt    time.Time `json:"createdAt"`
	}

	// Session is the single record naming the signed-in user, if any.
	Session struct {
		Email           string    `json:"email"`
		UserName        string    `json:"userName"`
		IsAuthenticated bool      `json:"isAuthenticated"`
		Timestamp       time.Time `json:"timestamp"`
	}

	// Transaction is one ledger entry. A positive amount is income, a negative one an expense.
	Transaction struct {
		ID       string          `json:"id"`
		UserID   string          `json:"userId"`
		Title    string          `json:"title"`
		Amount   decimal.Decimal `json:"amount"`
		Category Category        `json:"category"`
		Date     time.Time       `json:"date"`
	}

	// RegisterInput is the sign-up form as submitted by the caller.
	RegisterInput struct {
		UserName        string `json:"userName" validate:"required"`
		Email           string `json:"email" validate:"required,basic_email"`
		Password        string `json:"password" validate:"required,min=6"`
		ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	}

	// SignInInput is the sign-in form as submitted by the caller.
	SignInInput struct {
		Email    string `json:"email" validate:"required,basic_email"`
		Password string `json:"password" validate:"required"`
	}

	// TransactionInput carries the raw fields of a new transaction. Amount must
	// already carry its sign.
	TransactionInput struct {
		Title    string
		Amount   string
		Category Category
		Date     time.Time
	}
)

// Categories returns every category in display order.
func Categories() []Category {
	return []Category{Food, Transport, Shopping, Entertainment, Bills, Other}
}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	switch c {
	case Food, Transport, Shopping, Entertainment, Bills, Other:
		return true
	default:
		return false
	}
}

func (c Category) String() string {
	return string(c)
}

// IsIncome reports whether the transaction adds to the balance.
func (t Transaction) IsIncome() bool {
	return t.Amount.IsPositive()
}

// IsExpense reports whether the transaction subtracts from the balance.
func (t Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}

// SessionFor builds an authenticated session for u.
func SessionFor(u User, now time.Time) Session {
	return Session{
		Email:           u.Email,
		UserName:        u.UserName,
		IsAuthenticated: true,
		Timestamp:       now,
	}
}
