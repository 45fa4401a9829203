package core

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestCategoryIsValid(t *testing.T) {
	for _, c := range Categories() {
		if !c.IsValid() {
			t.Fatalf("%s expected valid", c)
		}
	}
	for _, c := range []Category{"", "Food", "groceries"} {
		if c.IsValid() {
			t.Fatalf("%q expected invalid", c)
		}
	}
}

func TestTransactionDirection(t *testing.T) {
	income := Transaction{Amount: decimal.NewFromInt(5000)}
	expense := Transaction{Amount: decimal.NewFromInt(-120)}
	zero := Transaction{Amount: decimal.Zero}

	if !income.IsIncome() || income.IsExpense() {
		t.Fatalf("positive amount should be income")
	}
	if expense.IsIncome() || !expense.IsExpense() {
		t.Fatalf("negative amount should be expense")
	}
	if zero.IsIncome() || zero.IsExpense() {
		t.Fatalf("zero amount is neither income nor expense")
	}
}

func TestSessionFor(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	s := SessionFor(User{Email: "a@b.co", UserName: "Ann"}, now)
	if !s.IsAuthenticated || s.Email != "a@b.co" || s.UserName != "Ann" || !s.Timestamp.Equal(now) {
		t.Fatalf("unexpected session: %+v", s)
	}
}

func TestValidationError(t *testing.T) {
	verr := NewValidationError()
	if verr.OrNil() != nil {
		t.Fatalf("empty validation error should be nil")
	}
	verr.Add("password", "must be at least 6 characters")
	verr.Add("email", "is not a valid email")
	verr.Add("email", "second message is dropped")

	err := verr.OrNil()
	var target *ValidationError
	if !errors.As(err, &target) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if target.Fields["email"] != "is not a valid email" {
		t.Fatalf("first message should win, got %q", target.Fields["email"])
	}
	if !strings.HasPrefix(err.Error(), "validation failed: email") {
		t.Fatalf("fields should be sorted in message: %s", err)
	}
}

func TestStorageErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := error(&StorageError{Op: "set", Key: "users", Err: cause})
	if !errors.Is(err, cause) {
		t.Fatalf("StorageError should unwrap to its cause")
	}
}
