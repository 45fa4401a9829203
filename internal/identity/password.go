package identity

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// hasher hashes and verifies passwords with bcrypt.
type hasher struct {
	cost      int
	dummyOnce sync.Once
	dummy     []byte
}

func newHasher(cost int) *hasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &hasher{cost: cost}
}

// Hash returns a salted bcrypt hash of plain.
func (h *hasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare reports whether plain matches hash.
func (h *hasher) Compare(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// CompareDummy spends the same work as Compare against a hash nobody owns, so
// an unknown email costs as much as a wrong password.
func (h *hasher) CompareDummy(plain string) {
	h.dummyOnce.Do(func() {
		h.dummy, _ = bcrypt.GenerateFromPassword([]byte("pocketledger-dummy"), h.cost)
	})
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(plain))
}
