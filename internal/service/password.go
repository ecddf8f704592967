package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher salts and hashes passwords with bcrypt after an HMAC-SHA256
// pepper. bcrypt is CPU bound, so work runs on its own goroutine and callers
// stop waiting as soon as ctx is done.
type PasswordHasher struct {
	pepper string
	cost   int

	dummyOnce sync.Once
	dummyHash string
}

// NewPasswordHasher creates a hasher. A cost of 0 selects bcrypt.DefaultCost.
func NewPasswordHasher(pepper string, cost int) *PasswordHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{pepper: pepper, cost: cost}
}

// applyPepper applies HMAC-SHA256 using the pepper as the key.
// The digest is always 32 bytes, which keeps input under bcrypt's 72-byte limit.
func applyPepper(password, pepper string) []byte {
	h := hmac.New(sha256.New, []byte(pepper))
	h.Write([]byte(password))
	return h.Sum(nil)
}

type hashResult struct {
	hash string
	err  error
}

// Hash returns the bcrypt hash of password.
func (p *PasswordHasher) Hash(ctx context.Context, password string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	done := make(chan hashResult, 1)
	go func() {
		bytes, err := bcrypt.GenerateFromPassword(applyPepper(password, p.pepper), p.cost)
		done <- hashResult{hash: string(bytes), err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		if res.err != nil {
			return "", fmt.Errorf("failed to hash password: %w", res.err)
		}
		return res.hash, nil
	}
}

// Compare reports whether password matches hash. A mismatch or an unparsable
// hash is (false, nil); only cancellation produces an error.
func (p *PasswordHasher) Compare(ctx context.Context, hash, password string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	done := make(chan error, 1)
	go func() {
		done <- bcrypt.CompareHashAndPassword([]byte(hash), applyPepper(password, p.pepper))
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case err := <-done:
		// Corrupt hashes count as a mismatch so login failures stay uniform.
		return err == nil, nil
	}
}

// CompareDummy runs a comparison against a throwaway hash of the same cost and
// always reports false. Login calls it for unknown accounts so they take as
// long as a wrong password.
func (p *PasswordHasher) CompareDummy(ctx context.Context, password string) (bool, error) {
	p.dummyOnce.Do(func() {
		bytes, err := bcrypt.GenerateFromPassword(applyPepper("focus-unknown-account", p.pepper), p.cost)
		if err == nil {
			p.dummyHash = string(bytes)
		}
	})
	if _, err := p.Compare(ctx, p.dummyHash, password); err != nil {
		return false, err
	}
	return false, nil
}
