// Package verify implements the role + credential challenge gating every
// sign-off transition. The gate is stateless and mutates nothing; a failed
// check is an operator-facing "invalid credentials", never a system error.
package verify

import (
	"crypto/subtle"
	"errors"

	"github.com/stitchline/stitchline/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrFailed is the operator-facing "invalid credentials" outcome wrapped by
// lifecycle operations when a required sign-off does not verify. It is a
// correct-your-input error, never logged as a system fault.
var ErrFailed = errors.New("verify: invalid credentials")

// CredentialVerifier compares a stored credential against one presented at
// the terminal. Implementations decide the storage format; call sites never
// see the difference.
type CredentialVerifier interface {
	Match(stored, presented string) bool
}

// Plain compares credentials as stored, for registries that still hold
// cleartext. Constant-time to avoid leaking prefix length.
type Plain struct{}

// Match reports whether the presented credential equals the stored one.
func (Plain) Match(stored, presented string) bool {
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}

// Hashed compares a presented credential against a stored bcrypt hash.
type Hashed struct{}

// Match reports whether presented hashes to the stored bcrypt digest.
func (Hashed) Match(stored, presented string) bool {
	if stored == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(presented)) == nil
}

// HashCredential produces a bcrypt hash suitable for the Hashed verifier,
// used when seeding personnel.
func HashCredential(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// ForMode returns the verifier for a config verify.mode value. Unknown
// modes get the hashed verifier; it fails closed on non-hash credentials.
func ForMode(mode string) CredentialVerifier {
	if mode == "plain" {
		return Plain{}
	}
	return Hashed{}
}

// Gate looks up personnel and checks role and credential together.
type Gate struct {
	db   *gorm.DB
	cred CredentialVerifier
}

// NewGate creates a verification gate over the personnel directory.
func NewGate(db *gorm.DB, cred CredentialVerifier) *Gate {
	return &Gate{db: db, cred: cred}
}

// Verify reports whether an active person with the given business employee
// number holds the required role and presented the right credential. Role
// and credential are both independently necessary. Lookup misses and store
// errors alike report false: the operator retries, nothing else changes.
func (g *Gate) Verify(role, employeeNo, credential string) bool {
	if role == "" || employeeNo == "" || credential == "" {
		return false
	}
	var person models.Personnel
	err := g.db.
		Where("employee_no = ? AND role = ? AND active = ? AND credential != ?", employeeNo, role, true, "").
		First(&person).Error
	if err != nil {
		return false
	}
	return g.cred.Match(person.Credential, credential)
}
