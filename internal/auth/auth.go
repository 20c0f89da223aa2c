package auth

import (
	"context"
	"errors"
	"regexp"

	"github.com/phuslu/log"

	"fastnu.dev/pointportal/internal/store"
)

var studentIDPattern = regexp.MustCompile(`^K\d{6}$`)

// IsValidStudentID reports whether s is the letter K followed by exactly six
// decimal digits.
func IsValidStudentID(s string) bool {
	return studentIDPattern.MatchString(s)
}

type Verifier struct {
	store store.PrincipalStore
	log   log.Logger
}

func NewVerifier(st store.PrincipalStore) *Verifier {
	v := &Verifier{}
	v.store = st
	v.log = log.DefaultLogger
	v.log.Context = log.NewContext(nil).Str("module", "auth").Value()
	return v
}

// Verify checks the identifier shape for students, then resolves
// identifier+secret against the store with a single parameterized lookup.
// The secret is never logged; on success the full matched record is returned
// unfiltered, the caller decides what to retain.
func (v *Verifier) Verify(ctx context.Context, role, identifier, secret string) (*store.Principal, error) {
	if role == store.RoleStudent && !IsValidStudentID(identifier) {
		return nil, ErrBadFormat
	}
	p, err := v.store.LookupPrincipal(ctx, role, identifier, secret)
	if err != nil {
		if errors.Is(err, store.ErrNoMatch) {
			return nil, ErrInvalidCredentials
		}
		v.log.Error().Err(err).Str("role", role).Msg("credential lookup failed")
		return nil, ErrStoreUnavailable
	}
	return p, nil
}
