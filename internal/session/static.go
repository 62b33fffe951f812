package session

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/edufiliova/navigator/model"
)

// StaticChecker answers from fixed data. It backs local development and
// tests. Tokens listed in Tokens get their mapped state; any other non-empty
// token is authenticated with Role.
type StaticChecker struct {
	Role   model.Role
	Tokens map[string]AuthState
	// Err, when set, is returned for every non-empty token.
	Err error
	// Delay holds each check until it elapses or ctx is done.
	Delay time.Duration

	calls atomic.Int64
}

// Check implements AuthChecker.
func (s *StaticChecker) Check(ctx context.Context, token string) (AuthState, error) {
	s.calls.Add(1)
	if token == "" {
		return AuthState{}, nil
	}
	if s.Delay > 0 {
		timer := time.NewTimer(s.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return AuthState{}, ctx.Err()
		}
	}
	if s.Err != nil {
		return AuthState{}, s.Err
	}
	if st, ok := s.Tokens[token]; ok {
		return st, nil
	}
	return AuthState{Authenticated: true, Role: s.Role, SubjectID: token}, nil
}

// Calls returns how many checks have been made.
func (s *StaticChecker) Calls() int64 {
	return s.calls.Load()
}
