package session

import (
	"context"
	"errors"
)

// Role names as persisted on the users table and carried in JWT claims.
const (
	RoleOwner    = "owner"
	RoleEmployee = "employee"
)

// Session describes the authenticated caller. It is built once by the auth
// middleware (or by the auth service at login) and injected into the request
// context; everything below the HTTP layer reads identity and organization
// scope from here instead of ambient globals.
type Session struct {
	UserID         uint
	OrganizationID uint
	Role           string
	Name           string
	Email          string
}

// IsOwner reports whether the session belongs to an owner account.
func (s *Session) IsOwner() bool {
	return s != nil && s.Role == RoleOwner
}

type contextKey int

const (
	sessionKey contextKey = iota
	requestIDKey
)

// ErrNoSessionInContext is returned when no session is found in context.
var ErrNoSessionInContext = errors.New("no session found in context")

// ErrNoRequestIDInContext is returned when no request ID is found in context.
var ErrNoRequestIDInContext = errors.New("no request ID found in context")

// WithSession attaches an authenticated session to the context.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// FromContext extracts the session from the context.
func FromContext(ctx context.Context) (*Session, error) {
	s, ok := ctx.Value(sessionKey).(*Session)
	if !ok || s == nil {
		return nil, ErrNoSessionInContext
	}
	return s, nil
}

// OrganizationFromContext extracts the organization scope from the context.
func OrganizationFromContext(ctx context.Context) (uint, error) {
	s, err := FromContext(ctx)
	if err != nil {
		return 0, err
	}
	if s.OrganizationID == 0 {
		return 0, ErrNoSessionInContext
	}
	return s.OrganizationID, nil
}

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// FromRequestIDContext extracts the request ID from the context.
func FromRequestIDContext(ctx context.Context) (string, error) {
	requestID, ok := ctx.Value(requestIDKey).(string)
	if !ok || requestID == "" {
		return "", ErrNoRequestIDInContext
	}
	return requestID, nil
}
