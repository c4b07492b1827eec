package session

import "errors"

// Kind enumerates every way an authentication or registration step can be
// refused. Each kind has exactly one client-facing message.
type Kind int

const (
	KindMissingToken Kind = iota + 1
	KindTokenExpiredOrInvalid
	KindInvalidCredentials
	KindUserNotFound
	KindNotVerified
	KindDuplicateEmail
	KindPasswordMismatch
	KindInvalidRefreshState
)

func (k Kind) String() string {
	switch k {
	case KindMissingToken:
		return "missing_token"
	case KindTokenExpiredOrInvalid:
		return "token_expired_or_invalid"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindUserNotFound:
		return "user_not_found"
	case KindNotVerified:
		return "not_verified"
	case KindDuplicateEmail:
		return "duplicate_email"
	case KindPasswordMismatch:
		return "password_mismatch"
	case KindInvalidRefreshState:
		return "invalid_refresh_state"
	default:
		return "unknown"
	}
}

// Message is the text returned to clients.
func (k Kind) Message() string {
	switch k {
	case KindMissingToken:
		return "You are not logged in"
	case KindTokenExpiredOrInvalid:
		return "Token is invalid or has expired"
	case KindInvalidCredentials:
		return "Incorrect email or password"
	case KindUserNotFound:
		return "The user belonging to this token no longer exists"
	case KindNotVerified:
		return "Please verify your account"
	case KindDuplicateEmail:
		return "Account already exists"
	case KindPasswordMismatch:
		return "Passwords do not match"
	case KindInvalidRefreshState:
		return "Could not refresh access token"
	default:
		return "Authentication failed"
	}
}

// Error is a refused session operation. Err, when set, is the underlying
// cause and is never shown to clients.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.Message() + ": " + e.Err.Error()
	}
	return e.Kind.Message()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotVerified)
// works regardless of the wrapped cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrMissingToken          = &Error{Kind: KindMissingToken}
	ErrTokenExpiredOrInvalid = &Error{Kind: KindTokenExpiredOrInvalid}
	ErrInvalidCredentials    = &Error{Kind: KindInvalidCredentials}
	ErrUserNotFound          = &Error{Kind: KindUserNotFound}
	ErrNotVerified           = &Error{Kind: KindNotVerified}
	ErrDuplicateEmail        = &Error{Kind: KindDuplicateEmail}
	ErrPasswordMismatch      = &Error{Kind: KindPasswordMismatch}
	ErrInvalidRefreshState   = &Error{Kind: KindInvalidRefreshState}
)

func newError(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Err: cause}
}

// KindOf extracts the kind from err. ok is false for errors that are not
// session errors, e.g. storage failures.
func KindOf(err error) (kind Kind, ok bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
