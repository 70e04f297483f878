package session

import "errors"

// Fallback messages shown when the backend gives no reason
const (
	MsgLoginFailed    = "Login failed"
	MsgRegisterFailed = "Registration failed"
	MsgUpdateFailed   = "Update failed"
)

// ErrNoSession is returned by operations that need a logged in user
var ErrNoSession = errors.New("session: not logged in")

// Error is a failed session operation. Message is safe to show to the user.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }
