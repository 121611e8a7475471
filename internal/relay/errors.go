package relay

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyStarted = errors.New("relay already started")
	ErrRelayExists    = errors.New("relay already running for session")
	ErrRelayNotFound  = errors.New("no relay for session")
)

// ConnectError reports a failure to establish one side of the relay.
type ConnectError struct {
	Target string // "room" or "model"
	Err    error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect %s: %v", e.Target, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// SendError reports a failed write to an established connection. Writes
// to a live stream are not retried; a failed send means the connection
// is gone and the relay tears down.
type SendError struct {
	Target string
	Err    error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send to %s: %v", e.Target, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}
