package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeRoomInUse      = "room_in_use"
	ErrCodeRoomNotFound   = "room_not_found"
	ErrCodeRoomIDRequired = "room_id_required"
)

// Status codes carried in event payloads.
const (
	StatusOK         = 200
	StatusBadRequest = 400
)

// Sentinels returned to callers. ErrBadRequest and ErrNotBound are silent:
// nothing is sent to the connection.
var (
	ErrRoomInUse      = errors.New("room is in use")
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomIDRequired = errors.New("room id required")
	ErrBadRequest     = errors.New("bad request")
	ErrNotBound       = errors.New("connection is not bound to a room")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
