package errors

import (
	"fmt"
)

var (
	ErrInvalidConfig  = fmt.Errorf("tutorwise: invalid config")
	ErrNotFound       = fmt.Errorf("tutorwise: not found")
	ErrInvalidParams  = fmt.Errorf("tutorwise: invalid params")
	ErrInternal       = fmt.Errorf("tutorwise: internal error")
	ErrUnauthorized   = fmt.Errorf("tutorwise: unauthorized")
	ErrForbidden      = fmt.Errorf("tutorwise: forbidden")
	ErrConflict       = fmt.Errorf("tutorwise: conflict")
	ErrQueueFull      = fmt.Errorf("tutorwise: queue full")
	ErrRemote         = fmt.Errorf("tutorwise: remote service failure")
	ErrNoContent      = fmt.Errorf("tutorwise: space has no processed content")
	ErrInvalidRequest = fmt.Errorf("tutorwise: invalid request")
)
