package errors

import (
	stderrors "errors"

	"github.com/pkg/errors"
)

var (
	Wrapf     = errors.Wrapf
	Wrap      = errors.Wrap
	Errorf    = errors.Errorf
	New       = errors.New
	WithStack = errors.WithStack
	Is        = errors.Is
	As        = errors.As
	Cause     = errors.Cause
	Join      = stderrors.Join
)
