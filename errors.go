package injector

import "github.com/iocgo/injector/errors"

var (
	ErrInvalidArgument = errors.ErrInvalidArgument
	ErrNoSuchMember    = errors.ErrNoSuchMember
	ErrNotAccessible   = errors.ErrNotAccessible
	ErrRebind          = errors.ErrRebind
	ErrUnbound         = errors.ErrUnbound
	ErrLockTimeout     = errors.ErrLockTimeout
)
