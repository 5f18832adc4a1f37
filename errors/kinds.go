package errors

import "errors"

// Error kinds reported by the injector. Callers match them with errors.Is,
// the concrete errors wrap them with the member and type involved.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNoSuchMember    = errors.New("no such member")
	ErrNotAccessible   = errors.New("member not accessible")
	ErrRebind          = errors.New("cannot rebind closure")
	ErrUnbound         = errors.New("no object bound")
	ErrLockTimeout     = errors.New("lock timeout")
)

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// Join wraps errors.Join so callers importing this package need not alias the std one.
func Join(errs ...error) error { return errors.Join(errs...) }
