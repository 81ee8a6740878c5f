package domain

import "time"

// Clock supplies the current time to the UserAccount state machine.
// Injecting it keeps lockout-window and key-staleness logic deterministic
// under test.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a plain function to the Clock interface.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock returns the wall clock in UTC.
func SystemClock() Clock {
	return ClockFunc(func() time.Time { return time.Now().UTC() })
}

// Crypto hashes passwords and verification secrets. Password hashes are
// salted and iterated; Hash is a fast deterministic digest used for
// single-use verification keys and mobile codes, which are already
// high-entropy random values.
type Crypto interface {
	HashPassword(password string) (string, error)
	VerifyPassword(hashedPassword, password string) bool
	Hash(value string) string
}
