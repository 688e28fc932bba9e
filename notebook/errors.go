package notebook

import "errors"

var (
	ErrNoSession   = errors.New("not signed in")
	ErrEmptyNote   = errors.New("note needs a title or a body")
	ErrPINMismatch = errors.New("PINs do not match")
)
