package notebook

import "time"

// Session identifies the signed-in account. The zero value means nobody is
// signed in.
type Session struct {
	Username  string
	StartedAt time.Time
}

func (s Session) Valid() bool {
	return s.Username != ""
}
