package entity

import "time"

// Session is the result of a successful login
type Session struct {
	Token     string
	Username  string
	Role      Role
	ExpiresAt time.Time
}
