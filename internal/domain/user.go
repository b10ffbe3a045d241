package domain

import "time"

// Permission levels are ordered; a higher level includes the lower ones.
const (
	LevelOperator int16 = 1
	LevelManager  int16 = 2
	LevelAdmin    int16 = 3
)

type User struct {
	ID           int32      `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Level        int16      `json:"level"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
	CreatedOn    time.Time  `json:"createdOn"`
}

// Principal is the authenticated actor of a request.
type Principal struct {
	ID    int32 `json:"id"`
	Level int16 `json:"level"`
}

func (p Principal) AtLeast(level int16) bool {
	return p.Level >= level
}

type LogEntry struct {
	ID        int32     `json:"id"`
	Action    string    `json:"action"`
	UserID    *int32    `json:"userId,omitempty"`
	CreatedOn time.Time `json:"createdOn"`
}
