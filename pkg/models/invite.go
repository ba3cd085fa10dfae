package models

import "time"

// Invite is a single-use registration code minted by an admin
type Invite struct {
	Code      string     `json:"code" db:"code"`
	CreatedBy string     `json:"created_by" db:"created_by"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UsedBy    *string    `json:"used_by,omitempty" db:"used_by"`
	UsedAt    *time.Time `json:"used_at,omitempty" db:"used_at"`
}

// IsUsed reports whether the invite has been consumed
func (i *Invite) IsUsed() bool {
	return i.UsedBy != nil
}
