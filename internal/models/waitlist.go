package models

import "time"

// WaitlistEntry is an early-access signup.
type WaitlistEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      *string   `gorm:"size:100" json:"name"`
	Email     string    `gorm:"size:120;uniqueIndex;not null" json:"email"`
	Role      *string   `gorm:"size:50" json:"role"`
	Source    string    `gorm:"size:50;default:waitlist-page" json:"source"`
	CreatedAt time.Time `json:"created_at"`
	Notified  bool      `gorm:"default:false" json:"notified"`
}

// TableName keeps the table name singular.
func (WaitlistEntry) TableName() string {
	return "waitlist"
}
