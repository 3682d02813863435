package domain

import "time"

// User represents an identity known to the delegated auth provider. The service
// only needs the owner reference and notification routing metadata (for example
// the "telegram_chat_id" key consumed by the Telegram sender).
type User struct {
	ID        string            `json:"id"`
	Email     string            `json:"email,omitempty"`
	Status    string            `json:"status"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (u *User) IsActive() bool {
	return u != nil && u.Status == "active"
}
