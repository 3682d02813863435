package monitor

import "time"

type Status struct {
	PostgreSQL       bool      `json:"postgresql"`
	Redis            bool      `json:"redis"`
	Reminders        bool      `json:"reminders"`
	PendingReminders int       `json:"pending_reminders"`
	LastCheck        time.Time `json:"last_check"`
}
