package domain

import "time"

// Company is a tenant account. Every activity and target belongs to exactly one company.
type Company struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Industry     string    `json:"industry"`
	Size         string    `json:"size"`
	DateJoined   time.Time `json:"date_joined"`
}
