package models

import "time"

// DashboardSession identifies one open admin dashboard.
type DashboardSession struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
}

// IsExpired checks whether the session has been idle longer than ttl.
func (s *DashboardSession) IsExpired(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.LastActivity) > ttl
}

// UpdateActivity updates the last activity timestamp
func (s *DashboardSession) UpdateActivity(now time.Time) {
	s.LastActivity = now
}
