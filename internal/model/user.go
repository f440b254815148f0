package model

import "time"

const (
	// SabotageMin and SabotageMax bound a user's sabotage point counter.
	SabotageMin = 0
	SabotageMax = 9
)

type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	SabotagePoints int       `json:"sabotage_points"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ClampSabotage forces a point total into the allowed [SabotageMin, SabotageMax] range.
func ClampSabotage(points int) int {
	if points < SabotageMin {
		return SabotageMin
	}
	if points > SabotageMax {
		return SabotageMax
	}
	return points
}
