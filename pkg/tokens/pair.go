package tokens

import "time"

// Pair is what login and refresh hand back to the HTTP layer.
type Pair struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	AccessExp    time.Time `json:"accessExpiresAt"`
	RefreshExp   time.Time `json:"refreshExpiresAt"`
	UserID       string    `json:"userId"`
	Role         string    `json:"role"`
}
