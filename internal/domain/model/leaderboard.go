package model

type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	SolvedCount int    `json:"solved_count"`
	TotalPoints int    `json:"total_points"`
}

type UserStats struct {
	SolvedCount int  `json:"solved_count"`
	TotalPoints int  `json:"total_points"`
	Rank        *int `json:"rank"` // nil when the user has no leaderboard entry
}
