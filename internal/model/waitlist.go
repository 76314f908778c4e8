package model

import "time"

// WaitlistEntry 候補名單。tierID 為 nil 代表整個活動的一般候補。
// position 在同一 (event, tier) 範圍內從 1 開始連續遞增，依加入順序指派。
type WaitlistEntry struct {
	ID        int       `json:"id" db:"id"`
	EventID   int       `json:"event_id" db:"event_id"`
	TierID    *int      `json:"tier_id,omitempty" db:"tier_id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	UserID    *int      `json:"user_id,omitempty" db:"user_id"`
	Position  int       `json:"position" db:"position"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// JoinWaitlistRequest 加入候補請求
type JoinWaitlistRequest struct {
	EventID int    `json:"event_id" binding:"required"`
	TierID  *int   `json:"tier_id"`
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required"`
	UserID  *int   `json:"user_id"`
}
