package models

import "time"

// ScoreEvent is one entry in a user's append-only score history
// (earned from the in-app minigame).
type ScoreEvent struct {
	Score     int   `json:"score"`
	Timestamp int64 `json:"timestamp"` // Unix milliseconds
}

// User is a profile document keyed by sanitized email. Points is the
// cached balance (a materialized view over Scores minus Redeemed);
// Redeemed accumulates the cost of every redemption.
type User struct {
	Email          string       `json:"email"`
	DisplayName    string       `json:"displayName"`
	PhotoURL       string       `json:"photoUrl"`
	HashedPassword string       `json:"-"`
	Scores         []ScoreEvent `json:"scores"`
	Points         int          `json:"points"`
	Redeemed       int          `json:"redeemed"`
	CreatedAt      time.Time    `json:"createdAt"`
}

// ScoreSum is the authoritative earned total: the sum over the full
// score history, never the cached Points field.
func (u *User) ScoreSum() int {
	total := 0
	for _, event := range u.Scores {
		total += event.Score
	}
	return total
}

// Doc renders the user as a full store document.
func (u *User) Doc() map[string]interface{} {
	scores := make([]interface{}, len(u.Scores))
	for i, event := range u.Scores {
		scores[i] = map[string]interface{}{
			"score":     event.Score,
			"timestamp": event.Timestamp,
		}
	}
	return map[string]interface{}{
		"email":          u.Email,
		"displayName":    u.DisplayName,
		"photoUrl":       u.PhotoURL,
		"hashedPassword": u.HashedPassword,
		"scores":         scores,
		"points":         u.Points,
		"redeemed":       u.Redeemed,
		"createdAt":      u.CreatedAt.UnixMilli(),
	}
}

// UserFromDoc rebuilds a user from a store document.
func UserFromDoc(doc map[string]interface{}) *User {
	user := &User{
		Email:          docString(doc, "email"),
		DisplayName:    docString(doc, "displayName"),
		PhotoURL:       docString(doc, "photoUrl"),
		HashedPassword: docString(doc, "hashedPassword"),
		Points:         docInt(doc, "points"),
		Redeemed:       docInt(doc, "redeemed"),
		CreatedAt:      time.UnixMilli(docInt64(doc, "createdAt")),
	}
	for _, raw := range docSlice(doc, "scores") {
		entry, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		user.Scores = append(user.Scores, ScoreEvent{
			Score:     docInt(entry, "score"),
			Timestamp: docInt64(entry, "timestamp"),
		})
	}
	return user
}
