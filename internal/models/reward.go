package models

import "github.com/google/uuid"

// Reward is a redeemable catalog entry.
type Reward struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	PointsRequired int       `json:"pointsRequired"`
	Active         bool      `json:"active"`
}

func (r *Reward) Doc() map[string]interface{} {
	return map[string]interface{}{
		"name":           r.Name,
		"description":    r.Description,
		"pointsRequired": r.PointsRequired,
		"active":         r.Active,
	}
}

// RewardFromDoc rebuilds a reward from a store document. A missing or
// unset pointsRequired reads as 0, which makes the reward always
// affordable; this permissive default matches how the mobile clients
// treat unconfigured rewards.
func RewardFromDoc(id uuid.UUID, doc map[string]interface{}) *Reward {
	return &Reward{
		ID:             id,
		Name:           docString(doc, "name"),
		Description:    docString(doc, "description"),
		PointsRequired: docInt(doc, "pointsRequired"),
		Active:         docBool(doc, "active"),
	}
}

// RedemptionStatus tracks the administrative lifecycle of a claim.
type RedemptionStatus string

const (
	RedemptionPending   RedemptionStatus = "pending"
	RedemptionFulfilled RedemptionStatus = "fulfilled"
	RedemptionRejected  RedemptionStatus = "rejected"
)

// RedemptionDetails is the delivery information a user submits when
// claiming a reward. All fields are required.
type RedemptionDetails struct {
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
}

// RedemptionRecord is the stored claim. Only the latest claim per user
// is kept (single slot at claim_reward/{key}).
type RedemptionRecord struct {
	UserEmail   string           `json:"userEmail"`
	RewardID    string           `json:"rewardId"`
	PointsCost  int              `json:"pointsCost"`
	FullName    string           `json:"fullName"`
	PhoneNumber string           `json:"phoneNumber"`
	Address     string           `json:"address"`
	Status      RedemptionStatus `json:"status"`
	Timestamp   int64            `json:"timestamp"` // Unix milliseconds
}

func (r *RedemptionRecord) Doc() map[string]interface{} {
	return map[string]interface{}{
		"userEmail":   r.UserEmail,
		"rewardId":    r.RewardID,
		"pointsCost":  r.PointsCost,
		"fullName":    r.FullName,
		"phoneNumber": r.PhoneNumber,
		"address":     r.Address,
		"status":      string(r.Status),
		"timestamp":   r.Timestamp,
	}
}

func RedemptionFromDoc(doc map[string]interface{}) *RedemptionRecord {
	return &RedemptionRecord{
		UserEmail:   docString(doc, "userEmail"),
		RewardID:    docString(doc, "rewardId"),
		PointsCost:  docInt(doc, "pointsCost"),
		FullName:    docString(doc, "fullName"),
		PhoneNumber: docString(doc, "phoneNumber"),
		Address:     docString(doc, "address"),
		Status:      RedemptionStatus(docString(doc, "status")),
		Timestamp:   docInt64(doc, "timestamp"),
	}
}
