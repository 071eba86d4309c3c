package models

import "fmt"

// VoteType represents the two vote directions a user can cast.
//
// The mobile clients historically sent a mix of "upvote"/"upvotes" style
// strings; this is the single canonical representation used everywhere
// past the API boundary.
type VoteType string

const (
	VoteUp   VoteType = "upvote"
	VoteDown VoteType = "downvote"
)

// ParseVoteType validates a raw vote type string from a client.
func ParseVoteType(raw string) (VoteType, error) {
	switch VoteType(raw) {
	case VoteUp, VoteDown:
		return VoteType(raw), nil
	default:
		return "", fmt.Errorf("unknown vote type: %q", raw)
	}
}

// Opposite returns the other vote direction.
func (v VoteType) Opposite() VoteType {
	if v == VoteUp {
		return VoteDown
	}
	return VoteUp
}
