package models

// VoteRecord is one user's current vote on a report, stored in the
// report's voter registry under the user's sanitized email key.
type VoteRecord struct {
	VoteType   VoteType `json:"voteType"`
	VoterName  string   `json:"voterName"`
	VoterEmail string   `json:"voterEmail"`
	VoterPhoto string   `json:"voterPhoto"`
	Timestamp  int64    `json:"timestamp"` // Unix milliseconds
}

// VoteAggregate is the derived tally stored alongside a report:
// counters plus the voter registry they are derived from.
//
// Invariant: Upvotes equals the number of registry entries with VoteUp,
// Downvotes the number with VoteDown.
type VoteAggregate struct {
	Upvotes   int                   `json:"upvotes"`
	Downvotes int                   `json:"downvotes"`
	Voters    map[string]VoteRecord `json:"voters"`
}

// NewVoteAggregate returns an empty aggregate (counts zero, no voters).
func NewVoteAggregate() *VoteAggregate {
	return &VoteAggregate{Voters: make(map[string]VoteRecord)}
}

// VoteAggregateFromDoc extracts the aggregate fields from a report
// document, defaulting missing fields to zero counts and an empty registry.
func VoteAggregateFromDoc(doc map[string]interface{}) *VoteAggregate {
	agg := &VoteAggregate{
		Upvotes:   docInt(doc, "upvotes"),
		Downvotes: docInt(doc, "downvotes"),
		Voters:    make(map[string]VoteRecord),
	}
	for key, raw := range docMap(doc, "voters") {
		entry, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		agg.Voters[key] = VoteRecord{
			VoteType:   VoteType(docString(entry, "voteType")),
			VoterName:  docString(entry, "voterName"),
			VoterEmail: docString(entry, "voterEmail"),
			VoterPhoto: docString(entry, "voterPhoto"),
			Timestamp:  docInt64(entry, "timestamp"),
		}
	}
	return agg
}

// Fields renders the aggregate as the partial document written back to
// the store. Counters and registry always travel together in one write
// so a failed operation cannot leave a counter without a voter entry.
func (a *VoteAggregate) Fields() map[string]interface{} {
	voters := make(map[string]interface{}, len(a.Voters))
	for key, record := range a.Voters {
		voters[key] = map[string]interface{}{
			"voteType":   string(record.VoteType),
			"voterName":  record.VoterName,
			"voterEmail": record.VoterEmail,
			"voterPhoto": record.VoterPhoto,
			"timestamp":  record.Timestamp,
		}
	}
	return map[string]interface{}{
		"upvotes":   a.Upvotes,
		"downvotes": a.Downvotes,
		"voters":    voters,
	}
}

// Bump adjusts the counter matching the vote type. Counters never go
// below zero even if a stored document arrives with drifted counts.
func (a *VoteAggregate) Bump(vt VoteType, delta int) {
	if vt == VoteUp {
		a.Upvotes += delta
		if a.Upvotes < 0 {
			a.Upvotes = 0
		}
		return
	}
	a.Downvotes += delta
	if a.Downvotes < 0 {
		a.Downvotes = 0
	}
}

// Count returns the number of registry entries with the given vote type.
func (a *VoteAggregate) Count(vt VoteType) int {
	n := 0
	for _, record := range a.Voters {
		if record.VoteType == vt {
			n++
		}
	}
	return n
}
