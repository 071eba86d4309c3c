package models

import (
	"time"

	"github.com/google/uuid"
)

// Report is a user-authored hazard post subject to voting.
type Report struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	HazardType  string    `json:"hazardType"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	AuthorEmail string    `json:"authorEmail"`
	PhotoURL    string    `json:"photoUrl"`
	CreatedAt   time.Time `json:"createdAt"`

	Upvotes   int                   `json:"upvotes"`
	Downvotes int                   `json:"downvotes"`
	Voters    map[string]VoteRecord `json:"voters"`
}

// Doc renders the report as a full store document.
func (r *Report) Doc() map[string]interface{} {
	doc := map[string]interface{}{
		"title":       r.Title,
		"description": r.Description,
		"hazardType":  r.HazardType,
		"latitude":    r.Latitude,
		"longitude":   r.Longitude,
		"authorEmail": r.AuthorEmail,
		"photoUrl":    r.PhotoURL,
		"createdAt":   r.CreatedAt.UnixMilli(),
	}
	agg := VoteAggregate{Upvotes: r.Upvotes, Downvotes: r.Downvotes, Voters: r.Voters}
	for k, v := range agg.Fields() {
		doc[k] = v
	}
	return doc
}

// ReportFromDoc rebuilds a report from a store document.
func ReportFromDoc(id uuid.UUID, doc map[string]interface{}) *Report {
	agg := VoteAggregateFromDoc(doc)
	return &Report{
		ID:          id,
		Title:       docString(doc, "title"),
		Description: docString(doc, "description"),
		HazardType:  docString(doc, "hazardType"),
		Latitude:    docFloat(doc, "latitude"),
		Longitude:   docFloat(doc, "longitude"),
		AuthorEmail: docString(doc, "authorEmail"),
		PhotoURL:    docString(doc, "photoUrl"),
		CreatedAt:   time.UnixMilli(docInt64(doc, "createdAt")),
		Upvotes:     agg.Upvotes,
		Downvotes:   agg.Downvotes,
		Voters:      agg.Voters,
	}
}
