// internal/store/store.go
package store

import (
	"context"
	"fmt"
	"strings"
)

// Store is the document store the ledger core runs against. Paths are
// "collection/id" (for example "posts/42f1..."); Subscribe also accepts
// a bare collection to observe every document under it.
//
// Get returns (nil, nil) when the document is absent. Set overwrites the
// whole document; Update merges top-level fields without touching
// siblings. There are no multi-document transactions.
type Store interface {
	Get(ctx context.Context, path string) (map[string]interface{}, error)
	Set(ctx context.Context, path string, doc map[string]interface{}) error
	Update(ctx context.Context, path string, fields map[string]interface{}) error
	List(ctx context.Context, collection string) (map[string]map[string]interface{}, error)

	// Subscribe registers onChange for writes at or under path and
	// returns a cancel function. Used by the UI push layer, not by the
	// ledger itself.
	Subscribe(path string, onChange func(path string, doc map[string]interface{})) (func(), error)

	Close(ctx context.Context) error
}

// Well-known collections.
const (
	CollectionPosts       = "posts"
	CollectionUsers       = "users"
	CollectionRewards     = "rewards"
	CollectionClaimReward = "claim_reward"
)

// Path joins a collection and a document ID.
func Path(collection, id string) string {
	return collection + "/" + id
}

// SplitPath separates "collection/id" into its parts.
func SplitPath(path string) (collection, id string, err error) {
	idx := strings.Index(path, "/")
	if idx <= 0 || idx == len(path)-1 {
		return "", "", fmt.Errorf("invalid document path: %q", path)
	}
	return path[:idx], path[idx+1:], nil
}

// pathMatches reports whether a written path falls under a subscription
// path (exact match, or the subscription names the parent collection).
func pathMatches(subscription, written string) bool {
	if subscription == written {
		return true
	}
	return strings.HasPrefix(written, subscription+"/")
}
