package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreGetAbsent(t *testing.T) {
	s := NewMemoryStore()

	doc, err := s.Get(context.Background(), "posts/missing")
	require.NoError(t, err)
	assert.Nil(t, doc, "absent document reads as nil, not an error")
}

func TestMemoryStoreSetReplaces(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "posts/p1", map[string]interface{}{"title": "old", "upvotes": 3}))
	require.NoError(t, s.Set(ctx, "posts/p1", map[string]interface{}{"title": "new"}))

	doc, err := s.Get(ctx, "posts/p1")
	require.NoError(t, err)
	assert.Equal(t, "new", doc["title"])
	assert.NotContains(t, doc, "upvotes", "Set replaces the whole document")
}

func TestMemoryStoreUpdateMergesTopLevel(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "posts/p1", map[string]interface{}{
		"title":   "Pothole",
		"upvotes": 1,
		"voters":  map[string]interface{}{"a@x_com": map[string]interface{}{"voteType": "upvote"}},
	}))
	require.NoError(t, s.Update(ctx, "posts/p1", map[string]interface{}{
		"upvotes": 2,
		"voters":  map[string]interface{}{"b@x_com": map[string]interface{}{"voteType": "upvote"}},
	}))

	doc, err := s.Get(ctx, "posts/p1")
	require.NoError(t, err)
	assert.Equal(t, "Pothole", doc["title"], "untouched fields survive")
	assert.Equal(t, 2, doc["upvotes"])

	// Merge is top-level only: the voters map is replaced wholesale,
	// not deep-merged.
	voters := doc["voters"].(map[string]interface{})
	assert.Len(t, voters, 1)
	assert.Contains(t, voters, "b@x_com")
}

func TestMemoryStoreUpdateCreates(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Update(ctx, "users/a@x_com", map[string]interface{}{"points": 5}))

	doc, err := s.Get(ctx, "users/a@x_com")
	require.NoError(t, err)
	assert.Equal(t, 5, doc["points"])
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "posts/p1", map[string]interface{}{
		"voters": map[string]interface{}{},
	}))

	doc, err := s.Get(ctx, "posts/p1")
	require.NoError(t, err)
	doc["voters"].(map[string]interface{})["x"] = "mutated"

	fresh, err := s.Get(ctx, "posts/p1")
	require.NoError(t, err)
	assert.Empty(t, fresh["voters"].(map[string]interface{}), "caller mutations must not leak into the store")
}

func TestMemoryStoreList(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "posts/p1", map[string]interface{}{"title": "one"}))
	require.NoError(t, s.Set(ctx, "posts/p2", map[string]interface{}{"title": "two"}))
	require.NoError(t, s.Set(ctx, "users/u1", map[string]interface{}{"email": "a@x.com"}))

	docs, err := s.List(ctx, "posts")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "one", docs["p1"]["title"])
	assert.Equal(t, "two", docs["p2"]["title"])
}

func TestMemoryStoreSubscribe(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var gotPath string
	var gotDoc map[string]interface{}
	calls := 0
	cancel, err := s.Subscribe("posts", func(path string, doc map[string]interface{}) {
		calls++
		gotPath = path
		gotDoc = doc
	})
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "posts/p1", map[string]interface{}{"title": "one"}))
	assert.Equal(t, 1, calls)
	assert.Equal(t, "posts/p1", gotPath)
	assert.Equal(t, "one", gotDoc["title"])

	// Writes outside the subscribed collection do not notify.
	require.NoError(t, s.Set(ctx, "users/u1", map[string]interface{}{"email": "a@x.com"}))
	assert.Equal(t, 1, calls)

	// Updates notify with the merged document.
	require.NoError(t, s.Update(ctx, "posts/p1", map[string]interface{}{"upvotes": 4}))
	assert.Equal(t, 2, calls)
	assert.Equal(t, "one", gotDoc["title"])
	assert.Equal(t, 4, gotDoc["upvotes"])

	cancel()
	require.NoError(t, s.Set(ctx, "posts/p2", map[string]interface{}{"title": "two"}))
	assert.Equal(t, 2, calls, "no notifications after cancel")
}

func TestMemoryStoreSubscribeExactPath(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	calls := 0
	cancel, err := s.Subscribe("posts/p1", func(path string, doc map[string]interface{}) {
		calls++
	})
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, s.Set(ctx, "posts/p1", map[string]interface{}{"title": "one"}))
	require.NoError(t, s.Set(ctx, "posts/p2", map[string]interface{}{"title": "two"}))
	assert.Equal(t, 1, calls)
}

func TestPathHelpers(t *testing.T) {
	assert.Equal(t, "posts/abc", Path(CollectionPosts, "abc"))

	collection, id, err := SplitPath("users/a@x_com")
	require.NoError(t, err)
	assert.Equal(t, "users", collection)
	assert.Equal(t, "a@x_com", id)

	_, _, err = SplitPath("bare")
	assert.Error(t, err)

	_, _, err = SplitPath("posts/")
	assert.Error(t, err)
}

func TestMemoryStoreLastWriteWins(t *testing.T) {
	// Two clients read the same document, each applies its own change
	// and writes back. The second write clobbers the first; this is the
	// documented concurrency model, serialized here to make the loss
	// deterministic.
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "posts/p1", map[string]interface{}{
		"upvotes": 0,
		"voters":  map[string]interface{}{},
	}))

	readA, err := s.Get(ctx, "posts/p1")
	require.NoError(t, err)
	readB, err := s.Get(ctx, "posts/p1")
	require.NoError(t, err)

	votersA := readA["voters"].(map[string]interface{})
	votersA["a@x_com"] = map[string]interface{}{"voteType": "upvote"}
	require.NoError(t, s.Update(ctx, "posts/p1", map[string]interface{}{
		"upvotes": 1,
		"voters":  votersA,
	}))

	votersB := readB["voters"].(map[string]interface{})
	votersB["b@x_com"] = map[string]interface{}{"voteType": "upvote"}
	require.NoError(t, s.Update(ctx, "posts/p1", map[string]interface{}{
		"upvotes": 1,
		"voters":  votersB,
	}))

	doc, err := s.Get(ctx, "posts/p1")
	require.NoError(t, err)
	voters := doc["voters"].(map[string]interface{})
	assert.Equal(t, 1, doc["upvotes"])
	assert.Len(t, voters, 1)
	assert.Contains(t, voters, "b@x_com", "the later write wins")
}
