package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/minisearch/internal/storage"
)

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()

	store, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestUpsertPage_SameURLSameID(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.UpsertPage(ctx, "https://example.com/a", "A", "<html>", "text a")
	require.NoError(t, err)

	second, err := store.UpsertPage(ctx, "https://example.com/a", "A2", "<html>2", "text a2")
	require.NoError(t, err)

	assert.Equal(t, first, second)

	text, err := store.GetCleanedText(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "text a2", text)
}

func TestUpsertPlaceholder_DoesNotClobber(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.UpsertPage(ctx, "https://example.com", "Home", "<html>", "home text")
	require.NoError(t, err)

	placeholderID, err := store.UpsertPlaceholder(ctx, "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, id, placeholderID)

	text, err := store.GetCleanedText(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "home text", text, "placeholder upsert must keep fetched content")
}

func TestUpsertPage_UpgradesPlaceholderInPlace(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	placeholderID, err := store.UpsertPlaceholder(ctx, "https://example.com/later")
	require.NoError(t, err)

	text, err := store.GetCleanedText(ctx, placeholderID)
	require.NoError(t, err)
	assert.Empty(t, text)

	fetchedID, err := store.UpsertPage(ctx, "https://example.com/later", "Later", "<html>", "later text")
	require.NoError(t, err)
	assert.Equal(t, placeholderID, fetchedID, "page id must never change on upgrade")
}

func TestGetPageID_NotFound(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	_, err := store.GetPageID(context.Background(), "https://nowhere.example")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAddLink_IdempotentAndNoSelfLoops(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	a, err := store.UpsertPage(ctx, "https://a.example", "A", "", "a")
	require.NoError(t, err)
	b, err := store.UpsertPage(ctx, "https://b.example", "B", "", "b")
	require.NoError(t, err)

	require.NoError(t, store.AddLink(ctx, a, b))
	require.NoError(t, store.AddLink(ctx, a, b)) // duplicate
	require.NoError(t, store.AddLink(ctx, a, a)) // self-loop
	require.NoError(t, store.AddLink(ctx, 0, b)) // unset source

	links, err := store.IterLinks(ctx)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, a, links[0].SourceID)
	assert.Equal(t, b, links[0].TargetID)

	count, err := store.LinkCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestListPages_OrderedByID(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	urls := []string{"https://one.example", "https://two.example", "https://three.example"}
	for _, u := range urls {
		_, err := store.UpsertPage(ctx, u, "t", "", "x")
		require.NoError(t, err)
	}

	pages, err := store.ListPages(ctx)
	require.NoError(t, err)
	require.Len(t, pages, 3)

	for i, page := range pages {
		assert.Equal(t, urls[i], page.URL)
		if i > 0 {
			assert.Greater(t, page.ID, pages[i-1].ID)
		}
	}
}

func TestSavePostings_ReplacesAtomically(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	doc, err := store.UpsertPage(ctx, "https://doc.example", "Doc", "", "web web crawler")
	require.NoError(t, err)

	require.NoError(t, store.SavePostings(ctx, doc, map[string]int{"web": 2, "crawler": 1}))

	df, err := store.DocFrequency(ctx, "web")
	require.NoError(t, err)
	assert.Equal(t, 1, df)

	// A rebuild with different terms replaces the old postings wholesale.
	require.NoError(t, store.SavePostings(ctx, doc, map[string]int{"python": 3}))

	df, err = store.DocFrequency(ctx, "web")
	require.NoError(t, err)
	assert.Equal(t, 0, df)

	postings, err := store.PostingList(ctx, "python")
	require.NoError(t, err)
	require.Len(t, postings, 1)
	assert.Equal(t, doc, postings[0].DocID)
	assert.Equal(t, 3, postings[0].TF)
}

func TestPostingList_JoinsPageFields(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	doc, err := store.UpsertPage(ctx, "https://doc.example", "Doc Title", "<html>", "some doc text")
	require.NoError(t, err)
	require.NoError(t, store.UpdatePageRank(ctx, doc, 0.25))
	require.NoError(t, store.SavePostings(ctx, doc, map[string]int{"doc": 2}))

	postings, err := store.PostingList(ctx, "doc")
	require.NoError(t, err)
	require.Len(t, postings, 1)

	posting := postings[0]
	assert.Equal(t, "https://doc.example", posting.URL)
	assert.Equal(t, "Doc Title", posting.Title.String)
	assert.InDelta(t, 0.25, posting.PageRank, 1e-9)
	assert.Equal(t, "some doc text", posting.CleanedText.String)
}

func TestDocumentCount(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	n, err := store.DocumentCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = store.UpsertPage(ctx, "https://a.example", "", "", "")
	require.NoError(t, err)
	_, err = store.UpsertPlaceholder(ctx, "https://b.example")
	require.NoError(t, err)

	n, err = store.DocumentCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
