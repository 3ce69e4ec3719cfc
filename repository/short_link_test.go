package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tnqbao/gau-photo-share/entity"
)

func TestShortLinkInsertQueryDelete(t *testing.T) {
	ctx := context.Background()
	mr, cache := newTestRedis(t)
	repo := NewShortLinkRepository(newTestDB(t), cache, newTestLogger())

	require.NoError(t, repo.Insert(ctx, entity.NewShortLink("ABCDEFGH", "https://store.local/c/f/720p.png")))

	link, err := repo.Query(ctx, KeyFilter("ABCDEFGH"))
	require.NoError(t, err)
	require.NotNil(t, link)
	assert.Equal(t, "https://store.local/c/f/720p.png", link.URL)
	assert.Equal(t, link.PartitionKey, link.RowKey)
	assert.True(t, mr.Exists(shortLinkCachePrefix+"ABCDEFGH"))

	outcome := repo.Delete(ctx, "ABCDEFGH", "ABCDEFGH")
	assert.True(t, outcome.Succeeded())
	assert.Equal(t, shortLinkTombstoneTTL, mr.TTL(shortLinkCachePrefix+"ABCDEFGH"))

	link, err = repo.Query(ctx, KeyFilter("ABCDEFGH"))
	require.NoError(t, err)
	assert.Nil(t, link)
}

func TestShortLinkQueryMissingReturnsNil(t *testing.T) {
	repo := NewShortLinkRepository(newTestDB(t), nil, newTestLogger())

	link, err := repo.Query(context.Background(), KeyFilter("NOPE"))
	require.NoError(t, err)
	assert.Nil(t, link)
}

func TestShortLinkQueryRequiresRowKeyMatch(t *testing.T) {
	ctx := context.Background()
	repo := NewShortLinkRepository(newTestDB(t), nil, newTestLogger())
	require.NoError(t, repo.Insert(ctx, entity.NewShortLink("KEY1", "https://example.com/a")))

	// the url matches but the row key is not the filter value
	link, err := repo.Query(ctx, QueryFilter{Column: "url", Operator: "eq", Value: "https://example.com/a"})
	require.NoError(t, err)
	assert.Nil(t, link)

	link, err = repo.Query(ctx, QueryFilter{Column: "row_key", Operator: "eq", Value: "KEY1"})
	require.NoError(t, err)
	require.NotNil(t, link)
	assert.Equal(t, "https://example.com/a", link.URL)
}

func TestShortLinkQueryRejectsUnknownFilter(t *testing.T) {
	repo := NewShortLinkRepository(newTestDB(t), nil, newTestLogger())

	var validationErr *entity.ValidationError

	_, err := repo.Query(context.Background(), QueryFilter{Column: "secret; DROP TABLE", Operator: "eq", Value: "x"})
	require.Error(t, err)
	assert.True(t, errors.As(err, &validationErr))

	_, err = repo.Query(context.Background(), QueryFilter{Column: "url", Operator: "like", Value: "x"})
	require.Error(t, err)
	assert.True(t, errors.As(err, &validationErr))
}

func TestShortLinkDuplicateInsertIsStoreError(t *testing.T) {
	ctx := context.Background()
	repo := NewShortLinkRepository(newTestDB(t), nil, newTestLogger())

	require.NoError(t, repo.Insert(ctx, entity.NewShortLink("DUP", "https://example.com/1")))
	err := repo.Insert(ctx, entity.NewShortLink("DUP", "https://example.com/2"))

	var storeErr *entity.StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "insert", storeErr.Op)
}

func TestShortLinkInsertRejectsMismatchedKeys(t *testing.T) {
	repo := NewShortLinkRepository(newTestDB(t), nil, newTestLogger())

	err := repo.Insert(context.Background(), &entity.ShortLink{PartitionKey: "A", RowKey: "B", URL: "https://example.com"})

	var validationErr *entity.ValidationError
	assert.True(t, errors.As(err, &validationErr))
}

func TestShortLinkDeleteMissingSucceeds(t *testing.T) {
	repo := NewShortLinkRepository(newTestDB(t), nil, newTestLogger())

	outcome := repo.Delete(context.Background(), "GONE", "GONE")
	assert.True(t, outcome.Succeeded())
	assert.Equal(t, "GONE", outcome.Target)
}

func TestShortLinkQueryServesFromCache(t *testing.T) {
	ctx := context.Background()
	_, cache := newTestRedis(t)
	db := newTestDB(t)
	repo := NewShortLinkRepository(db, cache, newTestLogger())

	require.NoError(t, repo.Insert(ctx, entity.NewShortLink("CACHED", "https://example.com/cached")))
	_, err := repo.Query(ctx, KeyFilter("CACHED"))
	require.NoError(t, err)

	// drop the row behind the cache's back
	require.NoError(t, db.Where("row_key = ?", "CACHED").Delete(&entity.ShortLink{}).Error)

	link, err := repo.Query(ctx, KeyFilter("CACHED"))
	require.NoError(t, err)
	require.NotNil(t, link)
	assert.Equal(t, "https://example.com/cached", link.URL)
}

func TestShortLinkLateCacheFillAfterDeleteIsIgnored(t *testing.T) {
	ctx := context.Background()
	_, cache := newTestRedis(t)
	repo := NewShortLinkRepository(newTestDB(t), cache, newTestLogger())

	require.NoError(t, repo.Insert(ctx, entity.NewShortLink("RACE1234", "https://example.com/race")))

	// a Query read the row before the delete and fills the cache after it
	stale, err := repo.Query(ctx, KeyFilter("RACE1234"))
	require.NoError(t, err)
	require.NotNil(t, stale)
	require.True(t, repo.Delete(ctx, "RACE1234", "RACE1234").Succeeded())
	repo.toCache(ctx, stale)

	link, err := repo.Query(ctx, KeyFilter("RACE1234"))
	require.NoError(t, err)
	assert.Nil(t, link)
}

func TestShortLinkReinsertAfterDeleteIsVisible(t *testing.T) {
	ctx := context.Background()
	mr, cache := newTestRedis(t)
	repo := NewShortLinkRepository(newTestDB(t), cache, newTestLogger())

	require.NoError(t, repo.Insert(ctx, entity.NewShortLink("AGAIN123", "https://example.com/1")))
	require.True(t, repo.Delete(ctx, "AGAIN123", "AGAIN123").Succeeded())
	require.NoError(t, repo.Insert(ctx, entity.NewShortLink("AGAIN123", "https://example.com/2")))
	assert.False(t, mr.Exists(shortLinkCachePrefix+"AGAIN123"))

	link, err := repo.Query(ctx, KeyFilter("AGAIN123"))
	require.NoError(t, err)
	require.NotNil(t, link)
	assert.Equal(t, "https://example.com/2", link.URL)
}
