package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tnqbao/gau-photo-share/entity"
	"github.com/tnqbao/gau-photo-share/infra"
)

const (
	shortLinkCachePrefix = "shortlink:"
	shortLinkCacheTTL    = time.Hour

	// A Query whose database read started before a Delete and finishes more
	// than shortLinkTombstoneTTL after it can still cache the deleted link.
	shortLinkTombstoneTTL = time.Minute
)

type ShortLinkRepository struct {
	db     *gorm.DB
	cache  *infra.RedisClient
	logger *infra.LoggerClient
}

// NewShortLinkRepository accepts a nil cache, in which case every lookup
// goes to the database.
func NewShortLinkRepository(db *gorm.DB, cache *infra.RedisClient, logger *infra.LoggerClient) *ShortLinkRepository {
	return &ShortLinkRepository{db: db, cache: cache, logger: logger}
}

func (r *ShortLinkRepository) Insert(ctx context.Context, link *entity.ShortLink) error {
	if link.PartitionKey == "" || link.RowKey != link.PartitionKey {
		return entity.NewValidationError("row_key", "partition and row key must be equal and non-empty")
	}

	err := r.db.WithContext(ctx).Create(link).Error
	if err == nil {
		r.evict(ctx, link.RowKey)
		return nil
	}

	kind := entity.ErrStoreTransport
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		kind = entity.ErrDuplicateKey
	}
	return &entity.StoreError{Op: "insert", Kind: kind, Err: err}
}

// Query returns the first link matching the filter, or nil when none does.
func (r *ShortLinkRepository) Query(ctx context.Context, filter QueryFilter) (*entity.ShortLink, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	if filter.isKeyLookup() {
		if link := r.fromCache(ctx, filter.Value); link != nil {
			return link, nil
		}
	}

	var link entity.ShortLink
	err := r.db.WithContext(ctx).Where(filter.clause(), filter.Value, filter.Value).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &entity.StoreError{Op: "query", Kind: entity.ErrStoreTransport, Err: err}
	}

	r.toCache(ctx, &link)
	return &link, nil
}

// Delete removes the link and replaces its cache entry with a tombstone, so
// a concurrent Query cannot put the deleted link back into the cache.
// Deleting a missing link succeeds.
func (r *ShortLinkRepository) Delete(ctx context.Context, partitionKey, rowKey string) entity.Outcome {
	outcome := entity.Outcome{Target: partitionKey}

	err := r.db.WithContext(ctx).
		Where("partition_key = ? AND row_key = ?", partitionKey, rowKey).
		Delete(&entity.ShortLink{}).Error
	if err != nil {
		outcome.Err = &entity.StoreError{Op: "delete", Kind: entity.ErrStoreTransport, Err: err}
		r.logger.ErrorWithContextf(ctx, err, "[ShortLink] Failed to delete %s", partitionKey)
		return outcome
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, shortLinkCachePrefix+rowKey, entity.ShortLink{}, shortLinkTombstoneTTL); err != nil {
			r.logger.WarningWithContextf(ctx, "[ShortLink] Failed to evict %s from cache: %v", rowKey, err)
		}
	}

	return outcome
}

func (r *ShortLinkRepository) evict(ctx context.Context, shortID string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Delete(ctx, shortLinkCachePrefix+shortID); err != nil {
		r.logger.WarningWithContextf(ctx, "[ShortLink] Failed to evict %s from cache: %v", shortID, err)
	}
}

func (r *ShortLinkRepository) fromCache(ctx context.Context, shortID string) *entity.ShortLink {
	if r.cache == nil {
		return nil
	}

	var link entity.ShortLink
	if err := r.cache.Get(ctx, shortLinkCachePrefix+shortID, &link); err != nil {
		if !errors.Is(err, infra.ErrCacheMiss) {
			r.logger.WarningWithContextf(ctx, "[ShortLink] Cache read failed for %s: %v", shortID, err)
		}
		return nil
	}
	if link.PartitionKey == "" {
		// tombstone
		return nil
	}
	r.logger.DebugWithContextf(ctx, "[ShortLink] Cache hit for %s", shortID)
	return &link
}

func (r *ShortLinkRepository) toCache(ctx context.Context, link *entity.ShortLink) {
	if r.cache == nil {
		return
	}
	if _, err := r.cache.SetIfAbsent(ctx, shortLinkCachePrefix+link.RowKey, link, shortLinkCacheTTL); err != nil {
		r.logger.WarningWithContextf(ctx, "[ShortLink] Cache write failed for %s: %v", link.RowKey, err)
	}
}
