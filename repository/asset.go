package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tnqbao/gau-photo-share/entity"
)

type AssetRepository struct {
	db *gorm.DB
}

func NewAssetRepository(db *gorm.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

func (r *AssetRepository) Create(ctx context.Context, asset *entity.Asset) error {
	return r.db.WithContext(ctx).Create(asset).Error
}

func (r *AssetRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Asset, error) {
	var asset entity.Asset
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&asset).Error
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

// UpdateShortIDs replaces the recorded short ids of an asset
func (r *AssetRepository) UpdateShortIDs(ctx context.Context, id uuid.UUID, shortIDs []string) error {
	return r.db.WithContext(ctx).Model(&entity.Asset{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"short_ids":  datatypes.NewJSONSlice(shortIDs),
			"updated_at": time.Now(),
		}).Error
}

func (r *AssetRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.AssetStatus) error {
	return r.db.WithContext(ctx).Model(&entity.Asset{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

// FindReapable returns failed and pending assets untouched since staleBefore.
func (r *AssetRepository) FindReapable(ctx context.Context, staleBefore time.Time, limit int) ([]entity.Asset, error) {
	var assets []entity.Asset
	err := r.db.WithContext(ctx).
		Where("status IN ? AND updated_at < ?",
			[]entity.AssetStatus{entity.AssetStatusFailed, entity.AssetStatusPending}, staleBefore).
		Order("updated_at ASC").
		Limit(limit).
		Find(&assets).Error
	return assets, err
}
