package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AssetStatus string

const (
	AssetStatusPending AssetStatus = "PENDING"
	AssetStatusLinked  AssetStatus = "LINKED"
	AssetStatusFailed  AssetStatus = "FAILED"
	AssetStatusReaped  AssetStatus = "REAPED"
)

// Asset records what an orchestration intends to create, before it creates it.
type Asset struct {
	ID         uuid.UUID                   `json:"id" gorm:"type:uuid;primaryKey"`
	Profile    CallerClass                 `json:"profile" gorm:"type:varchar(32);not null"`
	Container  string                      `json:"container" gorm:"type:varchar(63);not null;index"`
	Folder     string                      `json:"folder" gorm:"type:varchar(255);not null"`
	ObjectName string                      `json:"object_name" gorm:"type:varchar(255);not null"`
	Status     AssetStatus                 `json:"status" gorm:"type:varchar(32);not null;default:'PENDING';index"`
	ShortIDs   datatypes.JSONSlice[string] `json:"short_ids" gorm:"type:json"`
	CreatedAt  time.Time                   `json:"created_at" gorm:"not null;autoCreateTime"`
	UpdatedAt  time.Time                   `json:"updated_at" gorm:"autoUpdateTime;index"`
}
