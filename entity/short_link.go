package entity

import "time"

// ShortLink maps a short id to a full URL. PartitionKey and RowKey always
// carry the same value.
type ShortLink struct {
	PartitionKey string    `json:"partition_key" gorm:"type:varchar(64);primaryKey"`
	RowKey       string    `json:"row_key" gorm:"type:varchar(64);primaryKey"`
	URL          string    `json:"url" gorm:"type:varchar(2048);not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"not null;autoCreateTime"`
}

func (ShortLink) TableName() string {
	return "short_links"
}

func NewShortLink(shortID, url string) *ShortLink {
	return &ShortLink{
		PartitionKey: shortID,
		RowKey:       shortID,
		URL:          url,
	}
}
