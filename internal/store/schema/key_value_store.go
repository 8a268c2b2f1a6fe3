package schema

import (
	"time"

	"gorm.io/datatypes"
)

// KeyValueStore stores one JSON document per key, such as the persisted trade cache
type KeyValueStore struct {
	Key       string         `gorm:"primaryKey;type:text"`
	Value     datatypes.JSON `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
}

func (KeyValueStore) TableName() string {
	return "key_value_store"
}
