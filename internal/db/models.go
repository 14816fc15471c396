package db

import (
	"time"
)

// Record is one key of the state layout.
//
// The column is named record_key because KEY is reserved in MySQL.
// Value holds the JSON document; []byte maps to BLOB on SQLite and
// LONGBLOB on MySQL, which leaves room for inline profile photos.
type Record struct {
	Key       string    `gorm:"column:record_key;primaryKey;size:64"`
	Value     []byte    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
