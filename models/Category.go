package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// LocalizedNames represents multilingual display names for back-office
// reference data.
type LocalizedNames struct {
	En string `json:"en"`
	Fr string `json:"fr"`
	Ar string `json:"ar"`
}

// Value implements the driver.Valuer interface for database storage
func (ln LocalizedNames) Value() (driver.Value, error) {
	return json.Marshal(ln)
}

// Scan implements the sql.Scanner interface for database retrieval
func (ln *LocalizedNames) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}

	return json.Unmarshal(bytes, ln)
}

// Category represents a property category managed from the admin back-office.
type Category struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        LocalizedNames `json:"name" gorm:"type:jsonb"`
	Icon        string         `json:"icon"`
	Description LocalizedNames `json:"description" gorm:"type:jsonb"`
	IsActive    bool           `json:"isActive" gorm:"default:true"`
	SortOrder   int            `json:"sortOrder" gorm:"default:0"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// Amenity represents a property amenity, grouped by a free-form category
// string (e.g. "comfort", "safety").
type Amenity struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        LocalizedNames `json:"name" gorm:"type:jsonb"`
	Icon        string         `json:"icon"`
	Category    string         `json:"category" gorm:"size:64;index"`
	Description LocalizedNames `json:"description" gorm:"type:jsonb"`
	IsActive    bool           `json:"isActive" gorm:"default:true"`
	SortOrder   int            `json:"sortOrder" gorm:"default:0"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}
