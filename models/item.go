// models/item.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

const ItemTable = "dn_items"
const RequestTable = "dn_requests"
const CounterTable = "dn_counters"

type ItemStatus string

const (
	ItemAvailable ItemStatus = "available"
	ItemReserved  ItemStatus = "reserved"
	ItemDonated   ItemStatus = "donated"
)

type Category string

const (
	CategoryClothing    Category = "clothing"
	CategoryToys        Category = "toys"
	CategoryBooks       Category = "books"
	CategoryShoes       Category = "shoes"
	CategoryAccessories Category = "accessories"
	CategoryOther       Category = "other"
)

type Condition string

const (
	ConditionNew     Condition = "new"
	ConditionLikeNew Condition = "like-new"
	ConditionUsed    Condition = "used"
)

// Item is a donation listing. Status is driven by the request lifecycle only.
type Item struct {
	ID          string     `gorm:"type:uuid;primaryKey" json:"id"`
	DonorID     string     `gorm:"size:128;index;not null" json:"donorId"`
	DonorName   string     `gorm:"size:255" json:"donorName"`
	Name        string     `gorm:"size:200;not null" json:"name"`
	Description string     `gorm:"type:text;not null" json:"description"`
	Category    Category   `gorm:"size:40;index;not null" json:"category"`
	Condition   Condition  `gorm:"size:20;index;not null" json:"condition"`
	Size        *string    `gorm:"size:40" json:"size"`
	Images      StringList `gorm:"type:text" json:"images"`
	Status      ItemStatus `gorm:"size:20;index;not null;default:'available'" json:"status"`
	CreatedAt   time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	// 软删除：保留捐赠者历史
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Item) TableName() string { return ItemTable }

// FirstImage returns the cover image or nil when the item has none.
func (it *Item) FirstImage() *string {
	if len(it.Images) == 0 {
		return nil
	}
	img := it.Images[0]
	return &img
}

// ItemInput carries the descriptive fields accepted on creation.
type ItemInput struct {
	Name        string    `json:"name" validate:"required,max=200"`
	Description string    `json:"description" validate:"required,max=5000"`
	Category    Category  `json:"category" validate:"required,oneof=clothing toys books shoes accessories other"`
	Condition   Condition `json:"condition" validate:"required,oneof=new like-new used"`
	Size        string    `json:"size" validate:"max=40"`
	Images      []string  `json:"images" validate:"max=5"`
}

// ItemPatch is a partial update; nil fields are left untouched.
// A non-nil empty Size clears the size.
type ItemPatch struct {
	Name        *string    `json:"name" validate:"omitempty,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	Category    *Category  `json:"category" validate:"omitempty,oneof=clothing toys books shoes accessories other"`
	Condition   *Condition `json:"condition" validate:"omitempty,oneof=new like-new used"`
	Size        *string    `json:"size" validate:"omitempty,max=40"`
	Images      *[]string  `json:"images" validate:"omitempty,max=5"`
}

// ItemFilter selects items for listing. Zero values mean "any".
type ItemFilter struct {
	Category  Category
	Condition Condition
	DonorID   string
	Status    ItemStatus
	Limit     int
}

// StringList is stored as a JSON array in a text column so the same schema
// works on Postgres and SQLite.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		return errors.New("StringList: unsupported scan type")
	}
	if len(b) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(b, (*[]string)(l))
}
