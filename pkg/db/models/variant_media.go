package models

import (
	"time"

	"github.com/google/uuid"
)

// VariantMedia stores ordered images for a variant. ObjectID plus Name locate
// the blob under the media directory.
type VariantMedia struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	VariantID uuid.UUID `gorm:"column:variant_id;type:uuid;not null;index"`
	ObjectID  uuid.UUID `gorm:"column:object_id;type:uuid;not null"`
	Name      string    `gorm:"column:name;not null"`
	Src       string    `gorm:"column:src;not null"`
	Alt       string    `gorm:"column:alt;not null;default:''"`
	Position  int       `gorm:"column:position;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (VariantMedia) TableName() string { return "variant_media" }
