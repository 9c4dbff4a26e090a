package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WellWish struct {
	ID        string    `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	Name      string    `gorm:"size:150" bson:"name" json:"name"`
	Email     string    `gorm:"size:255" bson:"email,omitempty" json:"email,omitempty"`
	Message   string    `gorm:"type:text" bson:"message" json:"message"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	CreatedAt time.Time `gorm:"index;autoCreateTime:false" bson:"createdAt" json:"createdAt"`
}

func (w *WellWish) EnsureID() {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
}

func (w *WellWish) BeforeCreate(tx *gorm.DB) error {
	w.EnsureID()
	return nil
}
