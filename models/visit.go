package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Visit is one landing page beacon. IPHash is never returned by listing endpoints.
type Visit struct {
	ID                 string    `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	InvitedBy          string    `gorm:"size:100;index" bson:"invitedBy" json:"invitedBy"`
	InvitedPerson      string    `gorm:"size:150" bson:"invitedPerson,omitempty" json:"invitedPerson,omitempty"`
	PersonalizedGender string    `gorm:"size:1" bson:"personalizedGender,omitempty" json:"personalizedGender,omitempty"`
	GuestLimit         int       `bson:"guestLimit" json:"guestLimit"`
	SessionID          string    `gorm:"size:100;index" bson:"sessionId" json:"sessionId"`
	IPHash             string    `gorm:"size:64;index" bson:"ipHash" json:"ipHash,omitempty"`
	UserAgent          string    `gorm:"size:200" bson:"userAgent,omitempty" json:"userAgent,omitempty"`
	Referrer           string    `gorm:"size:200" bson:"referrer,omitempty" json:"referrer,omitempty"`
	VisitedAt          time.Time `gorm:"index" bson:"visitedAt" json:"visitedAt"`
}

func (v *Visit) EnsureID() {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
}

func (v *Visit) BeforeCreate(tx *gorm.DB) error {
	v.EnsureID()
	return nil
}
