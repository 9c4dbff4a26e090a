package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ResponseYes = "yes"
	ResponseNo  = "no"
)

// Invitation is the RSVP record, one per email.
type Invitation struct {
	ID    string `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	Email string `gorm:"uniqueIndex;size:255" bson:"email" json:"email"`

	// attendee names, stored as a JSON array
	Names datatypes.JSONSlice[string] `bson:"names" json:"names"`

	// nil means the guest has not answered yet
	Response *string `gorm:"size:16;index" bson:"response,omitempty" json:"response"`
	Message  string  `gorm:"type:text" bson:"message,omitempty" json:"message,omitempty"`

	GuestCount      int    `bson:"guestCount" json:"guestCount"`
	InvitedBy       string `gorm:"size:100;index" bson:"invitedBy,omitempty" json:"invitedBy,omitempty"`
	InvitationValid bool   `bson:"invitationValid" json:"invitationValid"`

	InvitedPerson      string `gorm:"size:150" bson:"invitedPerson,omitempty" json:"invitedPerson,omitempty"`
	PersonalizedGender string `gorm:"size:1" bson:"personalizedGender,omitempty" json:"personalizedGender,omitempty"`

	PossibleInvitesInvited *int `bson:"possibleInvitesInvited,omitempty" json:"possibleInvitesInvited,omitempty"`

	Timestamp time.Time  `bson:"timestamp" json:"timestamp"`
	CreatedAt time.Time  `gorm:"index;autoCreateTime:false" bson:"createdAt" json:"createdAt"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false" bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

func (i *Invitation) EnsureID() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
}

func (i *Invitation) BeforeCreate(tx *gorm.DB) error {
	i.EnsureID()
	return nil
}

// ResponseValue returns the normalized response, "" when pending.
func (i Invitation) ResponseValue() string {
	if i.Response == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*i.Response))
}

// Capacity is the number of seats granted to the party.
func (i Invitation) Capacity() int {
	if i.PossibleInvitesInvited != nil {
		return *i.PossibleInvitesInvited
	}
	return i.GuestCount
}
