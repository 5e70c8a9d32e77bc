package models

import (
	"time"
)

// AllergyDisplayMode controls whether and how allergy information is appended
// to dish names in meal responses.
type AllergyDisplayMode string

const (
	AllergyDisplayNone     AllergyDisplayMode = "none"
	AllergyDisplayFullText AllergyDisplayMode = "full_text"
	AllergyDisplayCodes    AllergyDisplayMode = "codes"
)

// UserPreference is a per-user grade/class registration, keyed by the
// platform-prefixed SHA-256 hash of the platform user id. The raw id is never
// stored.
type UserPreference struct {
	UserKey            string             `gorm:"primaryKey;size:80" json:"user_key"`
	Grade              int                `gorm:"not null;default:0" json:"grade"`
	ClassNumber        int                `gorm:"not null;default:0" json:"class_number"`
	AllergyDisplayMode AllergyDisplayMode `gorm:"size:16;not null;default:'none'" json:"allergy_display_mode"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// Registered reports whether the record carries a usable grade/class pair.
// A record with both fields zero is equivalent to no record at all.
func (p *UserPreference) Registered() bool {
	return p != nil && (p.Grade != 0 || p.ClassNumber != 0)
}
