package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/hgyoseo/HDMeal-Chatbot/internal/models"
)

// UpsertOutcome describes what an Upsert did.
type UpsertOutcome string

const (
	OutcomeUnchanged  UpsertOutcome = "Unchanged"
	OutcomeUpdated    UpsertOutcome = "Updated"
	OutcomeRegistered UpsertOutcome = "Registered"
)

// DeleteOutcome describes what a Delete did.
type DeleteOutcome string

const (
	OutcomeDeleted  DeleteOutcome = "Deleted"
	OutcomeNotFound DeleteOutcome = "NotFound"
)

// PreferenceStore persists per-user grade/class registrations. "No record"
// and store failure are distinct: Get returns (nil, nil) for an unregistered
// user and a non-nil error only when the store itself fails.
type PreferenceStore struct {
	db *gorm.DB
}

func NewPreferenceStore(db *gorm.DB) *PreferenceStore {
	return &PreferenceStore{db: db}
}

// Get returns the stored preference for the hashed user key, or (nil, nil)
// when the user has no record. A record with both grade and class unset is
// treated the same as no record.
func (s *PreferenceStore) Get(ctx context.Context, userKey string) (*models.UserPreference, error) {
	var pref models.UserPreference
	err := s.db.WithContext(ctx).Where("user_key = ?", userKey).First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !pref.Registered() {
		return nil, nil
	}
	return &pref, nil
}

// Upsert replaces the user's record with the given grade/class pair. The
// whole operation runs in a transaction so concurrent callers cannot
// interleave. Returns Unchanged when the stored pair already matches,
// Updated when an existing record was replaced, Registered otherwise.
func (s *PreferenceStore) Upsert(ctx context.Context, userKey string, grade, classNumber int) (UpsertOutcome, error) {
	outcome := OutcomeRegistered

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.UserPreference
		err := tx.Where("user_key = ?", userKey).First(&existing).Error
		switch {
		case err == nil:
			if existing.Grade == grade && existing.ClassNumber == classNumber {
				outcome = OutcomeUnchanged
				return nil
			}
			outcome = OutcomeUpdated
			// Full replacement, never a merge. The allergy display mode is a
			// separate setting managed through the portal and carries over.
			if err := tx.Delete(&models.UserPreference{}, "user_key = ?", userKey).Error; err != nil {
				return err
			}
			return tx.Create(&models.UserPreference{
				UserKey:            userKey,
				Grade:              grade,
				ClassNumber:        classNumber,
				AllergyDisplayMode: existing.AllergyDisplayMode,
			}).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(&models.UserPreference{
				UserKey:            userKey,
				Grade:              grade,
				ClassNumber:        classNumber,
				AllergyDisplayMode: models.AllergyDisplayNone,
			}).Error
		default:
			return err
		}
	})
	if err != nil {
		return "", err
	}
	return outcome, nil
}

// SetAllergyDisplayMode updates how allergy information is rendered for the
// user. Creates a blank record when none exists yet.
func (s *PreferenceStore) SetAllergyDisplayMode(ctx context.Context, userKey string, mode models.AllergyDisplayMode) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.UserPreference
		err := tx.Where("user_key = ?", userKey).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&models.UserPreference{
				UserKey:            userKey,
				AllergyDisplayMode: mode,
			}).Error
		}
		if err != nil {
			return err
		}
		return tx.Model(&existing).Update("allergy_display_mode", mode).Error
	})
}

// AllergyDisplayMode returns the user's display mode, defaulting to none for
// unregistered users. Unlike Get, this reads the raw record so a user who
// cleared their grade/class keeps their display setting.
func (s *PreferenceStore) AllergyDisplayMode(ctx context.Context, userKey string) (models.AllergyDisplayMode, error) {
	var pref models.UserPreference
	err := s.db.WithContext(ctx).Where("user_key = ?", userKey).First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.AllergyDisplayNone, nil
	}
	if err != nil {
		return models.AllergyDisplayNone, err
	}
	if pref.AllergyDisplayMode == "" {
		return models.AllergyDisplayNone, nil
	}
	return pref.AllergyDisplayMode, nil
}

// Delete removes the user's record entirely. Used both for explicit delete
// requests and for bulk usage-data deletion.
func (s *PreferenceStore) Delete(ctx context.Context, userKey string) (DeleteOutcome, error) {
	res := s.db.WithContext(ctx).Delete(&models.UserPreference{}, "user_key = ?", userKey)
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected == 0 {
		return OutcomeNotFound, nil
	}
	return OutcomeDeleted, nil
}
