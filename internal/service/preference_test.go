package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hgyoseo/HDMeal-Chatbot/internal/models"
	"github.com/hgyoseo/HDMeal-Chatbot/internal/testhelpers"
)

func TestPreferenceGetMissing(t *testing.T) {
	store := NewPreferenceStore(testhelpers.SetupTestDB(t))

	pref, err := store.Get(context.Background(), "KT-missing")
	assert.NoError(t, err)
	assert.Nil(t, pref)
}

func TestPreferenceRegisterAndGet(t *testing.T) {
	store := NewPreferenceStore(testhelpers.SetupTestDB(t))
	ctx := context.Background()

	outcome, err := store.Upsert(ctx, "KT-user", 2, 3)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRegistered, outcome)

	pref, err := store.Get(ctx, "KT-user")
	require.NoError(t, err)
	require.NotNil(t, pref)
	assert.Equal(t, 2, pref.Grade)
	assert.Equal(t, 3, pref.ClassNumber)
	assert.Equal(t, models.AllergyDisplayNone, pref.AllergyDisplayMode)
}

func TestPreferenceUpsertUnchanged(t *testing.T) {
	store := NewPreferenceStore(testhelpers.SetupTestDB(t))
	ctx := context.Background()

	_, err := store.Upsert(ctx, "KT-user", 1, 1)
	require.NoError(t, err)

	outcome, err := store.Upsert(ctx, "KT-user", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnchanged, outcome)
}

func TestPreferenceUpsertReplacesRecord(t *testing.T) {
	store := NewPreferenceStore(testhelpers.SetupTestDB(t))
	ctx := context.Background()

	_, err := store.Upsert(ctx, "KT-user", 1, 1)
	require.NoError(t, err)
	require.NoError(t, store.SetAllergyDisplayMode(ctx, "KT-user", models.AllergyDisplayCodes))

	outcome, err := store.Upsert(ctx, "KT-user", 3, 9)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, outcome)

	pref, err := store.Get(ctx, "KT-user")
	require.NoError(t, err)
	require.NotNil(t, pref)
	assert.Equal(t, 3, pref.Grade)
	assert.Equal(t, 9, pref.ClassNumber)
	// An update replaces grade and class but keeps the display setting.
	assert.Equal(t, models.AllergyDisplayCodes, pref.AllergyDisplayMode)
}

func TestPreferenceAllergyModeDefaultsToNone(t *testing.T) {
	store := NewPreferenceStore(testhelpers.SetupTestDB(t))

	mode, err := store.AllergyDisplayMode(context.Background(), "KT-nobody")
	assert.NoError(t, err)
	assert.Equal(t, models.AllergyDisplayNone, mode)
}

func TestPreferenceDelete(t *testing.T) {
	store := NewPreferenceStore(testhelpers.SetupTestDB(t))
	ctx := context.Background()

	outcome, err := store.Delete(ctx, "KT-user")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotFound, outcome)

	_, err = store.Upsert(ctx, "KT-user", 1, 2)
	require.NoError(t, err)

	outcome, err = store.Delete(ctx, "KT-user")
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeleted, outcome)

	pref, err := store.Get(ctx, "KT-user")
	require.NoError(t, err)
	assert.Nil(t, pref)
}
