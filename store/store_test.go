package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/useattune/attune/store"
	"github.com/useattune/attune/store/db/sqlite"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	driver, err := sqlite.NewDB(filepath.Join(t.TempDir(), "attune_test.db"))
	require.NoError(t, err)
	s := store.New(driver)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func createTestUser(t *testing.T, s *store.Store, email string) *store.User {
	t.Helper()
	user, err := s.CreateUser(context.Background(), &store.User{
		Email:        email,
		Nickname:     "tester",
		PasswordHash: "$2a$10$notarealhashbutlookslikeone",
	})
	require.NoError(t, err)
	return user
}

func TestUserCreateAndFind(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	user := createTestUser(t, s, "ada@example.com")
	assert.NotZero(t, user.ID)
	assert.NotZero(t, user.CreatedTs)

	email := "ada@example.com"
	found, err := s.GetUser(ctx, &store.FindUser{Email: &email})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)

	missing := "nobody@example.com"
	found, err = s.GetUser(ctx, &store.FindUser{Email: &missing})
	require.NoError(t, err)
	assert.Nil(t, found)

	_, err = s.CreateUser(ctx, &store.User{Email: "ada@example.com", PasswordHash: "x"})
	assert.Error(t, err, "duplicate email must be rejected")
}

func TestUserUpdate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	user := createTestUser(t, s, "ada@example.com")

	nickname := "ada l."
	updated, err := s.UpdateUser(ctx, &store.UpdateUser{ID: user.ID, Nickname: &nickname})
	require.NoError(t, err)
	assert.Equal(t, "ada l.", updated.Nickname)
	assert.Equal(t, user.Email, updated.Email)
}

func TestProfileUpsert(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	user := createTestUser(t, s, "ada@example.com")

	got, err := s.GetProfile(ctx, &store.FindProfile{UserID: user.ID})
	require.NoError(t, err)
	assert.Nil(t, got, "no profile before onboarding")

	_, err = s.UpsertProfile(ctx, &store.Profile{
		UserID:          user.ID,
		DisplayName:     "Ada",
		FocusAreas:      []string{"sleep", "movement"},
		WakeTime:        "06:30",
		SleepTime:       "22:45",
		ReminderEnabled: true,
		Onboarded:       true,
	})
	require.NoError(t, err)

	got, err = s.GetProfile(ctx, &store.FindProfile{UserID: user.ID})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Ada", got.DisplayName)
	assert.Equal(t, []string{"sleep", "movement"}, got.FocusAreas)
	assert.True(t, got.Onboarded)

	// Second save overwrites in place.
	_, err = s.UpsertProfile(ctx, &store.Profile{
		UserID:      user.ID,
		DisplayName: "Ada",
		FocusAreas:  []string{"mindfulness"},
		WakeTime:    "07:00",
		SleepTime:   "23:00",
		Onboarded:   true,
	})
	require.NoError(t, err)

	got, err = s.GetProfile(ctx, &store.FindProfile{UserID: user.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"mindfulness"}, got.FocusAreas)
	assert.False(t, got.ReminderEnabled)
}

func TestRoutineLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	user := createTestUser(t, s, "ada@example.com")

	first, err := s.CreateRoutine(ctx, &store.Routine{
		UID:       "r_1",
		CreatorID: user.ID,
		Title:     "Morning stretch",
		Emoji:     "🌅",
		TimeOfDay: "morning",
		Weekdays:  []string{"mon", "wed", "fri"},
		Position:  1,
	})
	require.NoError(t, err)
	assert.NotZero(t, first.ID)

	_, err = s.CreateRoutine(ctx, &store.Routine{
		UID:       "r_0",
		CreatorID: user.ID,
		Title:     "Evening wind-down",
		TimeOfDay: "evening",
		Position:  0,
	})
	require.NoError(t, err)

	list, err := s.ListRoutines(ctx, &store.FindRoutine{CreatorID: &user.ID})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "r_0", list[0].UID, "ordered by position")
	assert.Equal(t, []string{"mon", "wed", "fri"}, list[1].Weekdays)

	title := "Sunrise stretch"
	archived := true
	updated, err := s.UpdateRoutine(ctx, &store.UpdateRoutine{UID: "r_1", Title: &title, Archived: &archived})
	require.NoError(t, err)
	assert.Equal(t, "Sunrise stretch", updated.Title)
	assert.True(t, updated.Archived)

	active := false
	list, err = s.ListRoutines(ctx, &store.FindRoutine{CreatorID: &user.ID, Archived: &active})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "r_0", list[0].UID)

	require.NoError(t, s.DeleteRoutine(ctx, "r_0"))
	list, err = s.ListRoutines(ctx, &store.FindRoutine{CreatorID: &user.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestCheckInOnePerDay(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	user := createTestUser(t, s, "ada@example.com")

	first, err := s.UpsertCheckIn(ctx, &store.CheckIn{
		UID:               "c_1",
		CreatorID:         user.ID,
		Date:              "2026-08-22",
		Mood:              3,
		Energy:            2,
		Note:              "slow morning",
		CompletedRoutines: []string{"r_1"},
	})
	require.NoError(t, err)

	// Same date again: values replaced, row identity kept.
	second, err := s.UpsertCheckIn(ctx, &store.CheckIn{
		UID:       "c_2",
		CreatorID: user.ID,
		Date:      "2026-08-22",
		Mood:      4,
		Energy:    4,
		Note:      "better after a walk",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.UID, second.UID)

	list, err := s.ListCheckIns(ctx, &store.FindCheckIn{CreatorID: &user.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int32(4), list[0].Mood)
	assert.Equal(t, "better after a walk", list[0].Note)
	assert.Empty(t, list[0].CompletedRoutines)
}

func TestCheckInDateRange(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	user := createTestUser(t, s, "ada@example.com")

	for i, date := range []string{"2026-08-19", "2026-08-20", "2026-08-21"} {
		_, err := s.UpsertCheckIn(ctx, &store.CheckIn{
			UID:       "c_" + date,
			CreatorID: user.ID,
			Date:      date,
			Mood:      int32(i + 1),
			Energy:    3,
		})
		require.NoError(t, err)
	}

	from, to := "2026-08-20", "2026-08-21"
	list, err := s.ListCheckIns(ctx, &store.FindCheckIn{CreatorID: &user.ID, DateFrom: &from, DateTo: &to})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2026-08-21", list[0].Date, "newest first")
	assert.Equal(t, "2026-08-20", list[1].Date)
}
