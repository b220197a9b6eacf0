package tracker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jon4hz/mealtrack/internal/config"
	"github.com/jon4hz/mealtrack/internal/database"
	dbmock "github.com/jon4hz/mealtrack/internal/database/mock"
	"github.com/jon4hz/mealtrack/internal/notify/email"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingNotifier struct {
	mu        sync.Mutex
	reminders []email.Reminder
	err       error
}

func (n *recordingNotifier) SendReminder(ctx context.Context, reminder email.Reminder) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.reminders = append(n.reminders, reminder)
	return nil
}

func (n *recordingNotifier) Sent() []email.Reminder {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]email.Reminder(nil), n.reminders...)
}

func testConfig() *config.Config {
	return &config.Config{
		SessionMaxAge:          3600,
		SessionCleanupSchedule: "0 * * * *",
		Timezone:               "UTC",
		Cache:                  &config.CacheConfig{Type: config.CacheTypeMemory, TTL: 60},
		Reminders:              &config.RemindersConfig{Concurrency: 2},
	}
}

type TrackerTestSuite struct {
	suite.Suite
	ctx      context.Context
	db       *dbmock.MockDB
	clock    *fakeClock
	notifier *recordingNotifier
	tracker  *Tracker
}

func TestTrackerTestSuite(t *testing.T) {
	suite.Run(t, new(TrackerTestSuite))
}

func (s *TrackerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = dbmock.NewMockDB()
	s.clock = &fakeClock{now: time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)}
	s.notifier = &recordingNotifier{}

	tr, err := New(testConfig(), s.db,
		WithClock(s.clock.Now),
		WithNotifier(s.notifier),
		WithPasswordIterations(1000),
	)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = tr.Close() })
	s.tracker = tr
}

func (s *TrackerTestSuite) register(email string) *database.User {
	user, err := s.tracker.Register(s.ctx, "", email, "secret")
	s.Require().NoError(err)
	return user
}

func (s *TrackerTestSuite) addMeal(userID string, calories float64, ago time.Duration) *database.Meal {
	meal, err := s.tracker.AddMeal(s.ctx, userID, NewMeal{
		Name:       "meal",
		Calories:   lo.ToPtr(calories),
		ClientTime: s.clock.Now().Add(-ago).Format(time.RFC3339),
	})
	s.Require().NoError(err)
	return meal
}

// Credential store

func (s *TrackerTestSuite) TestRegisterAndVerify() {
	user, err := s.tracker.Register(s.ctx, "", "  Alice@Example.COM ", "hunter2")
	s.Require().NoError(err)
	s.Equal("alice@example.com", user.Email)
	s.Equal("alice", user.Name)
	s.NotEmpty(user.PasswordSalt)
	s.NotEqual("hunter2", user.PasswordHash)

	got, err := s.tracker.Verify(s.ctx, "alice@example.com", "hunter2")
	s.Require().NoError(err)
	s.Equal(user.ID, got.ID)

	_, err = s.tracker.Verify(s.ctx, "alice@example.com", "wrong")
	s.ErrorIs(err, ErrInvalidCredentials)

	_, err = s.tracker.Verify(s.ctx, "nobody@example.com", "hunter2")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *TrackerTestSuite) TestRegisterValidation() {
	_, err := s.tracker.Register(s.ctx, "Alice", "", "secret")
	s.ErrorIs(err, ErrMissingField)

	_, err = s.tracker.Register(s.ctx, "Alice", "alice@example.com", "  ")
	s.ErrorIs(err, ErrMissingField)

	s.register("alice@example.com")
	_, err = s.tracker.Register(s.ctx, "Other", "ALICE@example.com", "secret")
	s.ErrorIs(err, ErrDuplicateEmail)
}

func (s *TrackerTestSuite) TestSaltsAreUnique() {
	a := s.register("a@example.com")
	b := s.register("b@example.com")
	s.NotEqual(a.PasswordSalt, b.PasswordSalt)
	s.NotEqual(a.PasswordHash, b.PasswordHash)
}

func (s *TrackerTestSuite) TestChangePassword() {
	user := s.register("alice@example.com")

	err := s.tracker.ChangePassword(s.ctx, user.ID, "wrong", "next")
	s.ErrorIs(err, ErrInvalidCredentials)
	stored, err := s.db.GetUserByID(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Equal(user.PasswordHash, stored.PasswordHash)
	s.Equal(user.PasswordSalt, stored.PasswordSalt)

	s.ErrorIs(s.tracker.ChangePassword(s.ctx, user.ID, "secret", ""), ErrMissingField)

	s.Require().NoError(s.tracker.ChangePassword(s.ctx, user.ID, "secret", "next"))
	stored, err = s.db.GetUserByID(s.ctx, user.ID)
	s.Require().NoError(err)
	s.NotEqual(user.PasswordSalt, stored.PasswordSalt)

	_, err = s.tracker.Verify(s.ctx, "alice@example.com", "secret")
	s.ErrorIs(err, ErrInvalidCredentials)
	_, err = s.tracker.Verify(s.ctx, "alice@example.com", "next")
	s.NoError(err)
}

func (s *TrackerTestSuite) TestUpdateProfile() {
	alice := s.register("alice@example.com")
	s.register("bob@example.com")

	_, err := s.tracker.UpdateProfile(s.ctx, alice.ID, "Alice", " ")
	s.ErrorIs(err, ErrMissingField)

	_, err = s.tracker.UpdateProfile(s.ctx, alice.ID, "Alice", "BOB@example.com")
	s.ErrorIs(err, ErrDuplicateEmail)

	user, err := s.tracker.UpdateProfile(s.ctx, alice.ID, "Alice", "alice@new.example.com")
	s.Require().NoError(err)
	s.Equal("Alice", user.Name)
	s.Equal("alice@new.example.com", user.Email)

	user, err = s.tracker.UpdateProfile(s.ctx, alice.ID, "", "alice@new.example.com")
	s.Require().NoError(err)
	s.Equal("Alice", user.Name)
}

func (s *TrackerTestSuite) TestLoginOrCreateExternal() {
	created, err := s.tracker.LoginOrCreateExternal(s.ctx, "Carol", "Carol@Example.com")
	s.Require().NoError(err)
	s.False(created.HasPassword())

	again, err := s.tracker.LoginOrCreateExternal(s.ctx, "Carol", "carol@example.com")
	s.Require().NoError(err)
	s.Equal(created.ID, again.ID)

	_, err = s.tracker.Verify(s.ctx, "carol@example.com", "")
	s.ErrorIs(err, ErrInvalidCredentials)
}

// Session resolver

func (s *TrackerTestSuite) TestSessionLifecycle() {
	user := s.register("alice@example.com")

	token, err := s.tracker.IssueSession(s.ctx, user.ID)
	s.Require().NoError(err)
	s.NotEmpty(token)

	got, err := s.tracker.ResolveSession(s.ctx, token)
	s.Require().NoError(err)
	s.Equal(user.ID, got.ID)

	s.Require().NoError(s.tracker.EndSession(s.ctx, token))
	_, err = s.tracker.ResolveSession(s.ctx, token)
	s.ErrorIs(err, ErrUnauthorized)
}

func (s *TrackerTestSuite) TestResolveSessionRejects() {
	_, err := s.tracker.ResolveSession(s.ctx, "")
	s.ErrorIs(err, ErrUnauthorized)

	_, err = s.tracker.ResolveSession(s.ctx, "unknown")
	s.ErrorIs(err, ErrUnauthorized)

	// a session whose user vanished
	s.Require().NoError(s.db.CreateSession(s.ctx, &database.Session{
		Token:     "orphan",
		UserID:    "deleted-user",
		ExpiresAt: s.clock.Now().Add(time.Hour),
	}))
	_, err = s.tracker.ResolveSession(s.ctx, "orphan")
	s.ErrorIs(err, ErrUnauthorized)
}

func (s *TrackerTestSuite) TestSessionExpiry() {
	user := s.register("alice@example.com")
	token, err := s.tracker.IssueSession(s.ctx, user.ID)
	s.Require().NoError(err)

	s.clock.Advance(time.Hour)
	_, err = s.tracker.ResolveSession(s.ctx, token)
	s.ErrorIs(err, ErrUnauthorized)

	s.Require().NoError(s.tracker.PurgeExpiredSessions(s.ctx))
	s.Equal(0, s.db.SessionCount())
}

// Meal ledger

func (s *TrackerTestSuite) TestAddMeal() {
	user := s.register("alice@example.com")

	meal, err := s.tracker.AddMeal(s.ctx, user.ID, NewMeal{Name: " Toast ", Calories: lo.ToPtr(-50.0)})
	s.Require().NoError(err)
	s.Equal("Toast", meal.Name)
	s.Zero(meal.Calories)
	s.Equal(s.clock.Now(), meal.Timestamp)
	s.Nil(meal.PresetID)

	meal, err = s.tracker.AddMeal(s.ctx, user.ID, NewMeal{Name: "Water", Calories: lo.ToPtr(0.0), PresetID: "p1"})
	s.Require().NoError(err)
	s.Zero(meal.Calories)
	s.Require().NotNil(meal.PresetID)
	s.Equal("p1", *meal.PresetID)

	_, err = s.tracker.AddMeal(s.ctx, user.ID, NewMeal{Name: "", Calories: lo.ToPtr(10.0)})
	s.ErrorIs(err, ErrMissingField)
	_, err = s.tracker.AddMeal(s.ctx, user.ID, NewMeal{Name: "Soup"})
	s.ErrorIs(err, ErrMissingField)

	meals, err := s.tracker.ListMeals(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Len(meals, 2)
}

func (s *TrackerTestSuite) TestAddMealClientTime() {
	user := s.register("alice@example.com")

	tests := []struct {
		clientTime string
		want       time.Time
	}{
		{"2024-05-19T08:30:00Z", time.Date(2024, 5, 19, 8, 30, 0, 0, time.UTC)},
		{"2024-05-19T08:30", time.Date(2024, 5, 19, 8, 30, 0, 0, time.UTC)},
		{"1716107400000", time.UnixMilli(1716107400000)},
		{"not a time", s.clock.Now()},
	}
	for _, tt := range tests {
		meal, err := s.tracker.AddMeal(s.ctx, user.ID, NewMeal{Name: "x", Calories: lo.ToPtr(1.0), ClientTime: tt.clientTime})
		s.Require().NoError(err)
		s.True(tt.want.Equal(meal.Timestamp), "clientTime %q", tt.clientTime)
	}
}

func (s *TrackerTestSuite) TestAddCombo() {
	user := s.register("alice@example.com")

	meal, err := s.tracker.AddCombo(s.ctx, user.ID, Combo{
		Items: []ComboItem{{Name: "Burger", Calories: 550}, {Name: "Fries", Calories: 320}, {Name: "Cola", Calories: 140}},
	})
	s.Require().NoError(err)
	s.Equal("Burger, Fries, Cola", meal.Name)
	s.InDelta(1010, meal.Calories, 0.001)

	meal, err = s.tracker.AddCombo(s.ctx, user.ID, Combo{
		Name:  "Lunch",
		Items: []ComboItem{{Name: "Salad", Calories: 200}},
	})
	s.Require().NoError(err)
	s.Equal("Lunch", meal.Name)

	_, err = s.tracker.AddCombo(s.ctx, user.ID, Combo{Name: "Empty"})
	s.ErrorIs(err, ErrMissingField)
}

func (s *TrackerTestSuite) TestEditMeal() {
	alice := s.register("alice@example.com")
	bob := s.register("bob@example.com")
	meal := s.addMeal(alice.ID, 300, time.Hour)

	_, err := s.tracker.EditMeal(s.ctx, bob.ID, meal.ID, MealPatch{Calories: lo.ToPtr(1.0)})
	s.ErrorIs(err, ErrNotFound)

	edited, err := s.tracker.EditMeal(s.ctx, alice.ID, meal.ID, MealPatch{Comments: lo.ToPtr("with butter")})
	s.Require().NoError(err)
	s.Equal("meal", edited.Name)
	s.InDelta(300, edited.Calories, 0.001)
	s.Equal("with butter", edited.Comments)

	edited, err = s.tracker.EditMeal(s.ctx, alice.ID, meal.ID, MealPatch{
		Name:       lo.ToPtr("Pasta"),
		Calories:   lo.ToPtr(-5.0),
		ClientTime: lo.ToPtr("2024-05-18T19:00:00Z"),
	})
	s.Require().NoError(err)
	s.Equal("Pasta", edited.Name)
	s.Zero(edited.Calories)
	s.True(time.Date(2024, 5, 18, 19, 0, 0, 0, time.UTC).Equal(edited.Timestamp))
	s.Equal(alice.ID, edited.UserID)

	_, err = s.tracker.EditMeal(s.ctx, alice.ID, meal.ID, MealPatch{Name: lo.ToPtr(" ")})
	s.ErrorIs(err, ErrMissingField)
	_, err = s.tracker.EditMeal(s.ctx, alice.ID, meal.ID, MealPatch{ClientTime: lo.ToPtr("yesterday")})
	s.ErrorIs(err, ErrInvalidField)
}

func (s *TrackerTestSuite) TestDeleteMeal() {
	alice := s.register("alice@example.com")
	bob := s.register("bob@example.com")
	meal := s.addMeal(alice.ID, 300, time.Hour)

	s.ErrorIs(s.tracker.DeleteMeal(s.ctx, alice.ID, "missing"), ErrNotFound)
	s.ErrorIs(s.tracker.DeleteMeal(s.ctx, bob.ID, meal.ID), ErrNotFound)
	s.Equal(1, s.db.MealCount())

	s.Require().NoError(s.tracker.DeleteMeal(s.ctx, alice.ID, meal.ID))
	s.Equal(0, s.db.MealCount())
}

func (s *TrackerTestSuite) TestMealsAreOwnerScoped() {
	alice := s.register("alice@example.com")
	bob := s.register("bob@example.com")
	s.addMeal(alice.ID, 100, time.Hour)
	s.addMeal(bob.ID, 200, time.Hour)

	meals, err := s.tracker.ListMeals(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Require().Len(meals, 1)
	s.Equal(alice.ID, meals[0].UserID)
}

func (s *TrackerTestSuite) TestLogPreset() {
	alice := s.register("alice@example.com")
	bob := s.register("bob@example.com")

	preset, err := s.tracker.CreatePreset(s.ctx, alice.ID, NewPreset{Name: "Oatmeal", Calories: lo.ToPtr(350.0)})
	s.Require().NoError(err)

	meal, err := s.tracker.LogPreset(s.ctx, alice.ID, preset.ID, "")
	s.Require().NoError(err)
	s.Equal("Oatmeal", meal.Name)
	s.InDelta(350, meal.Calories, 0.001)
	s.Require().NotNil(meal.PresetID)
	s.Equal(preset.ID, *meal.PresetID)

	_, err = s.tracker.LogPreset(s.ctx, bob.ID, preset.ID, "")
	s.ErrorIs(err, ErrNotFound)

	// deleting the preset keeps the meal
	s.Require().NoError(s.tracker.DeletePreset(s.ctx, alice.ID, preset.ID))
	meals, err := s.tracker.ListMeals(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Len(meals, 1)
}

// Aggregation

func (s *TrackerTestSuite) TestStats() {
	user := s.register("alice@example.com")

	summary, err := s.tracker.Stats(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Zero(summary.Daily)
	s.Equal("0.0", summary.Avg7)
	s.Equal("0.0", summary.Avg30)

	s.addMeal(user.ID, 100, 2*time.Hour)
	s.addMeal(user.ID, 200, 3*24*time.Hour)
	s.addMeal(user.ID, 300, 10*24*time.Hour)
	s.addMeal(user.ID, 400, 40*24*time.Hour)

	summary, err = s.tracker.Stats(s.ctx, user.ID)
	s.Require().NoError(err)
	s.InDelta(100, summary.Daily, 0.001)
	s.InDelta(300, summary.Weekly, 0.001)
	s.InDelta(600, summary.Monthly, 0.001)
	s.Equal("42.9", summary.Avg7)
	s.Equal("20.0", summary.Avg30)
}

func (s *TrackerTestSuite) TestDashboard() {
	user := s.register("alice@example.com")

	d, err := s.tracker.Dashboard(s.ctx, user.ID, nil)
	s.Require().NoError(err)
	s.Nil(d.LastMealAt)
	s.Zero(d.TodayCount)
	s.Zero(d.Remaining)

	_, err = s.tracker.UpdateSettings(s.ctx, user.ID, SettingsPatch{CalorieGoal: lo.ToPtr(2000.0)})
	s.Require().NoError(err)

	s.addMeal(user.ID, 500, 3*time.Hour)
	s.addMeal(user.ID, 700, 13*time.Hour) // yesterday in UTC

	d, err = s.tracker.Dashboard(s.ctx, user.ID, nil)
	s.Require().NoError(err)
	s.Equal(1, d.TodayCount)
	s.InDelta(500, d.TodayCalories, 0.001)
	s.InDelta(2000, d.CalorieGoal, 0.001)
	s.InDelta(1500, d.Remaining, 0.001)
	s.Require().NotNil(d.LastMealAt)
	s.Equal("3 hours ago", d.LastMealAgo)
}

func (s *TrackerTestSuite) TestDashboardRemainingNeverNegative() {
	user := s.register("alice@example.com")
	_, err := s.tracker.UpdateSettings(s.ctx, user.ID, SettingsPatch{CalorieGoal: lo.ToPtr(400.0)})
	s.Require().NoError(err)
	s.addMeal(user.ID, 900, time.Hour)

	d, err := s.tracker.Dashboard(s.ctx, user.ID, time.UTC)
	s.Require().NoError(err)
	s.Zero(d.Remaining)
}

// Settings

func (s *TrackerTestSuite) TestSettings() {
	user := s.register("alice@example.com")

	settings, err := s.tracker.GetSettings(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Equal(4, settings.ReminderInterval)
	s.Zero(settings.CalorieGoal)
	s.False(s.db.HasSettings(user.ID))

	settings, err = s.tracker.UpdateSettings(s.ctx, user.ID, SettingsPatch{CalorieGoal: lo.ToPtr(1800.0)})
	s.Require().NoError(err)
	s.Equal(4, settings.ReminderInterval)
	s.InDelta(1800, settings.CalorieGoal, 0.001)

	settings, err = s.tracker.UpdateSettings(s.ctx, user.ID, SettingsPatch{ReminderInterval: lo.ToPtr(6)})
	s.Require().NoError(err)
	s.Equal(6, settings.ReminderInterval)
	s.InDelta(1800, settings.CalorieGoal, 0.001)

	_, err = s.tracker.UpdateSettings(s.ctx, user.ID, SettingsPatch{ReminderInterval: lo.ToPtr(0)})
	s.ErrorIs(err, ErrInvalidField)
	_, err = s.tracker.UpdateSettings(s.ctx, user.ID, SettingsPatch{CalorieGoal: lo.ToPtr(-1.0)})
	s.ErrorIs(err, ErrInvalidField)
	_, err = s.tracker.UpdateSettings(s.ctx, user.ID, SettingsPatch{ReminderInterval: lo.ToPtr(MaxReminderInterval + 1)})
	s.ErrorIs(err, ErrInvalidField)
	_, err = s.tracker.UpdateSettings(s.ctx, user.ID, SettingsPatch{ReminderInterval: lo.ToPtr(5_124_096)})
	s.ErrorIs(err, ErrInvalidField)

	settings, err = s.tracker.UpdateSettings(s.ctx, user.ID, SettingsPatch{ReminderInterval: lo.ToPtr(MaxReminderInterval)})
	s.Require().NoError(err)
	s.Equal(MaxReminderInterval, settings.ReminderInterval)
}

// Presets

func (s *TrackerTestSuite) TestPresets() {
	alice := s.register("alice@example.com")
	bob := s.register("bob@example.com")

	_, err := s.tracker.CreatePreset(s.ctx, alice.ID, NewPreset{Name: "Nothing"})
	s.ErrorIs(err, ErrMissingField)
	_, err = s.tracker.CreatePreset(s.ctx, alice.ID, NewPreset{Calories: lo.ToPtr(1.0)})
	s.ErrorIs(err, ErrMissingField)

	preset, err := s.tracker.CreatePreset(s.ctx, alice.ID, NewPreset{
		Name:     "Breakfast",
		Calories: lo.ToPtr(1.0),
		Items:    []PresetItem{{Name: "Eggs", Calories: 150}, {Name: "Toast", Calories: 200}},
	})
	s.Require().NoError(err)
	s.InDelta(350, preset.Calories, 0.001)
	s.Len(preset.Items, 2)

	_, err = s.tracker.UpdatePreset(s.ctx, bob.ID, preset.ID, PresetPatch{Name: lo.ToPtr("Mine")})
	s.ErrorIs(err, ErrNotFound)

	updated, err := s.tracker.UpdatePreset(s.ctx, alice.ID, preset.ID, PresetPatch{
		Items: &[]PresetItem{{Name: "Juice", Calories: 120}},
	})
	s.Require().NoError(err)
	s.Equal("Breakfast", updated.Name)
	s.InDelta(120, updated.Calories, 0.001)
	s.Require().Len(updated.Items, 1)
	s.Equal("Juice", updated.Items[0].Name)

	updated, err = s.tracker.UpdatePreset(s.ctx, alice.ID, preset.ID, PresetPatch{
		Items:    &[]PresetItem{},
		Calories: lo.ToPtr(90.0),
	})
	s.Require().NoError(err)
	s.Empty(updated.Items)
	s.InDelta(90, updated.Calories, 0.001)

	presets, err := s.tracker.ListPresets(s.ctx, bob.ID)
	s.Require().NoError(err)
	s.Empty(presets)

	s.ErrorIs(s.tracker.DeletePreset(s.ctx, bob.ID, preset.ID), ErrNotFound)
	s.Require().NoError(s.tracker.DeletePreset(s.ctx, alice.ID, preset.ID))
}

// Food items

func (s *TrackerTestSuite) TestFoodItems() {
	apple, err := s.tracker.CreateFoodItem(s.ctx, "Apple", lo.ToPtr(95.0))
	s.Require().NoError(err)

	_, err = s.tracker.CreateFoodItem(s.ctx, "apple", lo.ToPtr(80.0))
	s.ErrorIs(err, ErrDuplicateFoodItem)
	_, err = s.tracker.CreateFoodItem(s.ctx, "Pear", nil)
	s.ErrorIs(err, ErrMissingField)

	banana, err := s.tracker.CreateFoodItem(s.ctx, "Banana", lo.ToPtr(105.0))
	s.Require().NoError(err)

	_, err = s.tracker.UpdateFoodItem(s.ctx, banana.ID, FoodItemPatch{Name: lo.ToPtr("APPLE")})
	s.ErrorIs(err, ErrDuplicateFoodItem)

	updated, err := s.tracker.UpdateFoodItem(s.ctx, apple.ID, FoodItemPatch{Calories: lo.ToPtr(90.0)})
	s.Require().NoError(err)
	s.Equal("Apple", updated.Name)
	s.InDelta(90, updated.Calories, 0.001)

	_, err = s.tracker.UpdateFoodItem(s.ctx, "missing", FoodItemPatch{Calories: lo.ToPtr(1.0)})
	s.ErrorIs(err, ErrNotFound)

	items, err := s.tracker.ListFoodItems(s.ctx)
	s.Require().NoError(err)
	s.Len(items, 2)

	s.Require().NoError(s.tracker.DeleteFoodItem(s.ctx, apple.ID))
	s.ErrorIs(s.tracker.DeleteFoodItem(s.ctx, apple.ID), ErrNotFound)
}

// Reminders

func (s *TrackerTestSuite) TestSendDueReminders() {
	alice := s.register("alice@example.com")
	s.register("bob@example.com") // no meals, never reminded

	s.addMeal(alice.ID, 400, 2*time.Hour)

	sent, err := s.tracker.SendDueReminders(s.ctx)
	s.Require().NoError(err)
	s.Zero(sent)

	s.clock.Advance(2 * time.Hour)
	sent, err = s.tracker.SendDueReminders(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, sent)

	reminders := s.notifier.Sent()
	s.Require().Len(reminders, 1)
	s.Equal("alice@example.com", reminders[0].UserEmail)
	s.Equal(4, reminders[0].IntervalHours)

	// only once per last meal
	s.clock.Advance(5 * time.Hour)
	sent, err = s.tracker.SendDueReminders(s.ctx)
	s.Require().NoError(err)
	s.Zero(sent)

	// a new meal re-arms the reminder
	s.addMeal(alice.ID, 100, 0)
	s.clock.Advance(4 * time.Hour)
	sent, err = s.tracker.SendDueReminders(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, sent)
}

func (s *TrackerTestSuite) TestSendDueRemindersDeliveryFailure() {
	alice := s.register("alice@example.com")
	s.addMeal(alice.ID, 400, 5*time.Hour)
	s.notifier.err = context.DeadlineExceeded

	sent, err := s.tracker.SendDueReminders(s.ctx)
	s.Require().NoError(err)
	s.Zero(sent)

	settings, err := s.tracker.GetSettings(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Nil(settings.LastReminderAt)
}

func TestDueForReminder(t *testing.T) {
	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	lastMeal := now.Add(-4 * time.Hour)
	before := lastMeal.Add(-time.Hour)
	after := lastMeal.Add(time.Hour)

	tests := []struct {
		name     string
		lastMeal time.Time
		settings database.Settings
		want     bool
	}{
		{"interval elapsed", lastMeal, database.Settings{ReminderInterval: 4}, true},
		{"interval not elapsed", lastMeal, database.Settings{ReminderInterval: 5}, false},
		{"reminded before last meal", lastMeal, database.Settings{ReminderInterval: 4, LastReminderAt: &before}, true},
		{"reminded after last meal", lastMeal, database.Settings{ReminderInterval: 4, LastReminderAt: &after}, false},
		{"no interval", lastMeal, database.Settings{ReminderInterval: 0}, false},
		{"interval beyond a year", lastMeal, database.Settings{ReminderInterval: 5_124_096}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dueForReminder(tt.lastMeal, &tt.settings, now); got != tt.want {
				t.Errorf("dueForReminder() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseClientTime(t *testing.T) {
	zurich, err := time.LoadLocation("Europe/Zurich")
	if err != nil {
		t.Skip("timezone data not available")
	}

	ts, ok := ParseClientTime("2024-05-20T08:15", zurich)
	if !ok || !ts.Equal(time.Date(2024, 5, 20, 6, 15, 0, 0, time.UTC)) {
		t.Errorf("local time parsed as %v, %v", ts, ok)
	}

	ts, ok = ParseClientTime("2024-05-20T08:15:00+02:00", time.UTC)
	if !ok || !ts.Equal(time.Date(2024, 5, 20, 6, 15, 0, 0, time.UTC)) {
		t.Errorf("offset time parsed as %v, %v", ts, ok)
	}

	if _, ok := ParseClientTime("  ", time.UTC); ok {
		t.Error("blank time should not parse")
	}

	for _, raw := range []string{"99999999999999999", "-99999999999999", "0000-06-01T00:00:00Z"} {
		if ts, ok := ParseClientTime(raw, time.UTC); ok {
			t.Errorf("%s should be out of range, parsed as %v", raw, ts)
		}
	}
}
