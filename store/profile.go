package store

// Profile is a user's onboarding record, one row per user. FocusAreas holds
// the wellness areas picked during onboarding; WakeTime and SleepTime are
// "HH:MM" strings.
type Profile struct {
	UserID          int32
	DisplayName     string
	FocusAreas      []string
	WakeTime        string
	SleepTime       string
	ReminderEnabled bool
	Onboarded       bool
	UpdatedTs       int64
}

// FindProfile selects the profile to load.
type FindProfile struct {
	UserID int32
}
