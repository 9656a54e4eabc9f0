package store

// Routine is one recurring habit on a user's plan. TimeOfDay is one of
// "morning", "midday", "evening", "anytime"; Weekdays holds lowercase
// three-letter day names, empty meaning every day.
type Routine struct {
	ID        int32
	UID       string
	CreatorID int32
	Title     string
	Emoji     string
	TimeOfDay string
	Weekdays  []string
	Position  int32
	Archived  bool
	CreatedTs int64
	UpdatedTs int64
}

// FindRoutine filters for ListRoutines and GetRoutine.
type FindRoutine struct {
	UID       *string
	CreatorID *int32
	Archived  *bool
}

// UpdateRoutine carries fields accepted by UpdateRoutine.
type UpdateRoutine struct {
	UID       string
	Title     *string
	Emoji     *string
	TimeOfDay *string
	Weekdays  *[]string
	Position  *int32
	Archived  *bool
}
