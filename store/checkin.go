package store

// CheckIn is one day's reflection entry. Date is "YYYY-MM-DD" and at most one
// row exists per (creator, date); saving again the same day overwrites.
// Mood and Energy are 1..5. CompletedRoutines holds routine UIDs ticked off
// that day.
type CheckIn struct {
	ID                int32
	UID               string
	CreatorID         int32
	Date              string
	Mood              int32
	Energy            int32
	Note              string
	CompletedRoutines []string
	CreatedTs         int64
	UpdatedTs         int64
}

// FindCheckIn filters for ListCheckIns and GetCheckIn.
type FindCheckIn struct {
	CreatorID *int32
	Date      *string
	DateFrom  *string
	DateTo    *string
}
