package domain

import "time"

// ActivityEvent is one row of the activity history the aggregation
// scheduler scans. Comments and likes feed the ranking; system
// notifications do not.
type ActivityEvent struct {
	ID         int64
	Kind       Kind
	SubjectID  string // the note the activity happened on
	ActorID    string
	OccurredAt time.Time
}

// SubjectScore is the aggregated comment/like count for one subject
// inside the trailing ranking window.
type SubjectScore struct {
	SubjectID string
	Comments  int64
	Likes     int64
}
