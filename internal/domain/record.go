// Package domain contains the core data structures and domain logic for the application.
package domain

import "time"

// CommitRecord is one normalized row of commit history.
// Every field is nullable because the upstream API may omit the nested
// commit payload or any part of its author metadata. When the payload is
// present, SHA is always set; Message never contains a line break.
type CommitRecord struct {
	SHA     *string
	Author  *string
	Email   *string
	Date    *time.Time
	Message *string
}

// Issue lifecycle states accepted as a server-side filter.
const (
	IssueStateAll    = "all"
	IssueStateOpen   = "open"
	IssueStateClosed = "closed"
)

// IssueRecord is one normalized row of issue history. Pull requests never
// materialize as an IssueRecord. OpenDurationDays is set if and only if
// both CreatedAt and ClosedAt are set, and holds the whole-day difference
// between them, truncated toward zero.
type IssueRecord struct {
	ID               int64
	Number           int
	Title            *string
	User             *string
	State            string
	CreatedAt        *time.Time
	ClosedAt         *time.Time
	Comments         int
	OpenDurationDays *int
}

// OpenDuration computes the whole-day span between created and closed,
// truncating fractional days toward zero. Returns nil unless both
// timestamps are present.
func OpenDuration(created, closed *time.Time) *int {
	if created == nil || closed == nil {
		return nil
	}
	days := int(closed.Sub(*created) / (24 * time.Hour))
	return &days
}
