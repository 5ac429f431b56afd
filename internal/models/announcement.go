package models

import (
	"time"

	"github.com/lib/pq"
)

// AnnouncementType categorises announcements.
type AnnouncementType string

const (
	AnnouncementTypeGeneral  AnnouncementType = "general"
	AnnouncementTypeAcademic AnnouncementType = "academic"
	AnnouncementTypeEvent    AnnouncementType = "event"
	AnnouncementTypeUrgent   AnnouncementType = "urgent"
)

// Valid reports whether the type is a supported value.
func (t AnnouncementType) Valid() bool {
	switch t {
	case AnnouncementTypeGeneral, AnnouncementTypeAcademic, AnnouncementTypeEvent, AnnouncementTypeUrgent:
		return true
	default:
		return false
	}
}

// Priority is the shared low/medium/high vocabulary used by announcements
// and assignments.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether the priority is a supported value.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// AnnouncementStatus is the publication lifecycle state.
type AnnouncementStatus string

const (
	AnnouncementStatusDraft     AnnouncementStatus = "draft"
	AnnouncementStatusPublished AnnouncementStatus = "published"
	AnnouncementStatusArchived  AnnouncementStatus = "archived"
)

// Valid reports whether the status is a supported value.
func (s AnnouncementStatus) Valid() bool {
	switch s {
	case AnnouncementStatusDraft, AnnouncementStatusPublished, AnnouncementStatusArchived:
		return true
	default:
		return false
	}
}

// Announcement represents a persisted announcement row. TargetAudience is
// a non-empty set of role tags. When both PublishedAt and ExpiresAt are
// set, ExpiresAt is strictly after PublishedAt.
type Announcement struct {
	ID             string             `db:"id" json:"id"`
	Title          string             `db:"title" json:"title"`
	Content        string             `db:"content" json:"content"`
	Type           AnnouncementType   `db:"type" json:"type"`
	Priority       Priority           `db:"priority" json:"priority"`
	TargetAudience pq.StringArray     `db:"target_audience" json:"target_audience"`
	Status         AnnouncementStatus `db:"status" json:"status"`
	AuthorID       string             `db:"author_id" json:"author_id"`
	AuthorName     string             `db:"author_name" json:"author_name"`
	PublishedAt    *time.Time         `db:"published_at" json:"published_at,omitempty"`
	ExpiresAt      *time.Time         `db:"expires_at" json:"expires_at,omitempty"`
	CreatedAt      time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `db:"updated_at" json:"updated_at"`
}

// AnnouncementFilter captures filtering criteria for listing
// announcements. Role restricts results to announcements whose audience
// includes the given role tag. Search matches title and content.
type AnnouncementFilter struct {
	Search   string
	Type     *AnnouncementType
	Priority *Priority
	Status   *AnnouncementStatus
	Role     string
	Page     int
	PageSize int
}
