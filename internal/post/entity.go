// AngelaMos | 2026
// entity.go

package post

import (
	"time"

	"github.com/lib/pq"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

type Post struct {
	ID             int64          `db:"id"`
	Title          string         `db:"title"`
	Content        string         `db:"content"`
	AuthorID       int64          `db:"author_id"`
	AuthorUsername string         `db:"author_username"`
	Slug           string         `db:"slug"`
	Status         Status         `db:"status"`
	FeaturedImage  *string        `db:"featured_image"`
	Tags           pq.StringArray `db:"tags"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

// VisibleTo reports whether viewerID may read the post. Anonymous viewers
// (0) only see published posts; authors always see their own.
func (p *Post) VisibleTo(viewerID int64) bool {
	return p.Status == StatusPublished || (viewerID != 0 && p.AuthorID == viewerID)
}

const (
	constraintSlug   = "posts_slug_key"
	constraintAuthor = "posts_author_id_fkey"
)
