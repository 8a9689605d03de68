// AngelaMos | 2026
// dto.go

package post

import (
	"net/url"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/carterperez-dev/templates/blog-api/internal/core"
)

const maxTagFilters = 20

type CreatePostRequest struct {
	Title         string   `json:"title"                   validate:"required,notblank,max=255"`
	Content       string   `json:"content"                 validate:"required,notblank"`
	Status        Status   `json:"status,omitempty"        validate:"omitempty,oneof=draft published archived"`
	FeaturedImage *string  `json:"featuredImage,omitempty" validate:"omitempty,url,max=500"`
	Tags          []string `json:"tags,omitempty"          validate:"omitempty,max=20,dive,notblank,max=50"`
}

// UpdatePostRequest is a partial update. Nil fields are left unchanged; an
// empty tags array clears the tags.
type UpdatePostRequest struct {
	Title         *string  `json:"title,omitempty"         validate:"omitempty,notblank,max=255"`
	Content       *string  `json:"content,omitempty"       validate:"omitempty,notblank"`
	Status        *Status  `json:"status,omitempty"        validate:"omitempty,oneof=draft published archived"`
	FeaturedImage *string  `json:"featuredImage,omitempty" validate:"omitempty,url,max=500"`
	Tags          []string `json:"tags,omitempty"          validate:"omitempty,max=20,dive,notblank,max=50"`
}

func (r UpdatePostRequest) assignments() (*core.Assignments, error) {
	a := core.NewAssignments(updatableFields)

	var problems []string
	if r.Title != nil {
		title := sanitizeTitle(*r.Title)
		if title == "" {
			problems = append(problems, "title is required")
		}
		a.Set("title", title)
	}
	if r.Content != nil {
		content := sanitizeContent(*r.Content)
		if content == "" {
			problems = append(problems, "content is required")
		}
		a.Set("content", content)
	}
	if len(problems) > 0 {
		return nil, core.ValidationError(problems)
	}

	if r.Status != nil {
		a.Set("status", *r.Status)
	}
	if r.FeaturedImage != nil {
		a.Set("featuredImage", *r.FeaturedImage)
	}
	if r.Tags != nil {
		a.Set("tags", pq.Array(sanitizeTags(r.Tags)))
	}
	return a, nil
}

type ListFilter struct {
	Status        Status
	AuthorID      int64
	Search        string
	Tags          []string
	CreatedAfter  time.Time
	CreatedBefore time.Time
	// ViewerID is the caller, 0 when anonymous. It decides which
	// unpublished posts are visible.
	ViewerID int64
}

// parseListFilter reads the listing query parameters. Every rejection is a
// client error naming the offending parameter.
func parseListFilter(q url.Values) (ListFilter, error) {
	var f ListFilter
	var problems []string

	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		f.Status = Status(strings.ToLower(raw))
		if !f.Status.Valid() {
			problems = append(problems,
				"status must be one of: draft, published, archived")
		}
	}

	if raw := strings.TrimSpace(q.Get("author")); raw != "" {
		id, err := core.ParseID(raw, "author")
		if err != nil {
			problems = append(problems, "author must be a positive integer")
		}
		f.AuthorID = id
	}

	f.Search = strings.TrimSpace(q.Get("search"))

	if raw := q.Get("tags"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
				f.Tags = append(f.Tags, t)
			}
		}
		if len(f.Tags) > maxTagFilters {
			problems = append(problems, "at most 20 tags may be filtered on")
		}
	}

	var err error
	if f.CreatedAfter, err = parseTime(q.Get("createdAfter")); err != nil {
		problems = append(problems, "createdAfter must be an RFC 3339 timestamp")
	}
	if f.CreatedBefore, err = parseTime(q.Get("createdBefore")); err != nil {
		problems = append(problems, "createdBefore must be an RFC 3339 timestamp")
	}
	if !f.CreatedAfter.IsZero() && !f.CreatedBefore.IsZero() &&
		f.CreatedAfter.After(f.CreatedBefore) {
		problems = append(problems, "createdAfter must not be later than createdBefore")
	}

	if len(problems) > 0 {
		return ListFilter{}, core.ValidationError(problems)
	}
	return f, nil
}

func parseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, raw)
}

type PostResponse struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	Slug           string    `json:"slug"`
	Status         Status    `json:"status"`
	FeaturedImage  *string   `json:"featuredImage"`
	Tags           []string  `json:"tags"`
	AuthorID       int64     `json:"authorId"`
	AuthorUsername string    `json:"authorUsername"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func ToPostResponse(p Post) PostResponse {
	tags := []string(p.Tags)
	if tags == nil {
		tags = []string{}
	}
	return PostResponse{
		ID:             p.ID,
		Title:          p.Title,
		Content:        p.Content,
		Slug:           p.Slug,
		Status:         p.Status,
		FeaturedImage:  p.FeaturedImage,
		Tags:           tags,
		AuthorID:       p.AuthorID,
		AuthorUsername: p.AuthorUsername,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
