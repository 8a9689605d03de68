// AngelaMos | 2026
// dto_test.go

package post

import (
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/blog-api/internal/core"
)

func TestParseListFilter(t *testing.T) {
	q := url.Values{
		"status":        {"Published"},
		"author":        {"7"},
		"search":        {"  golang "},
		"tags":          {"Go, api,,"},
		"createdAfter":  {"2026-01-01T00:00:00Z"},
		"createdBefore": {"2026-02-01T00:00:00Z"},
	}

	f, err := parseListFilter(q)
	require.NoError(t, err)

	assert.Equal(t, StatusPublished, f.Status)
	assert.Equal(t, int64(7), f.AuthorID)
	assert.Equal(t, "golang", f.Search)
	assert.Equal(t, []string{"go", "api"}, f.Tags)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), f.CreatedAfter.UTC())
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), f.CreatedBefore.UTC())
	assert.Zero(t, f.ViewerID)
}

func TestParseListFilterEmpty(t *testing.T) {
	f, err := parseListFilter(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, ListFilter{}, f)
}

func TestParseListFilterCollectsProblems(t *testing.T) {
	q := url.Values{
		"status":        {"deleted"},
		"author":        {"-3"},
		"createdAfter":  {"yesterday"},
		"createdBefore": {"2026-13-01"},
	}

	_, err := parseListFilter(q)

	var appErr *core.AppError
	require.True(t, errors.As(err, &appErr))
	assert.ElementsMatch(t, []string{
		"status must be one of: draft, published, archived",
		"author must be a positive integer",
		"createdAfter must be an RFC 3339 timestamp",
		"createdBefore must be an RFC 3339 timestamp",
	}, appErr.Details)
}

func TestParseListFilterRejectsInvertedRange(t *testing.T) {
	_, err := parseListFilter(url.Values{
		"createdAfter":  {"2026-03-01T00:00:00Z"},
		"createdBefore": {"2026-02-01T00:00:00Z"},
	})

	var appErr *core.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, []string{"createdAfter must not be later than createdBefore"}, appErr.Details)
}

func TestParseListFilterTooManyTags(t *testing.T) {
	tags := make([]string, maxTagFilters+1)
	for i := range tags {
		tags[i] = "t" + strings.Repeat("x", i+1)
	}

	_, err := parseListFilter(url.Values{"tags": {strings.Join(tags, ",")}})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestUpdateAssignments(t *testing.T) {
	title := "<em>New</em> title"
	status := StatusPublished

	changes, err := UpdatePostRequest{
		Title:  &title,
		Status: &status,
		Tags:   []string{},
	}.assignments()
	require.NoError(t, err)
	require.NoError(t, changes.Err())

	var args core.Args
	set := changes.Render(&args)
	assert.Equal(t, "title = $1, status = $2, tags = $3", set)
	assert.Equal(t, []any{"New title", StatusPublished, pq.Array([]string{})}, args.Values())
}

func TestUpdateAssignmentsBlankAfterSanitize(t *testing.T) {
	content := "<script>alert(1)</script>"
	_, err := UpdatePostRequest{Content: &content}.assignments()

	var appErr *core.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, []string{"content is required"}, appErr.Details)

	title := "<b></b>"
	_, err = UpdatePostRequest{Title: &title, Content: &content}.assignments()
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, []string{"title is required", "content is required"}, appErr.Details)
}

func TestUpdatableFieldsCoverRequest(t *testing.T) {
	require.NoError(t, updatableFields.Validate())

	s := "x"
	status := StatusDraft
	changes, err := UpdatePostRequest{
		Title: &s, Content: &s, Status: &status, FeaturedImage: &s, Tags: []string{"a"},
	}.assignments()
	require.NoError(t, err)
	require.NoError(t, changes.Err())
	assert.Equal(t, len(updatableFields), changes.Len())
}

func TestToPostResponseTags(t *testing.T) {
	resp := ToPostResponse(Post{ID: 1})
	assert.NotNil(t, resp.Tags)
	assert.Empty(t, resp.Tags)
}
