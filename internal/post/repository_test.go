// AngelaMos | 2026
// repository_test.go

package post

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/blog-api/internal/core"
)

var postRowColumns = []string{
	"id", "title", "content", "author_id", "author_username", "slug",
	"status", "featured_image", "tags", "created_at", "updated_at",
}

func setupMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "pgx"), mock
}

func postRow(id, authorID int64, status Status) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(postRowColumns).AddRow(
		id, "Title", "Content", authorID, "author", "title-0a1b2c3d",
		string(status), nil, "{go,api}", now, now,
	)
}

func TestRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRepository(db, time.Second)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO posts (title, content, author_id, slug, status, featured_image, tags)`)).
		WithArgs("Title", "Content", int64(2), "title-0a1b2c3d", "draft", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(postRow(11, 2, StatusDraft))

	p := &Post{
		Title:    "Title",
		Content:  "Content",
		AuthorID: 2,
		Slug:     "title-0a1b2c3d",
		Status:   StatusDraft,
		Tags:     []string{"go", "api"},
	}
	require.NoError(t, repo.Create(context.Background(), p))

	assert.Equal(t, int64(11), p.ID)
	assert.Equal(t, "author", p.AuthorUsername)
	assert.Equal(t, []string{"go", "api"}, []string(p.Tags))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CreateUnknownAuthor(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRepository(db, time.Second)

	mock.ExpectQuery(`INSERT INTO posts`).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: constraintAuthor})

	err := repo.Create(context.Background(), &Post{Title: "t", Content: "c", AuthorID: 99})
	assert.ErrorIs(t, err, core.ErrForeignKey)
	assert.Equal(t, constraintAuthor, core.ConstraintName(err))
}

func TestRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRepository(db, time.Second)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE p.id = $1`)).
		WithArgs(int64(11)).
		WillReturnRows(postRow(11, 2, StatusPublished))

	p, err := repo.GetByID(context.Background(), 11)
	require.NoError(t, err)
	assert.Equal(t, StatusPublished, p.Status)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE p.id = $1`)).
		WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows(postRowColumns))

	_, err = repo.GetByID(context.Background(), 12)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Update(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRepository(db, time.Second)

	mock.ExpectQuery(`SET title = \$1, updated_at = NOW\(\)\s+WHERE id = \$2`).
		WithArgs("Renamed", int64(11)).
		WillReturnRows(postRow(11, 2, StatusDraft))

	title := "Renamed"
	changes, err := UpdatePostRequest{Title: &title}.assignments()
	require.NoError(t, err)

	_, err = repo.Update(context.Background(), 11, changes)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Delete(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRepository(db, time.Second)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM posts WHERE id = $1`)).
		WithArgs(int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), 11))

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM posts WHERE id = $1`)).
		WithArgs(int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), 11), core.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListAnonymous(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.MatchExpectationsInOrder(false)
	repo := NewRepository(db, time.Second)

	where := `WHERE p.status = $1 AND p.status = $2`

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM posts p `+where)).
		WithArgs("published", "published").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta(`LIMIT $3 OFFSET $4`)).
		WithArgs("published", "published", 2, 0).
		WillReturnRows(postRow(3, 1, StatusPublished).AddRow(
			2, "Two", "Body", 1, "author", "two-00000000",
			"published", nil, "{}", time.Now(), time.Now(),
		))

	page, err := repo.List(
		context.Background(),
		ListFilter{Status: StatusPublished},
		core.Pagination{Page: 1, Limit: 2},
	)
	require.NoError(t, err)

	assert.Len(t, page.Items, 2)
	assert.Equal(t, 3, page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListViewerSeesOwnDrafts(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.MatchExpectationsInOrder(false)
	repo := NewRepository(db, time.Second)

	after := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	where := `WHERE (p.title ILIKE $1 OR p.content ILIKE $2) AND p.tags && $3` +
		` AND p.created_at >= $4 AND (p.status = $5 OR p.author_id = $6)`

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM posts p `+where)).
		WithArgs("%go%", "%go%", sqlmock.AnyArg(), after, "published", int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`LIMIT $7 OFFSET $8`)).
		WithArgs("%go%", "%go%", sqlmock.AnyArg(), after, "published", int64(5), 10, 0).
		WillReturnRows(postRow(8, 5, StatusDraft))

	page, err := repo.List(
		context.Background(),
		ListFilter{Search: "go", Tags: []string{"go"}, CreatedAfter: after, ViewerID: 5},
		core.Pagination{Page: 1, Limit: 10},
	)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, StatusDraft, page.Items[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListWhereAuthorFilter(t *testing.T) {
	clause, args := listWhere(ListFilter{AuthorID: 4}).Build()

	assert.Equal(t, "WHERE p.author_id = $1 AND p.status = $2", clause)
	assert.Equal(t, []any{int64(4), "published"}, args)
}
