// AngelaMos | 2026
// repository.go

package post

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/carterperez-dev/templates/blog-api/internal/core"
)

const postColumns = `p.id, p.title, p.content, p.author_id, u.username AS author_username,
		p.slug, p.status, p.featured_image, p.tags, p.created_at, p.updated_at`

type Repository interface {
	Create(ctx context.Context, post *Post) error
	GetByID(ctx context.Context, id int64) (*Post, error)
	Update(ctx context.Context, id int64, changes *core.Assignments) (*Post, error)
	Delete(ctx context.Context, id int64) error
	List(
		ctx context.Context,
		filter ListFilter,
		page core.Pagination,
	) (core.Page[Post], error)
}

type repository struct {
	db      core.DBTX
	timeout time.Duration
}

func NewRepository(db core.DBTX, timeout time.Duration) Repository {
	return &repository{db: db, timeout: timeout}
}

func (r *repository) Create(ctx context.Context, post *Post) (err error) {
	ctx, span := core.StartSpan(ctx, "post.repository.Create")
	defer func() { core.EndSpan(span, err) }()

	ctx, cancel := core.WithQueryTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		WITH p AS (
			INSERT INTO posts (title, content, author_id, slug, status, featured_image, tags)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING *
		)
		SELECT ` + postColumns + `
		FROM p
		JOIN users u ON u.id = p.author_id`

	err = r.db.GetContext(ctx, post, query,
		post.Title,
		post.Content,
		post.AuthorID,
		post.Slug,
		post.Status,
		post.FeaturedImage,
		pq.Array([]string(post.Tags)),
	)
	if err != nil {
		return fmt.Errorf("create post: %w", core.MapStoreError(err))
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (_ *Post, err error) {
	ctx, span := core.StartSpan(ctx, "post.repository.GetByID",
		attribute.Int64("post.id", id),
	)
	defer func() { core.EndSpan(span, err) }()

	ctx, cancel := core.WithQueryTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + postColumns + `
		FROM posts p
		JOIN users u ON u.id = p.author_id
		WHERE p.id = $1`

	var post Post
	err = r.db.GetContext(ctx, &post, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get post: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", core.MapStoreError(err))
	}

	return &post, nil
}

// Update writes only the assigned columns and always refreshes updated_at.
// With nothing assigned it returns the current row.
func (r *repository) Update(
	ctx context.Context,
	id int64,
	changes *core.Assignments,
) (_ *Post, err error) {
	if err := changes.Err(); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	if changes.Len() == 0 {
		return r.GetByID(ctx, id)
	}

	ctx, span := core.StartSpan(ctx, "post.repository.Update",
		attribute.Int64("post.id", id),
		attribute.Int("fields", changes.Len()),
	)
	defer func() { core.EndSpan(span, err) }()

	ctx, cancel := core.WithQueryTimeout(ctx, r.timeout)
	defer cancel()

	var args core.Args
	set := changes.Render(&args)
	query := fmt.Sprintf(`
		WITH p AS (
			UPDATE posts
			SET %s, updated_at = NOW()
			WHERE id = %s
			RETURNING *
		)
		SELECT %s
		FROM p
		JOIN users u ON u.id = p.author_id`, set, args.Bind(id), postColumns)

	var post Post
	err = r.db.GetContext(ctx, &post, query, args.Values()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update post: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update post: %w", core.MapStoreError(err))
	}

	return &post, nil
}

func (r *repository) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := core.StartSpan(ctx, "post.repository.Delete",
		attribute.Int64("post.id", id),
	)
	defer func() { core.EndSpan(span, err) }()

	ctx, cancel := core.WithQueryTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", core.MapStoreError(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete post: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	filter ListFilter,
	page core.Pagination,
) (_ core.Page[Post], err error) {
	ctx, span := core.StartSpan(ctx, "post.repository.List",
		attribute.Int("page", page.Page),
		attribute.Int("limit", page.Limit),
	)
	defer func() { core.EndSpan(span, err) }()

	ctx, cancel := core.WithQueryTimeout(ctx, r.timeout)
	defer cancel()

	var args core.Args
	clause := listWhere(filter).Render(&args)
	countArgs := args.Values()

	countQuery := "SELECT COUNT(*) FROM posts p " + clause
	rowsQuery := fmt.Sprintf(`SELECT %s
		FROM posts p
		JOIN users u ON u.id = p.author_id
		%s
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT %s OFFSET %s`,
		postColumns, clause, args.Bind(page.Limit), args.Bind(page.Offset()))

	var (
		total int
		posts []Post
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := r.db.GetContext(gctx, &total, countQuery, countArgs...); err != nil {
			return fmt.Errorf("count posts: %w", core.MapStoreError(err))
		}
		return nil
	})
	g.Go(func() error {
		if err := r.db.SelectContext(gctx, &posts, rowsQuery, args.Values()...); err != nil {
			return fmt.Errorf("list posts: %w", core.MapStoreError(err))
		}
		return nil
	})
	if err = g.Wait(); err != nil {
		return core.Page[Post]{}, err
	}

	return core.NewPage(posts, total, page), nil
}

// listWhere translates a filter into predicates. Only columns of posts are
// referenced so the same clause serves the count query, which has no join.
func listWhere(f ListFilter) *core.Where {
	w := new(core.Where).
		Equal("p.status", string(f.Status)).
		EqualInt("p.author_id", f.AuthorID).
		Search(f.Search, "p.title", "p.content").
		Overlaps("p.tags", f.Tags).
		Between("p.created_at", timeBound(f.CreatedAfter), timeBound(f.CreatedBefore))

	if f.ViewerID == 0 {
		return w.Equal("p.status", string(StatusPublished))
	}

	viewer := f.ViewerID
	return w.Condition(func(a *core.Args) string {
		return "(p.status = " + a.Bind(string(StatusPublished)) +
			" OR p.author_id = " + a.Bind(viewer) + ")"
	})
}

func timeBound(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
