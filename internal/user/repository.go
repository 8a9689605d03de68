// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/carterperez-dev/templates/blog-api/internal/core"
)

const userColumns = `id, username, email, password_hash, first_name, last_name,
		avatar_url, is_active, created_at, updated_at`

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Update(ctx context.Context, id int64, changes *core.Assignments) (*User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	SoftDelete(ctx context.Context, id int64) error
	List(
		ctx context.Context,
		filter ListFilter,
		page core.Pagination,
	) (core.Page[User], error)
}

type repository struct {
	db      core.DBTX
	timeout time.Duration
}

func NewRepository(db core.DBTX, timeout time.Duration) Repository {
	return &repository{db: db, timeout: timeout}
}

func (r *repository) Create(ctx context.Context, user *User) (err error) {
	ctx, span := core.StartSpan(ctx, "user.repository.Create")
	defer func() { core.EndSpan(span, err) }()

	ctx, cancel := core.WithQueryTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO users (username, email, password_hash, first_name, last_name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns

	err = r.db.GetContext(ctx, user, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
	)
	if err != nil {
		return fmt.Errorf("create user: %w", core.MapStoreError(err))
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*User, error) {
	return r.getOne(ctx, "get user", "id = $1", id)
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, "get user by email", "email = $1", email)
}

func (r *repository) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.getOne(ctx, "get user by username", "username = $1", username)
}

// getOne only ever returns active users.
func (r *repository) getOne(
	ctx context.Context,
	op, cond string,
	arg any,
) (_ *User, err error) {
	ctx, span := core.StartSpan(ctx, "user.repository.Get")
	defer func() { core.EndSpan(span, err) }()

	ctx, cancel := core.WithQueryTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + userColumns + `
		FROM users
		WHERE ` + cond + ` AND is_active = TRUE`

	var user User
	err = r.db.GetContext(ctx, &user, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, core.MapStoreError(err))
	}

	return &user, nil
}

// Update writes only the assigned columns. With nothing assigned it returns
// the current row instead of issuing an empty SET.
func (r *repository) Update(
	ctx context.Context,
	id int64,
	changes *core.Assignments,
) (_ *User, err error) {
	if err := changes.Err(); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if changes.Len() == 0 {
		return r.GetByID(ctx, id)
	}

	ctx, span := core.StartSpan(ctx, "user.repository.Update",
		attribute.Int("fields", changes.Len()),
	)
	defer func() { core.EndSpan(span, err) }()

	ctx, cancel := core.WithQueryTimeout(ctx, r.timeout)
	defer cancel()

	var args core.Args
	set := changes.Render(&args)
	query := fmt.Sprintf(`
		UPDATE users
		SET %s, updated_at = NOW()
		WHERE id = %s AND is_active = TRUE
		RETURNING %s`, set, args.Bind(id), userColumns)

	var user User
	err = r.db.GetContext(ctx, &user, query, args.Values()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update user: %w", core.MapStoreError(err))
	}

	return &user, nil
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	id int64,
	passwordHash string,
) (err error) {
	ctx, span := core.StartSpan(ctx, "user.repository.UpdatePassword",
		attribute.Int64("user.id", id),
	)
	defer func() { core.EndSpan(span, err) }()

	ctx, cancel := core.WithQueryTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1 AND is_active = TRUE`

	return r.execOne(ctx, "update password", query, id, passwordHash)
}

func (r *repository) SoftDelete(ctx context.Context, id int64) (err error) {
	ctx, span := core.StartSpan(ctx, "user.repository.SoftDelete")
	defer func() { core.EndSpan(span, err) }()

	ctx, cancel := core.WithQueryTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		UPDATE users
		SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1 AND is_active = TRUE`

	return r.execOne(ctx, "delete user", query, id)
}

func (r *repository) execOne(
	ctx context.Context,
	op, query string,
	args ...any,
) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, core.MapStoreError(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}

	return nil
}

// List runs the count and page queries concurrently. Both share the same
// WHERE clause and arguments; LIMIT and OFFSET are bound only for the page
// query.
func (r *repository) List(
	ctx context.Context,
	filter ListFilter,
	page core.Pagination,
) (_ core.Page[User], err error) {
	ctx, span := core.StartSpan(ctx, "user.repository.List",
		attribute.Int("page", page.Page),
		attribute.Int("limit", page.Limit),
	)
	defer func() { core.EndSpan(span, err) }()

	ctx, cancel := core.WithQueryTimeout(ctx, r.timeout)
	defer cancel()

	where := new(core.Where).
		Literal("is_active = TRUE").
		Search(filter.Search, "username", "email", "first_name", "last_name")

	var args core.Args
	clause := where.Render(&args)
	countArgs := args.Values()

	countQuery := "SELECT COUNT(*) FROM users " + clause
	rowsQuery := fmt.Sprintf(`SELECT %s
		FROM users
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT %s OFFSET %s`,
		userColumns, clause, args.Bind(page.Limit), args.Bind(page.Offset()))

	var (
		total int
		users []User
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := r.db.GetContext(gctx, &total, countQuery, countArgs...); err != nil {
			return fmt.Errorf("count users: %w", core.MapStoreError(err))
		}
		return nil
	})
	g.Go(func() error {
		if err := r.db.SelectContext(gctx, &users, rowsQuery, args.Values()...); err != nil {
			return fmt.Errorf("list users: %w", core.MapStoreError(err))
		}
		return nil
	})
	if err = g.Wait(); err != nil {
		return core.Page[User]{}, err
	}

	return core.NewPage(users, total, page), nil
}
