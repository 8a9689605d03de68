// AngelaMos | 2026
// service.go

package post

import (
	"context"
	"errors"

	"github.com/carterperez-dev/templates/blog-api/internal/core"
)

// AuthorLookup confirms an author exists before listing their posts.
type AuthorLookup interface {
	AuthorExists(ctx context.Context, id int64) (bool, error)
}

type Service struct {
	repo    Repository
	authors AuthorLookup
}

func NewService(repo Repository, authors AuthorLookup) *Service {
	return &Service{repo: repo, authors: authors}
}

func (s *Service) Create(
	ctx context.Context,
	authorID int64,
	req CreatePostRequest,
) (*Post, error) {
	if authorID == 0 {
		return nil, core.UnauthorizedError("")
	}

	var problems []string
	title := sanitizeTitle(req.Title)
	if title == "" {
		problems = append(problems, "title is required")
	}
	content := sanitizeContent(req.Content)
	if content == "" {
		problems = append(problems, "content is required")
	}
	if len(problems) > 0 {
		return nil, core.ValidationError(problems)
	}

	status := req.Status
	if status == "" {
		status = StatusDraft
	}

	post := &Post{
		Title:         title,
		Content:       content,
		AuthorID:      authorID,
		Slug:          newSlug(title),
		Status:        status,
		FeaturedImage: req.FeaturedImage,
		Tags:          sanitizeTags(req.Tags),
	}

	if err := s.repo.Create(ctx, post); err != nil {
		return nil, storeError(err)
	}

	return post, nil
}

// Get hides posts the viewer may not read behind NotFound.
func (s *Service) Get(ctx context.Context, viewerID, id int64) (*Post, error) {
	return s.load(ctx, viewerID, id)
}

func (s *Service) List(
	ctx context.Context,
	filter ListFilter,
	page core.Pagination,
) (core.Page[Post], error) {
	return s.repo.List(ctx, filter, page)
}

func (s *Service) ListByAuthor(
	ctx context.Context,
	authorID int64,
	filter ListFilter,
	page core.Pagination,
) (core.Page[Post], error) {
	exists, err := s.authors.AuthorExists(ctx, authorID)
	if err != nil {
		return core.Page[Post]{}, err
	}
	if !exists {
		return core.Page[Post]{}, core.NotFoundError("user")
	}

	filter.AuthorID = authorID
	return s.repo.List(ctx, filter, page)
}

// Update loads the post before checking ownership, so a missing post is
// NotFound rather than Forbidden.
func (s *Service) Update(
	ctx context.Context,
	requesterID, id int64,
	req UpdatePostRequest,
) (*Post, error) {
	post, err := s.load(ctx, requesterID, id)
	if err != nil {
		return nil, err
	}

	if err := core.Authorize(requesterID, post.AuthorID, core.ActionUpdatePost); err != nil {
		return nil, err
	}

	changes, err := req.assignments()
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		return nil, storeError(err)
	}

	return updated, nil
}

func (s *Service) Delete(ctx context.Context, requesterID, id int64) error {
	post, err := s.load(ctx, requesterID, id)
	if err != nil {
		return err
	}

	if err := core.Authorize(requesterID, post.AuthorID, core.ActionDeletePost); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(err)
	}

	return nil
}

func (s *Service) load(ctx context.Context, viewerID, id int64) (*Post, error) {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	if !post.VisibleTo(viewerID) {
		return nil, core.NotFoundError("post")
	}
	return post, nil
}

func storeError(err error) error {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return core.NotFoundError("post")
	case errors.Is(err, core.ErrDuplicateKey) && core.ConstraintName(err) == constraintSlug:
		return core.ConflictError("a post with this slug already exists")
	case errors.Is(err, core.ErrForeignKey) && core.ConstraintName(err) == constraintAuthor:
		return core.NotFoundError("author")
	}
	return err
}
