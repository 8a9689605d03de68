// AngelaMos | 2026
// handler.go

package post

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/blog-api/internal/core"
	"github.com/carterperez-dev/templates/blog-api/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
	}
}

// RegisterRoutes mounts posts on a /posts router. Reads accept anonymous
// callers; writes require authenticator.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, optionalAuth func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(optionalAuth)
		r.Get("/", h.List)
		r.Get("/{postID}", h.Get)
	})

	r.Group(func(r chi.Router) {
		r.Use(authenticator)
		r.Post("/", h.Create)
		r.Put("/{postID}", h.Update)
		r.Delete("/{postID}", h.Delete)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if err := core.Bind(r, h.validator, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	post, err := h.service.Create(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, "post created successfully", ToPostResponse(*post))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter, page, err := parseListRequest(r)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	posts, err := h.service.List(r.Context(), filter, page)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Paginated(w, "posts retrieved successfully", core.MapPage(posts, ToPostResponse))
}

// ListByAuthor serves /users/{userID}/posts.
func (h *Handler) ListByAuthor(w http.ResponseWriter, r *http.Request) {
	authorID, err := core.ParseID(chi.URLParam(r, "userID"), "user")
	if err != nil {
		core.JSONError(w, err)
		return
	}

	filter, page, err := parseListRequest(r)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	posts, err := h.service.ListByAuthor(r.Context(), authorID, filter, page)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Paginated(w, "posts retrieved successfully", core.MapPage(posts, ToPostResponse))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseID(chi.URLParam(r, "postID"), "post")
	if err != nil {
		core.JSONError(w, err)
		return
	}

	post, err := h.service.Get(r.Context(), middleware.GetUserID(r.Context()), id)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, "post retrieved successfully", ToPostResponse(*post))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseID(chi.URLParam(r, "postID"), "post")
	if err != nil {
		core.JSONError(w, err)
		return
	}

	var req UpdatePostRequest
	if err := core.Bind(r, h.validator, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	post, err := h.service.Update(r.Context(), middleware.GetUserID(r.Context()), id, req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, "post updated successfully", ToPostResponse(*post))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseID(chi.URLParam(r, "postID"), "post")
	if err != nil {
		core.JSONError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), middleware.GetUserID(r.Context()), id); err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, "post deleted successfully", nil)
}

func parseListRequest(r *http.Request) (ListFilter, core.Pagination, error) {
	q := r.URL.Query()

	page, err := core.ParsePagination(q.Get("page"), q.Get("limit"))
	if err != nil {
		return ListFilter{}, core.Pagination{}, err
	}

	filter, err := parseListFilter(q)
	if err != nil {
		return ListFilter{}, core.Pagination{}, err
	}
	filter.ViewerID = middleware.GetUserID(r.Context())

	return filter, page, nil
}
