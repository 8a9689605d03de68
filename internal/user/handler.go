// AngelaMos | 2026
// handler.go

package user

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

// RegisterRoutes mounts user management on a /users router. The caller
// applies authentication.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.ListUsers)
	r.Get("/{userID}", h.GetUser)
	r.Delete("/{userID}", h.DeleteUser)
}

// RegisterProfileRoutes mounts the caller's own profile on an /auth router.
func (h *Handler) RegisterProfileRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.With(authenticator).Get("/profile", h.GetProfile)
	r.With(authenticator).Put("/profile", h.UpdateProfile)
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, "profile retrieved successfully", ToUserResponse(user))
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := core.Bind(r, h.validator, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	user, err := h.service.UpdateProfile(
		r.Context(),
		middleware.GetUserID(r.Context()),
		req,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, "profile updated successfully", ToUserResponse(user))
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := core.ParsePagination(q.Get("page"), q.Get("limit"))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	users, err := h.service.ListUsers(
		r.Context(),
		ListFilter{Search: q.Get("search")},
		page,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Paginated(
		w,
		"users retrieved successfully",
		core.MapPage(users, toUserResponseValue),
	)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseID(chi.URLParam(r, "userID"), "user")
	if err != nil {
		core.JSONError(w, err)
		return
	}

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, "user retrieved successfully", ToUserResponse(user))
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	targetID, err := core.ParseID(chi.URLParam(r, "userID"), "user")
	if err != nil {
		core.JSONError(w, err)
		return
	}

	requesterID := middleware.GetUserID(r.Context())
	if err := h.service.DeleteUser(r.Context(), requesterID, targetID); err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, "user deleted successfully", nil)
}
