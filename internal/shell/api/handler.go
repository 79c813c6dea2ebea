// Package api provides the JSON API over the yatube service.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/artpar/yatube/internal/core/auth"
	"github.com/artpar/yatube/internal/core/domain"
	"github.com/artpar/yatube/internal/shell/api/middleware"
	"github.com/artpar/yatube/internal/shell/api/openapi"
	"github.com/artpar/yatube/internal/shell/service"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// =============================================================================
// Handler
// =============================================================================

// Handler provides HTTP handlers for the API.
type Handler struct {
	svc     *service.Service
	logger  *slog.Logger
	openapi *openapi.Generator
}

// NewHandler creates a new API handler. version is reported in the OpenAPI document.
func NewHandler(svc *service.Service, l *slog.Logger, version string) *Handler {
	if l == nil {
		l = slog.Default()
	}
	h := &Handler{
		svc:     svc,
		logger:  l.With("component", "api"),
		openapi: openapi.NewGenerator(openapi.WithVersion(version)),
	}
	h.registerOpenAPI()
	return h
}

// Routes returns the router for everything below /api/v1.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(h.jsonContentType)
	r.Use(h.requestIDHeader)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, http.StatusNotFound, "resource not found", "not_found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "method_not_allowed")
	})

	requireAuth := middleware.RequireAuth(h.logger)

	r.Get("/openapi.json", h.openapi.Handler())

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", h.handleListPosts)
		r.With(requireAuth).Post("/", h.handleCreatePost)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.handleGetPost)
			r.With(requireAuth).Patch("/", h.handleUpdatePost)
			r.With(requireAuth).Delete("/", h.handleDeletePost)
			r.Get("/comments", h.handleListComments)
			r.With(requireAuth).Post("/comments", h.handleCreateComment)
		})
	})

	r.Route("/groups", func(r chi.Router) {
		r.Get("/", h.handleListGroups)
		r.With(middleware.RequireStaff(h.logger)).Post("/", h.handleCreateGroup)
		r.Get("/{slug}", h.handleGetGroup)
		r.Get("/{slug}/posts", h.handleListGroupPosts)
	})

	r.With(requireAuth).Get("/follow", h.handleFollowFeed)
	r.Route("/users/{username}", func(r chi.Router) {
		r.Get("/posts", h.handleListUserPosts)
		r.With(requireAuth).Post("/follow", h.handleFollow)
		r.With(requireAuth).Delete("/follow", h.handleUnfollow)
	})

	r.With(middleware.RequireStaff(h.logger)).Delete("/cache", h.handleClearCache)

	return r
}

// =============================================================================
// Middleware
// =============================================================================

// jsonContentType sets Content-Type header to application/json.
func (h *Handler) jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// requestIDHeader copies the request ID to the response header.
func (h *Handler) requestIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reqID := chimw.GetReqID(r.Context()); reqID != "" {
			w.Header().Set("X-Request-ID", reqID)
		}
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// Health Handlers
// =============================================================================

// Health reports that the process is up.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

// Ready reports whether the database answers.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	checks := make(map[string]string)

	if err := h.svc.Ping(r.Context()); err != nil {
		h.logger.Warn("readiness check failed", "error", err)
		checks["database"] = "failed"
		h.writeJSON(w, http.StatusServiceUnavailable, ReadyResponse{
			Status: "not_ready",
			Checks: checks,
		})
		return
	}
	checks["database"] = "ok"

	h.writeJSON(w, http.StatusOK, ReadyResponse{
		Status: "ready",
		Checks: checks,
	})
}

// =============================================================================
// Post Handlers
// =============================================================================

func (h *Handler) handleListPosts(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.IndexPosts(r.Context(), r.URL.Query().Get("page"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, postListResponse(page))
}

func (h *Handler) handleListGroupPosts(w http.ResponseWriter, r *http.Request) {
	_, page, err := h.svc.GroupPosts(r.Context(), chi.URLParam(r, "slug"), r.URL.Query().Get("page"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, postListResponse(page))
}

func (h *Handler) handleListUserPosts(w http.ResponseWriter, r *http.Request) {
	profile, err := h.svc.Profile(r.Context(), auth.FromContext(r.Context()), chi.URLParam(r, "username"), r.URL.Query().Get("page"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, postListResponse(&profile.PostPage))
}

func (h *Handler) handleFollowFeed(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.FollowFeed(r.Context(), auth.FromContext(r.Context()), r.URL.Query().Get("page"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, postListResponse(page))
}

func (h *Handler) handleGetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}
	post, err := h.svc.Post(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, postToResponse(*post))
}

func (h *Handler) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if !h.decode(w, r, &req) {
		return
	}

	post, err := h.svc.CreatePost(r.Context(), auth.FromContext(r.Context()), service.PostInput{
		Text:  req.Text,
		Group: groupParam(req.Group),
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, postToResponse(*post))
}

func (h *Handler) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}
	var req UpdatePostRequest
	if !h.decode(w, r, &req) {
		return
	}

	current, err := h.svc.Post(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	in := service.PostInput{
		Text:       current.Text,
		Group:      groupParam(current.GroupID),
		ClearImage: req.ClearImage,
	}
	if req.Text != nil {
		in.Text = *req.Text
	}
	if req.Group != nil {
		in.Group = groupParam(req.Group)
	}

	post, err := h.svc.UpdatePost(r.Context(), auth.FromContext(r.Context()), id, in)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, postToResponse(*post))
}

func (h *Handler) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeletePost(r.Context(), auth.FromContext(r.Context()), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Comment Handlers
// =============================================================================

func (h *Handler) handleListComments(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}
	comments, err := h.svc.Comments(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	resp := make([]CommentResponse, 0, len(comments))
	for _, c := range comments {
		resp = append(resp, commentToResponse(c))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}
	var req CreateCommentRequest
	if !h.decode(w, r, &req) {
		return
	}

	comment, err := h.svc.AddComment(r.Context(), auth.FromContext(r.Context()), id, req.Text)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, commentToResponse(*comment))
}

// =============================================================================
// Group Handlers
// =============================================================================

func (h *Handler) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.svc.Groups(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	resp := make([]GroupResponse, 0, len(groups))
	for _, g := range groups {
		resp = append(resp, groupToResponse(g))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := h.svc.Group(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, groupToResponse(*group))
}

func (h *Handler) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if !h.decode(w, r, &req) {
		return
	}

	group, err := h.svc.CreateGroup(r.Context(), auth.FromContext(r.Context()), req.Title, req.Slug, req.Description)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, groupToResponse(*group))
}

// =============================================================================
// Follow Handlers
// =============================================================================

func (h *Handler) handleFollow(w http.ResponseWriter, r *http.Request) {
	actor := auth.FromContext(r.Context())
	username := chi.URLParam(r, "username")

	created, err := h.svc.Follow(r.Context(), actor, username)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	h.writeJSON(w, status, FollowResponse{User: actor.Username, Following: username, Created: created})
}

func (h *Handler) handleUnfollow(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Unfollow(r.Context(), auth.FromContext(r.Context()), chi.URLParam(r, "username")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Cache Handlers
// =============================================================================

func (h *Handler) handleClearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearPageCache(r.Context(), auth.FromContext(r.Context())); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Helpers
// =============================================================================

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode JSON", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message, code string) {
	middleware.WriteError(w, status, message, code)
}

// writeServiceError maps a service error to its status and a stable error code.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	status := service.HTTPStatus(err)
	resp := middleware.ErrorResponse{Error: err.Error(), Code: errorCode(status)}

	var verrs domain.ValidationErrors
	if errors.As(err, &verrs) {
		resp.Error = "validation failed"
		resp.Fields = verrs
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err)
		resp.Error = "internal server error"
	}
	middleware.WriteErrorResponse(w, status, resp)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error(), "validation_error")
		return false
	}
	return true
}

func (h *Handler) postID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, http.StatusNotFound, "post not found", "not_found")
		return 0, false
	}
	return id, true
}

func errorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "validation_error"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusServiceUnavailable:
		return "unavailable"
	default:
		return "internal_error"
	}
}

// groupParam renders a group ID the way the post form submits it.
func groupParam(id *int64) string {
	if id == nil || *id == 0 {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}

func postListResponse(page *service.PostPage) PostListResponse {
	resp := PostListResponse{
		Results: make([]PostResponse, 0, len(page.Posts)),
		Page:    page.Page,
	}
	for _, p := range page.Posts {
		resp.Results = append(resp.Results, postToResponse(p))
	}
	return resp
}

// =============================================================================
// OpenAPI
// =============================================================================

func (h *Handler) registerOpenAPI() {
	h.openapi.RegisterResource(openapi.ResourceInfo{
		Name:           "posts",
		Model:          PostResponse{},
		Input:          CreatePostRequest{},
		SupportsList:   true,
		SupportsGet:    true,
		SupportsCreate: true,
		SupportsUpdate: true,
		SupportsDelete: true,
		AuthRequired:   true,
	})
	h.openapi.RegisterResource(openapi.ResourceInfo{
		Name:           "groups",
		IDParam:        "slug",
		Model:          GroupResponse{},
		Input:          CreateGroupRequest{},
		SupportsList:   true,
		SupportsGet:    true,
		SupportsCreate: true,
		AuthRequired:   true,
	})

	actions := []openapi.ActionInfo{
		{Method: http.MethodGet, Path: "/posts/{id}/comments", Summary: "List comments on a post", Tag: "Comments", Output: []CommentResponse{}},
		{Method: http.MethodPost, Path: "/posts/{id}/comments", Summary: "Comment on a post", Tag: "Comments", Input: CreateCommentRequest{}, Output: CommentResponse{}, Status: http.StatusCreated, AuthRequired: true},
		{Method: http.MethodGet, Path: "/groups/{slug}/posts", Summary: "List a group's posts", Tag: "Groups", Output: PostListResponse{}},
		{Method: http.MethodGet, Path: "/users/{username}/posts", Summary: "List an author's posts", Tag: "Users", Output: PostListResponse{}},
		{Method: http.MethodGet, Path: "/follow", Summary: "List posts by followed authors", Tag: "Follows", Output: PostListResponse{}, AuthRequired: true},
		{Method: http.MethodPost, Path: "/users/{username}/follow", Summary: "Follow an author", Tag: "Follows", Output: FollowResponse{}, Status: http.StatusCreated, AuthRequired: true},
		{Method: http.MethodDelete, Path: "/users/{username}/follow", Summary: "Unfollow an author", Tag: "Follows", Status: http.StatusNoContent, AuthRequired: true},
		{Method: http.MethodDelete, Path: "/cache", Summary: "Clear the page cache", Tag: "Cache", Status: http.StatusNoContent, AuthRequired: true},
	}
	for _, a := range actions {
		h.openapi.RegisterAction(a)
	}
}
