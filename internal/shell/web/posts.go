package web

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/artpar/yatube/internal/core/auth"
	"github.com/artpar/yatube/internal/core/domain"
	"github.com/artpar/yatube/internal/shell/service"
)

// =============================================================================
// Listings
// =============================================================================

type postsView struct {
	layout
	Group     *domain.Group
	Author    *domain.AuthorProfile
	Following bool
	CanFollow bool
	Feed      bool
	Posts     []domain.Post
	Page      domain.Page
}

// handlePostList serves the index, follow feed, group and profile pages,
// which share one template.
func (h *Handler) handlePostList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := auth.FromContext(ctx)
	rawPage := r.URL.Query().Get("page")
	view := postsView{layout: h.layout(r)}

	var (
		page *service.PostPage
		err  error
	)
	switch {
	case chi.URLParam(r, "slug") != "":
		view.Group, page, err = h.svc.GroupPosts(ctx, chi.URLParam(r, "slug"), rawPage)
	case chi.URLParam(r, "username") != "":
		var profile *service.ProfileView
		profile, err = h.svc.Profile(ctx, actor, chi.URLParam(r, "username"), rawPage)
		if err == nil {
			view.Author = &profile.Author
			view.Following = profile.Following
			view.CanFollow = actor.Authenticated && !auth.IsSelf(actor, profile.Author.User)
			page = &profile.PostPage
		}
	case r.URL.Path == "/follow/":
		view.Feed = true
		page, err = h.svc.FollowFeed(ctx, actor, rawPage)
	default:
		page, err = h.svc.IndexPosts(ctx, rawPage)
	}
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	view.Posts = page.Posts
	view.Page = page.Page
	h.render(w, r, http.StatusOK, tmplPosts, view)
}

// =============================================================================
// Detail
// =============================================================================

type postView struct {
	layout
	Post      domain.Post
	Author    domain.AuthorProfile
	Following bool
	CanFollow bool
	CanEdit   bool
}

func (h *Handler) handlePostDetail(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		h.notFound(w, r)
		return
	}

	actor := auth.FromContext(r.Context())
	detail, err := h.svc.PostDetail(r.Context(), actor, chi.URLParam(r, "username"), id)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, tmplPost, postView{
		layout:    h.layout(r),
		Post:      detail.Post,
		Author:    detail.Author,
		Following: detail.Following,
		CanFollow: auth.CanFollow(actor, detail.Author.User),
		CanEdit:   auth.CanEditPost(actor, detail.Post),
	})
}

// =============================================================================
// Create and Edit
// =============================================================================

// postFormValues echoes submitted values back into the form.
type postFormValues struct {
	Text  string
	Group string
	Image string
}

type postFormView struct {
	layout
	Edit   bool
	Form   postFormValues
	Groups []domain.Group
	Errors domain.ValidationErrors
}

func (h *Handler) renderPostForm(w http.ResponseWriter, r *http.Request, edit bool, form postFormValues, errs domain.ValidationErrors) {
	groups, err := h.svc.Groups(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, tmplPostForm, postFormView{
		layout: h.layout(r),
		Edit:   edit,
		Form:   form,
		Groups: groups,
		Errors: errs,
	})
}

func (h *Handler) handleNewPostForm(w http.ResponseWriter, r *http.Request) {
	h.renderPostForm(w, r, false, postFormValues{}, nil)
}

func (h *Handler) handleNewPost(w http.ResponseWriter, r *http.Request) {
	in, closeFn, err := h.parsePostForm(w, r)
	if err != nil {
		h.renderPostForm(w, r, false, postFormValues{}, domain.ValidationErrors{"image": err.Error()})
		return
	}
	defer closeFn()

	_, err = h.svc.CreatePost(r.Context(), auth.FromContext(r.Context()), in)
	var verrs domain.ValidationErrors
	if errors.As(err, &verrs) {
		h.renderPostForm(w, r, false, postFormValues{Text: in.Text, Group: in.Group}, verrs)
		return
	}
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) handleEditPostForm(w http.ResponseWriter, r *http.Request) {
	post, ok := h.authoredPost(w, r)
	if !ok {
		return
	}
	h.renderPostForm(w, r, true, formValues(post), nil)
}

func (h *Handler) handleEditPost(w http.ResponseWriter, r *http.Request) {
	post, ok := h.authoredPost(w, r)
	if !ok {
		return
	}

	in, closeFn, err := h.parsePostForm(w, r)
	if err != nil {
		h.renderPostForm(w, r, true, formValues(post), domain.ValidationErrors{"image": err.Error()})
		return
	}
	defer closeFn()

	_, err = h.svc.UpdatePost(r.Context(), auth.FromContext(r.Context()), post.ID, in)
	var verrs domain.ValidationErrors
	if errors.As(err, &verrs) {
		h.renderPostForm(w, r, true, postFormValues{Text: in.Text, Group: in.Group, Image: post.Image}, verrs)
		return
	}
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/%s/%d/", post.Author.Username, post.ID), http.StatusFound)
}

// authoredPost loads the post from the URL and checks it belongs to the
// {username} segment, answering 404 otherwise.
func (h *Handler) authoredPost(w http.ResponseWriter, r *http.Request) (*domain.Post, bool) {
	id, err := postID(r)
	if err != nil {
		h.notFound(w, r)
		return nil, false
	}
	post, err := h.svc.Post(r.Context(), id)
	if err != nil {
		h.serviceError(w, r, err)
		return nil, false
	}
	if post.Author.Username != chi.URLParam(r, "username") {
		h.notFound(w, r)
		return nil, false
	}
	return post, true
}

func formValues(post *domain.Post) postFormValues {
	v := postFormValues{Text: post.Text, Image: post.Image}
	if post.GroupID != nil {
		v.Group = strconv.FormatInt(*post.GroupID, 10)
	}
	return v
}

// parsePostForm reads a multipart or urlencoded post form. The returned
// func releases the uploaded file.
func (h *Handler) parsePostForm(w http.ResponseWriter, r *http.Request) (service.PostInput, func(), error) {
	noop := func() {}
	file, err := h.parseUpload(w, r, "image")
	if err != nil {
		return service.PostInput{}, noop, err
	}

	in := service.PostInput{
		Text:       r.FormValue("text"),
		Group:      r.FormValue("group"),
		ClearImage: r.FormValue("image-clear") != "",
	}
	if file == nil {
		return in, noop, nil
	}
	in.Image = file
	return in, func() { file.Close() }, nil
}

// errUploadTooLarge is shown when the request body exceeds the upload limit.
var errUploadTooLarge = errors.New("the uploaded file is too large")

// parseUpload parses the request form and returns the named file, or nil
// when none was sent.
func (h *Handler) parseUpload(w http.ResponseWriter, r *http.Request, field string) (multipart.File, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+1<<20)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errUploadTooLarge
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			return nil, err
		}
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
	}

	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if header.Size == 0 {
		file.Close()
		return nil, nil
	}
	return file, nil
}

// =============================================================================
// Comments and Follows
// =============================================================================

// handleAddComment stores a comment and always returns to the post page.
// Invalid comments are dropped.
func (h *Handler) handleAddComment(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	id, err := postID(r)
	if err != nil {
		h.notFound(w, r)
		return
	}

	_, err = h.svc.CommentOnAuthoredPost(r.Context(), auth.FromContext(r.Context()), username, id, r.FormValue("text"))
	var verrs domain.ValidationErrors
	if err != nil && !errors.As(err, &verrs) {
		h.serviceError(w, r, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/%s/%d/", username, id), http.StatusFound)
}

func (h *Handler) handleFollow(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	_, err := h.svc.Follow(r.Context(), auth.FromContext(r.Context()), username)
	if err != nil && !errors.Is(err, domain.ErrSelfFollow) {
		h.serviceError(w, r, err)
		return
	}
	http.Redirect(w, r, "/"+username+"/", http.StatusFound)
}

func (h *Handler) handleUnfollow(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if err := h.svc.Unfollow(r.Context(), auth.FromContext(r.Context()), username); err != nil {
		h.serviceError(w, r, err)
		return
	}
	http.Redirect(w, r, "/"+username+"/", http.StatusFound)
}
