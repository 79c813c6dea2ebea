package web

import (
	"errors"
	"net/http"

	"github.com/artpar/yatube/internal/core/auth"
	"github.com/artpar/yatube/internal/core/domain"
	"github.com/artpar/yatube/internal/shell/service"
	"github.com/artpar/yatube/internal/shell/web/middleware"
)

// =============================================================================
// Signup
// =============================================================================

type signupValues struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
}

type signupView struct {
	layout
	Form   signupValues
	Errors domain.ValidationErrors
}

func (h *Handler) handleSignupForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, tmplSignup, signupView{layout: h.layout(r)})
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	avatar, err := h.parseUpload(w, r, "avatar")
	if err != nil {
		h.render(w, r, http.StatusOK, tmplSignup, signupView{
			layout: h.layout(r),
			Errors: domain.ValidationErrors{"avatar": err.Error()},
		})
		return
	}

	in := service.SignupInput{
		FirstName: r.FormValue("first_name"),
		LastName:  r.FormValue("last_name"),
		Username:  r.FormValue("username"),
		Email:     r.FormValue("email"),
		Password1: r.FormValue("password1"),
		Password2: r.FormValue("password2"),
	}
	if avatar != nil {
		defer avatar.Close()
		in.Avatar = avatar
	}

	_, err = h.svc.Signup(r.Context(), in)
	var verrs domain.ValidationErrors
	if errors.As(err, &verrs) {
		h.render(w, r, http.StatusOK, tmplSignup, signupView{
			layout: h.layout(r),
			Form: signupValues{
				FirstName: in.FirstName,
				LastName:  in.LastName,
				Username:  in.Username,
				Email:     in.Email,
			},
			Errors: verrs,
		})
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, middleware.LoginPath, http.StatusFound)
}

// =============================================================================
// Login and Logout
// =============================================================================

type loginView struct {
	layout
	Next     string
	Username string
	Error    string
}

func (h *Handler) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, tmplLogin, loginView{
		layout: h.layout(r),
		Next:   r.URL.Query().Get("next"),
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	key := middleware.ClientKey(r)
	if h.throttle != nil && h.throttle.Blocked(key) {
		h.logger.Warn("login throttled", "remote_addr", key)
		http.Error(w, "Too many login attempts. Try again later.", http.StatusTooManyRequests)
		return
	}

	username := r.FormValue("username")
	next := r.FormValue("next")

	user, err := h.svc.Authenticate(r.Context(), username, r.FormValue("password"))
	if errors.Is(err, service.ErrInvalidCredentials) {
		if h.throttle != nil {
			h.throttle.Fail(key)
		}
		h.render(w, r, http.StatusOK, tmplLogin, loginView{
			layout:   h.layout(r),
			Next:     next,
			Username: username,
			Error:    err.Error(),
		})
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	if h.throttle != nil {
		h.throttle.Reset(key)
	}
	if err := h.sessions.Login(w, *user); err != nil {
		h.serverError(w, r, err)
		return
	}

	h.logger.Info("user logged in", "user_id", user.ID, "username", user.Username)
	http.Redirect(w, r, auth.SafeRedirect(next, "/"), http.StatusFound)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearCookie(w)

	view := pageView{layout: h.layout(r)}
	view.Auth = auth.Anonymous()
	h.render(w, r, http.StatusOK, tmplLoggedOut, view)
}

// =============================================================================
// Password Change
// =============================================================================

type passwordChangeView struct {
	layout
	Errors domain.ValidationErrors
}

func (h *Handler) handlePasswordChangeForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, tmplPasswordChange, passwordChangeView{layout: h.layout(r)})
}

func (h *Handler) handlePasswordChange(w http.ResponseWriter, r *http.Request) {
	err := h.svc.ChangePassword(r.Context(), auth.FromContext(r.Context()),
		r.FormValue("old_password"), r.FormValue("new_password1"), r.FormValue("new_password2"))

	var verrs domain.ValidationErrors
	if errors.As(err, &verrs) {
		h.render(w, r, http.StatusOK, tmplPasswordChange, passwordChangeView{layout: h.layout(r), Errors: verrs})
		return
	}
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	// Older sessions no longer match the new password; keep this one.
	user, err := h.svc.User(r.Context(), auth.FromContext(r.Context()).UserID)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	if err := h.sessions.Login(w, *user); err != nil {
		h.serviceError(w, r, err)
		return
	}

	http.Redirect(w, r, "/auth/password_change/done/", http.StatusFound)
}

func (h *Handler) handlePasswordChangeDone(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, tmplPasswordChangeDone, pageView{layout: h.layout(r)})
}
