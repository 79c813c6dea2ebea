package service

import (
	"context"
	"errors"
	"io"

	"github.com/artpar/yatube/internal/core/auth"
	"github.com/artpar/yatube/internal/core/domain"
	"github.com/artpar/yatube/internal/core/validation"
	"github.com/artpar/yatube/internal/shell/media"
	"github.com/artpar/yatube/internal/shell/session"
	"github.com/artpar/yatube/internal/shell/store"
)

// =============================================================================
// Accounts
// =============================================================================

// SignupInput is a registration request.
type SignupInput struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Password1 string
	Password2 string

	// Avatar is an optional image upload.
	Avatar io.Reader
}

// Signup registers a new user.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	form, errs := validation.ValidateSignupForm(in.FirstName, in.LastName, in.Username, in.Email, in.Password1, in.Password2)
	if errs != nil {
		return nil, errs
	}

	user, err := domain.NewUser(form.Username, form.Email, form.FirstName, form.LastName)
	if err != nil {
		return nil, err
	}

	if in.Avatar != nil && s.media != nil {
		name, err := s.media.Save(media.DirAvatars, in.Avatar)
		if err != nil {
			return nil, imageError("avatar", err)
		}
		user.Avatar = name
	}

	if err := s.createUser(ctx, user, form.Password); err != nil {
		if user.Avatar != "" {
			_ = s.media.Delete(user.Avatar)
		}
		return nil, err
	}
	return user, nil
}

// CreateUser registers a user without the signup form, for administration.
func (s *Service) CreateUser(ctx context.Context, username, email, password string, staff bool) (*domain.User, error) {
	user, err := domain.NewUser(username, email, "", "")
	if err != nil {
		return nil, err
	}
	if len([]rune(password)) < validation.MinPasswordLength {
		return nil, domain.ValidationErrors{"password": "password must contain at least 8 characters"}
	}
	user.IsStaff = staff

	if err := s.createUser(ctx, user, password); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) createUser(ctx context.Context, user *domain.User, password string) error {
	hash, err := session.HashPassword(password)
	if err != nil {
		return err
	}
	user.PasswordHash = hash

	if err := s.store.CreateUser(ctx, user); err != nil {
		if store.IsDuplicate(err) {
			return domain.ValidationErrors{"username": "a user with that username already exists"}
		}
		return err
	}

	s.recorder.UserCreated()
	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username, "staff", user.IsStaff)
	return nil
}

// Authenticate checks a username and password pair.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := session.CheckPassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, session.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return user, nil
}

// ChangePassword replaces the signed-in user's password.
func (s *Service) ChangePassword(ctx context.Context, actor auth.Context, oldPassword, newPassword1, newPassword2 string) error {
	if !actor.Authenticated {
		return ErrUnauthorized
	}
	if errs := validation.ValidatePasswordChange(oldPassword, newPassword1, newPassword2); errs != nil {
		return errs
	}

	user, err := s.store.GetUser(ctx, actor.UserID)
	if err != nil {
		return notFound(err)
	}
	if err := session.CheckPassword(user.PasswordHash, oldPassword); err != nil {
		if errors.Is(err, session.ErrPasswordMismatch) {
			return domain.ValidationErrors{"old_password": "your old password was entered incorrectly"}
		}
		return err
	}

	hash, err := session.HashPassword(newPassword1)
	if err != nil {
		return err
	}
	if err := s.store.UpdateUserPassword(ctx, user.ID, hash); err != nil {
		return err
	}

	s.logger.Info("password changed", "user_id", user.ID)
	return nil
}

// User returns a user by ID.
func (s *Service) User(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

// SetStaff grants or revokes staff rights for username.
func (s *Service) SetStaff(ctx context.Context, username string, staff bool) error {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return notFound(err)
	}
	return s.store.SetUserStaff(ctx, user.ID, staff)
}

func imageError(field string, err error) error {
	if errors.Is(err, validation.ErrImageTooLarge) || errors.Is(err, validation.ErrImageUnsupported) {
		return domain.ValidationErrors{field: err.Error()}
	}
	return err
}
