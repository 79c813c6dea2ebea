package service

import (
	"errors"
	"net/http"

	"github.com/artpar/yatube/internal/core/domain"
	"github.com/artpar/yatube/internal/shell/store"
)

var (
	// ErrNotFound is returned when the requested user, group or post does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned when an operation needs a signed-in user.
	ErrUnauthorized = errors.New("authentication required")

	// ErrForbidden is returned when the user may not perform the operation.
	ErrForbidden = errors.New("permission denied")

	// ErrInvalidCredentials is returned by Authenticate for a wrong username or password.
	ErrInvalidCredentials = errors.New("please enter a correct username and password")

	// ErrConflict is returned when the operation collides with existing state.
	ErrConflict = errors.New("already exists")

	// ErrUnavailable is returned when an optional subsystem is not configured.
	ErrUnavailable = errors.New("not available")
)

// HTTPStatus maps a service error to its HTTP status code.
func HTTPStatus(err error) int {
	var verrs domain.ValidationErrors
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &verrs), errors.Is(err, domain.ErrSelfFollow):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound), store.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict), store.IsDuplicate(err):
		return http.StatusConflict
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// notFound converts store misses into ErrNotFound and passes other errors through.
func notFound(err error) error {
	if store.IsNotFound(err) {
		return ErrNotFound
	}
	return err
}
