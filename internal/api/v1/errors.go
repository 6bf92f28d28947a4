package v1

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/quickcollab/quickcollab/internal/domain"
)

// mapDomainError translates coordinator and repository failures into huma
// status errors. noun names the resource for the generic messages.
func mapDomainError(err error, noun string) error {
	var verr *domain.ValidationError

	switch {
	case errors.As(err, &verr):
		return huma.Error400BadRequest(verr.Field + ": " + verr.Reason)
	case errors.Is(err, domain.ErrInvalid):
		return huma.Error400BadRequest("invalid " + noun)
	case errors.Is(err, domain.ErrNotFound):
		return huma.Error404NotFound(noun + " not found")
	case errors.Is(err, domain.ErrForbidden):
		return huma.Error403Forbidden("not a member of this board")
	case errors.Is(err, domain.ErrConflict):
		return huma.Error409Conflict(noun + " already exists")
	case errors.Is(err, domain.ErrUnauthorized):
		return huma.Error401Unauthorized("authentication required")
	case errors.Is(err, domain.ErrUnavailable):
		return huma.Error503ServiceUnavailable("store unavailable, try again")
	}

	return huma.Error500InternalServerError("failed to process "+noun, err)
}
