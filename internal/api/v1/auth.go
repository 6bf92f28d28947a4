package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/quickcollab/quickcollab/internal/auth"
	"github.com/quickcollab/quickcollab/internal/domain"
)

type RegisterInput struct {
	Body struct {
		Email    string `json:"email" minLength:"3" maxLength:"255" doc:"User email"`
		Password string `json:"password" minLength:"8" maxLength:"128" doc:"Password"` //nolint:gosec // G117: login credential DTO
		Name     string `json:"name" minLength:"1" maxLength:"255" doc:"Display name"`
	}
}

type RegisterOutput struct {
	Body struct {
		User  domain.Summary `json:"user"`
		Token string         `json:"token"` //nolint:gosec // G117: auth response DTO
	}
}

type LoginInput struct {
	Body struct {
		Email    string `json:"email" minLength:"3" maxLength:"255" doc:"User email"`
		Password string `json:"password" minLength:"1" maxLength:"128" doc:"Password"` //nolint:gosec // G117: login credential DTO
	}
}

type LoginOutput struct {
	Body struct {
		User  domain.Summary `json:"user"`
		Token string         `json:"token"` //nolint:gosec // G117: auth response DTO
	}
}

func RegisterAuthRoutes(api huma.API, authSvc AuthService) {
	huma.Register(api, huma.Operation{
		OperationID: "register",
		Method:      http.MethodPost,
		Path:        "/auth/register",
		Summary:     "Register a new user",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *RegisterInput) (*RegisterOutput, error) {
		user, err := authSvc.Register(ctx, input.Body.Email, input.Body.Password, input.Body.Name)
		if err != nil {
			if errors.Is(err, auth.ErrUserAlreadyExists) {
				return nil, huma.Error409Conflict("user already exists")
			}
			return nil, mapDomainError(err, "user")
		}

		token, err := authSvc.Token(user.ID)
		if err != nil {
			return nil, huma.Error500InternalServerError("registered but failed to issue token", err)
		}

		out := &RegisterOutput{}
		out.Body.User = user.Summary()
		out.Body.Token = token
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Login with email and password",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
		user, token, err := authSvc.Login(ctx, input.Body.Email, input.Body.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				return nil, huma.Error401Unauthorized("invalid email or password")
			}
			return nil, huma.Error500InternalServerError("login failed", err)
		}

		out := &LoginOutput{}
		out.Body.User = user.Summary()
		out.Body.Token = token
		return out, nil
	})
}
