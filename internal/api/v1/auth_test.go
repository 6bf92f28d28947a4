package v1_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/quickcollab/quickcollab/internal/api/v1"
	"github.com/quickcollab/quickcollab/internal/auth"
	"github.com/quickcollab/quickcollab/internal/domain"
)

// ---------------------------------------------------------------------------
// POST /auth/register
// ---------------------------------------------------------------------------

func TestRegister(t *testing.T) {
	t.Parallel()

	fixtureUser := &domain.User{
		ID:           uuid.New(),
		Email:        "alice@example.com",
		Name:         "Alice",
		PasswordHash: "salt$hash",
	}

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		authSvc := &mockAuthService{
			registerFunc: func(_ context.Context, email, password, name string) (*domain.User, error) {
				assert.Equal(t, "alice@example.com", email)
				assert.Equal(t, "secretpw1", password)
				assert.Equal(t, "Alice", name)
				return fixtureUser, nil
			},
			tokenFunc: func(userID uuid.UUID) (string, error) {
				assert.Equal(t, fixtureUser.ID, userID)
				return "signed-jwt", nil
			},
		}

		v1.RegisterAuthRoutes(api, authSvc)

		resp := api.Post("/auth/register", map[string]any{
			"email":    "alice@example.com",
			"password": "secretpw1",
			"name":     "Alice",
		})

		require.Equal(t, http.StatusOK, resp.Code)

		var body struct {
			User  domain.Summary `json:"user"`
			Token string         `json:"token"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, fixtureUser.ID, body.User.ID)
		assert.Equal(t, fixtureUser.Email, body.User.Email)
		assert.Equal(t, "signed-jwt", body.Token)
		assert.NotContains(t, resp.Body.String(), "salt$hash", "password hash must not leak")
	})

	t.Run("duplicate_email", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		authSvc := &mockAuthService{
			registerFunc: func(_ context.Context, _, _, _ string) (*domain.User, error) {
				return nil, fmt.Errorf("auth.Register: %w", auth.ErrUserAlreadyExists)
			},
		}

		v1.RegisterAuthRoutes(api, authSvc)

		resp := api.Post("/auth/register", map[string]any{
			"email":    "alice@example.com",
			"password": "secretpw1",
			"name":     "Alice",
		})

		assert.Equal(t, http.StatusConflict, resp.Code)
	})

	t.Run("short_password_rejected_by_schema", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		authSvc := &mockAuthService{}

		v1.RegisterAuthRoutes(api, authSvc)

		resp := api.Post("/auth/register", map[string]any{
			"email":    "alice@example.com",
			"password": "short",
			"name":     "Alice",
		})

		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// POST /auth/login
// ---------------------------------------------------------------------------

func TestLogin(t *testing.T) {
	t.Parallel()

	fixtureUser := &domain.User{
		ID:    uuid.New(),
		Email: "alice@example.com",
		Name:  "Alice",
	}

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		authSvc := &mockAuthService{
			loginFunc: func(_ context.Context, email, password string) (*domain.User, string, error) {
				assert.Equal(t, "alice@example.com", email)
				assert.Equal(t, "secretpw1", password)
				return fixtureUser, "signed-jwt", nil
			},
		}

		v1.RegisterAuthRoutes(api, authSvc)

		resp := api.Post("/auth/login", map[string]any{
			"email":    "alice@example.com",
			"password": "secretpw1",
		})

		require.Equal(t, http.StatusOK, resp.Code)

		var body struct {
			User  domain.Summary `json:"user"`
			Token string         `json:"token"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, fixtureUser.ID, body.User.ID)
		assert.Equal(t, "signed-jwt", body.Token)
	})

	t.Run("invalid_credentials", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		authSvc := &mockAuthService{
			loginFunc: func(_ context.Context, _, _ string) (*domain.User, string, error) {
				return nil, "", fmt.Errorf("auth.Login: %w", auth.ErrInvalidCredentials)
			},
		}

		v1.RegisterAuthRoutes(api, authSvc)

		resp := api.Post("/auth/login", map[string]any{
			"email":    "alice@example.com",
			"password": "wrong",
		})

		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})
}
