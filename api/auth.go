package api

import (
	"context"
	"errors"
)

// AuthServiceAPI logs users in and out.
type AuthServiceAPI interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*LoginResult, error)
	Logout(ctx context.Context) error
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// AuthService implements AuthServiceAPI over HTTP.
type AuthService struct {
	client *Client
}

// NewAuthService creates an AuthService.
func NewAuthService(c *Client) *AuthService {
	return &AuthService{client: c}
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	return create[LoginResult](ctx, s.client, "auth/login", req)
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	if refreshToken == "" {
		return nil, errors.New("no refresh token available")
	}
	return create[LoginResult](ctx, s.client, "auth/refresh", refreshRequest{RefreshToken: refreshToken})
}

func (s *AuthService) Logout(ctx context.Context) error {
	return s.client.post(ctx, "auth/logout", struct{}{}, nil)
}
