package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	ferrors "github.com/jrsteele09/go-finance-client/internal/errors"
	"github.com/jrsteele09/go-finance-client/users"
)

const usersPath = "/users/"

// UsersService manages accounts. The server only allows admins.
type UsersService struct {
	client *Client
}

func (s *UsersService) List(ctx context.Context, skip, limit int) ([]users.User, error) {
	req := NewRequest(http.MethodGet, usersPath)
	req.Query = pageValues(skip, limit)

	var list []users.User
	if err := s.client.doJSON(ctx, req, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *UsersService) Get(ctx context.Context, id int64) (*users.User, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: user id must be positive", ferrors.ErrInvalidArgument)
	}
	var u users.User
	if err := s.client.doJSON(ctx, NewRequest(http.MethodGet, userPath(id)), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UsersService) Create(ctx context.Context, in users.Input) (*users.User, error) {
	if in.Email == nil || in.Username == nil || in.Password == nil {
		return nil, fmt.Errorf("%w: email, username and password are required", ferrors.ErrInvalidArgument)
	}
	if err := users.ValidatePasswordStrength(*in.Password); err != nil {
		return nil, err
	}
	if in.Role != nil && !users.ValidRole(*in.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", ferrors.ErrInvalidArgument, *in.Role)
	}
	req, err := NewJSONRequest(http.MethodPost, usersPath, in)
	if err != nil {
		return nil, err
	}

	var u users.User
	if err := s.client.doJSON(ctx, req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UsersService) Update(ctx context.Context, id int64, in users.Input) (*users.User, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: user id must be positive", ferrors.ErrInvalidArgument)
	}
	if in.Password != nil {
		if err := users.ValidatePasswordStrength(*in.Password); err != nil {
			return nil, err
		}
	}
	if in.Role != nil && !users.ValidRole(*in.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", ferrors.ErrInvalidArgument, *in.Role)
	}
	req, err := NewJSONRequest(http.MethodPut, userPath(id), in)
	if err != nil {
		return nil, err
	}

	var u users.User
	if err := s.client.doJSON(ctx, req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UsersService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: user id must be positive", ferrors.ErrInvalidArgument)
	}
	var msg MessageResponse
	return s.client.doJSON(ctx, NewRequest(http.MethodDelete, userPath(id)), &msg)
}

func userPath(id int64) string {
	return fmt.Sprintf("%s%d", usersPath, id)
}

func pageValues(skip, limit int) url.Values {
	v := url.Values{}
	if skip > 0 {
		v.Set("skip", strconv.Itoa(skip))
	}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	return v
}
