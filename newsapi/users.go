package newsapi

import (
	"context"

	"github.com/kroma-labs/newsdesk-go/httpclient"
)

// UsersService calls /users.
type UsersService struct {
	client *httpclient.Client
}

// Profile fetches the signed-in user.
func (s *UsersService) Profile(ctx context.Context) (*Profile, error) {
	var out Profile
	_, err := s.client.Request("GetProfile").
		Decode(&out).
		Get(ctx, "/users/me")
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile replaces the given fields of the signed-in user and
// returns the updated profile.
func (s *UsersService) UpdateProfile(ctx context.Context, update ProfileUpdate) (*Profile, error) {
	if err := validateParams(update); err != nil {
		return nil, err
	}

	var out Profile
	_, err := s.client.Request("UpdateProfile").
		Body(update).
		Decode(&out).
		Put(ctx, "/users/me")
	if err != nil {
		return nil, err
	}
	return &out, nil
}
