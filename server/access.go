package server

import (
	"context"

	"github.com/habiliai/tutorwise/auth"
	"github.com/habiliai/tutorwise/entity"
	"github.com/habiliai/tutorwise/errors"
)

// actingUser resolves the user a request acts for. An authenticated caller
// only ever acts as the token's user; anonymous callers use the claimed id.
func actingUser(ctx context.Context, claimed string) (string, error) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return claimed, nil
	}
	if claimed != "" && claimed != userID {
		return "", errors.Wrapf(errors.ErrForbidden, "Not allowed to act for another user")
	}
	return userID, nil
}

// ownedSpace loads a space. Authenticated callers must own it.
func (s *server) ownedSpace(ctx context.Context, id string) (*entity.Space, error) {
	found, err := s.Spaces.GetSpace(ctx, id)
	if err != nil {
		return nil, spaceNotFound(err)
	}
	if userID, ok := auth.UserIDFromContext(ctx); ok && found.OwnerID != userID {
		return nil, errors.Wrapf(errors.ErrForbidden, "Not allowed to access this space")
	}
	return found, nil
}
