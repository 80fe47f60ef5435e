// Package me serves the caller's own profile and favorites.
package me

import (
	"context"
	"log/slog"

	"rento/internal/app/clock"
	"rento/internal/app/commands"
	"rento/internal/app/dto"
	"rento/internal/app/queries"
	"rento/internal/app/uow"
	domainuser "rento/internal/domain/user"
)

const (
	GetProfileKey    = "me.profile.get"
	UpdateProfileKey = "me.profile.update"
)

type GetProfileQuery struct {
	UserID string `validate:"required"`
}

func (q GetProfileQuery) Key() string     { return GetProfileKey }
func (q GetProfileQuery) ActorID() string { return q.UserID }

type GetProfileHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetProfileHandler) Handle(ctx context.Context, q GetProfileQuery) (dto.User, error) {
	scope, err := uow.Join(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return dto.User{}, err
	}
	defer scope.Close()

	u, err := scope.Unit.Users().ByID(scope.Ctx, domainuser.ID(q.UserID))
	if err != nil {
		return dto.User{}, err
	}
	return dto.MapUser(u), nil
}

// UpdateProfileCommand changes name and phone; nil fields keep their value.
type UpdateProfileCommand struct {
	UserID string `validate:"required"`
	Name   *string
	Phone  *string
}

func (c UpdateProfileCommand) Key() string     { return UpdateProfileKey }
func (c UpdateProfileCommand) ActorID() string { return c.UserID }

type UpdateProfileHandler struct {
	UoWFactory uow.UoWFactory
	Clock      clock.Clock
	Logger     *slog.Logger
}

func (h *UpdateProfileHandler) Handle(ctx context.Context, cmd UpdateProfileCommand) (*dto.User, error) {
	scope, err := uow.Join(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer scope.Close()
	ctx = scope.Ctx

	u, err := scope.Unit.Users().ByID(ctx, domainuser.ID(cmd.UserID))
	if err != nil {
		return nil, err
	}
	if err := u.UpdateProfile(domainuser.ProfileChanges{Name: cmd.Name, Phone: cmd.Phone}, h.Clock.Now()); err != nil {
		return nil, err
	}
	if err := scope.Unit.Users().Save(ctx, u); err != nil {
		return nil, err
	}
	if err := scope.Commit(); err != nil {
		return nil, err
	}
	logger(h.Logger).Info("profile updated", "user_id", u.ID)
	out := dto.MapUser(u)
	return &out, nil
}

func logger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

var (
	_ queries.Handler[GetProfileQuery, dto.User]        = (*GetProfileHandler)(nil)
	_ commands.Handler[UpdateProfileCommand, *dto.User] = (*UpdateProfileHandler)(nil)
)
