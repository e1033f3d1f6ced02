package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Ma16q/MotriLog/internal/auth/domain"
	"github.com/Ma16q/MotriLog/internal/auth/notify"
	"github.com/Ma16q/MotriLog/internal/auth/store"
	"github.com/Ma16q/MotriLog/pkg/idx"
	"github.com/Ma16q/MotriLog/pkg/slogx"
)

// UserWithVehicles is one row of the admin user listing.
type UserWithVehicles struct {
	User     domain.User
	Vehicles []domain.Vehicle
}

type AdminService struct {
	Store    store.Store
	Guard    *Guard
	Notifier Notifier
}

// ListUsers returns every user with their vehicles from a single snapshot.
func (s *AdminService) ListUsers(ctx context.Context) ([]UserWithVehicles, error) {
	var out []UserWithVehicles
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		users, err := tx.Users().ListUsers(ctx)
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}

		out = make([]UserWithVehicles, 0, len(users))
		for _, u := range users {
			vehicles, err := tx.Vehicles().ListVehiclesByOwner(ctx, u.ID)
			if err != nil {
				return fmt.Errorf("list vehicles for %s: %w", u.ID, err)
			}
			out = append(out, UserWithVehicles{User: u, Vehicles: vehicles})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ToggleBan flips the target's active flag and returns the new value.
// Suspended users with a linked handle are told about it, best-effort.
func (s *AdminService) ToggleBan(ctx context.Context, actor domain.User, targetID string) (bool, error) {
	log := slogx.FromContext(ctx)

	if _, err := idx.Parse(targetID); err != nil {
		return false, ErrNotFound
	}

	target, err := s.Store.Users().GetUserByID(ctx, targetID)
	if errors.Is(err, store.ErrNotFound) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("load user: %w", err)
	}

	if err := s.Guard.CheckBanTarget(actor, target.ID); err != nil {
		return false, err
	}

	active, err := s.Store.Users().ToggleActive(ctx, target.ID)
	if errors.Is(err, store.ErrNotFound) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("toggle active: %w", err)
	}

	log.Info("user ban toggled", "actor_id", actor.ID, "target_id", target.ID, "is_active", active)

	if !active && target.HasNotificationHandle() {
		if !s.Notifier.Send(ctx, target.TelegramChatID, notify.SuspensionMessage()) {
			log.Warn("suspension notice not delivered", "target_id", target.ID)
		}
	}
	return active, nil
}
