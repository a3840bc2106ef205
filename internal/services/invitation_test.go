package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgerr "github.com/shimms/shimms-backend/internal/pkg/errors"
	"github.com/shimms/shimms-backend/internal/types"
)

func TestValidateRedeemable(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name    string
		inv     *types.Invitation
		wantErr error
	}{
		{
			name:    "pending and unexpired",
			inv:     &types.Invitation{Status: types.InvitationPending, ExpiresAt: now.Add(time.Hour)},
			wantErr: nil,
		},
		{
			name:    "already accepted",
			inv:     &types.Invitation{Status: types.InvitationAccepted, ExpiresAt: now.Add(time.Hour)},
			wantErr: pkgerr.ErrConflict,
		},
		{
			name:    "expired token",
			inv:     &types.Invitation{Status: types.InvitationPending, ExpiresAt: now.Add(-time.Minute)},
			wantErr: pkgerr.ErrConflict,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateRedeemable(tc.inv, now)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("validateRedeemable: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func newInvitationForTest(t *testing.T, inviterRoles map[uuid.UUID][]string) (InvitationService, *fakeInvitationRepo, *fakeUserRepo) {
	t.Helper()
	roles := newFakeUserRoleRepo()
	for id, rs := range inviterRoles {
		roles.roles[id] = rs
	}
	invitations := newFakeInvitationRepo()
	users := newFakeUserRepo()
	access := NewAccessService(nil, testLogger(t), roles, newFakeAssignmentRepo())
	svc := NewInvitationService(nil, testLogger(t), invitations, users, roles, newFakeAssignmentRepo(),
		access, &fakeJourneyService{}, &fakeMailer{}, 168*time.Hour, "http://localhost:3000")
	return svc, invitations, users
}

func TestInvitePermissionMatrix(t *testing.T) {
	cases := []struct {
		name        string
		inviterRole string
		inviteeRole string
		wantErr     error
	}{
		{"superadmin invites admin", types.RoleSuperadmin, types.RoleAdmin, nil},
		{"admin invites coach", types.RoleAdmin, types.RoleCoach, nil},
		{"admin cannot invite superadmin", types.RoleAdmin, types.RoleSuperadmin, pkgerr.ErrForbidden},
		{"coach invites client", types.RoleCoach, types.RoleClient, nil},
		{"coach cannot invite coach", types.RoleCoach, types.RoleCoach, pkgerr.ErrForbidden},
		{"client cannot invite", types.RoleClient, types.RoleClient, pkgerr.ErrForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inviter := uuid.New()
			svc, invitations, _ := newInvitationForTest(t, map[uuid.UUID][]string{
				inviter: {tc.inviterRole},
			})

			inv, err := svc.Invite(context.Background(), inviter, "new.person@example.com", tc.inviteeRole)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("error = %v, want %v", err, tc.wantErr)
				}
				if len(invitations.created) != 0 {
					t.Fatalf("no invitation row expected on denial")
				}
				return
			}
			if err != nil {
				t.Fatalf("Invite: %v", err)
			}
			if inv.Status != types.InvitationPending {
				t.Fatalf("status = %q, want pending", inv.Status)
			}
			if inv.Token == "" {
				t.Fatalf("invitation must carry a token")
			}
			if inv.ExpiresAt.Before(time.Now()) {
				t.Fatalf("expiry must be in the future")
			}
		})
	}
}

func TestInviteRejectsExistingEmail(t *testing.T) {
	inviter := uuid.New()
	svc, _, users := newInvitationForTest(t, map[uuid.UUID][]string{
		inviter: {types.RoleAdmin},
	})
	users.users[uuid.New()] = &types.User{ID: uuid.New(), Email: "taken@example.com"}

	_, err := svc.Invite(context.Background(), inviter, "taken@example.com", types.RoleClient)
	if !errors.Is(err, pkgerr.ErrConflict) {
		t.Fatalf("error = %v, want ErrConflict", err)
	}
}

func TestInviteRejectsBadInput(t *testing.T) {
	inviter := uuid.New()
	svc, _, _ := newInvitationForTest(t, map[uuid.UUID][]string{
		inviter: {types.RoleAdmin},
	})

	if _, err := svc.Invite(context.Background(), inviter, "not-an-email", types.RoleClient); err == nil {
		t.Fatalf("expected error for invalid email")
	}
	_, err := svc.Invite(context.Background(), inviter, "fine@example.com", "warlord")
	if !errors.Is(err, pkgerr.ErrInvalidArgument) {
		t.Fatalf("error = %v, want ErrInvalidArgument for unknown role", err)
	}
}

func TestInviteDefaultsToClientRole(t *testing.T) {
	inviter := uuid.New()
	svc, invitations, _ := newInvitationForTest(t, map[uuid.UUID][]string{
		inviter: {types.RoleCoach},
	})

	inv, err := svc.Invite(context.Background(), inviter, "newbie@example.com", "")
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	if inv.Role != types.RoleClient {
		t.Fatalf("role = %q, want client", inv.Role)
	}
	if len(invitations.created) != 1 {
		t.Fatalf("invitations created = %d, want 1", len(invitations.created))
	}
}
