package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	pkgerr "github.com/shimms/shimms-backend/internal/pkg/errors"
	"github.com/shimms/shimms-backend/internal/types"
)

func TestDecidePrecedence(t *testing.T) {
	actor := uuid.New()
	target := uuid.New()

	cases := []struct {
		name       string
		roles      []string
		targetID   uuid.UUID
		hasActive  bool
		wantAccess bool
	}{
		{"superadmin reaches anyone", []string{types.RoleSuperadmin}, target, false, true},
		{"admin reaches anyone without assignment", []string{types.RoleAdmin}, target, false, true},
		{"self access needs no role", nil, actor, false, true},
		{"coach with active assignment", []string{types.RoleCoach}, target, true, true},
		{"coach without active assignment", []string{types.RoleCoach}, target, false, false},
		{"client reaching another user", []string{types.RoleClient}, target, false, false},
		{"no roles, different target", nil, target, false, false},
		{"coach role also covers self", []string{types.RoleCoach}, actor, false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Decide(actor, NewRoleSet(tc.roles), tc.targetID, tc.hasActive)
			if got != tc.wantAccess {
				t.Fatalf("Decide = %v, want %v", got, tc.wantAccess)
			}
		})
	}
}

func TestAuthorizeDeniesWithForbidden(t *testing.T) {
	actor := uuid.New()
	target := uuid.New()
	roles := newFakeUserRoleRepo()
	roles.roles[actor] = []string{types.RoleClient}

	svc := NewAccessService(nil, testLogger(t), roles, newFakeAssignmentRepo())
	err := svc.Authorize(context.Background(), actor, target)
	if !errors.Is(err, pkgerr.ErrForbidden) {
		t.Fatalf("Authorize error = %v, want ErrForbidden", err)
	}
}

func TestAuthorizeCoachWithActiveAssignment(t *testing.T) {
	coach := uuid.New()
	client := uuid.New()
	roles := newFakeUserRoleRepo()
	roles.roles[coach] = []string{types.RoleCoach}
	assignments := newFakeAssignmentRepo()
	assignments.setActive(coach, client, true)

	svc := NewAccessService(nil, testLogger(t), roles, assignments)
	if err := svc.Authorize(context.Background(), coach, client); err != nil {
		t.Fatalf("Authorize: %v", err)
	}

	// Deactivating the assignment closes the door again.
	assignments.setActive(coach, client, false)
	if err := svc.Authorize(context.Background(), coach, client); !errors.Is(err, pkgerr.ErrForbidden) {
		t.Fatalf("Authorize after deactivation = %v, want ErrForbidden", err)
	}
}

func TestAuthorizeAdminSkipsAssignmentLookup(t *testing.T) {
	admin := uuid.New()
	target := uuid.New()
	roles := newFakeUserRoleRepo()
	roles.roles[admin] = []string{types.RoleAdmin}
	assignments := newFakeAssignmentRepo()

	svc := NewAccessService(nil, testLogger(t), roles, assignments)
	if err := svc.Authorize(context.Background(), admin, target); err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if assignments.queried != 0 {
		t.Fatalf("assignment lookups = %d, want 0 for admin", assignments.queried)
	}
}

func TestAuthorizePropagatesRoleLookupError(t *testing.T) {
	actor := uuid.New()
	roles := newFakeUserRoleRepo()
	roles.err = errors.New("db down")

	svc := NewAccessService(nil, testLogger(t), roles, newFakeAssignmentRepo())
	err := svc.Authorize(context.Background(), actor, uuid.New())
	if err == nil {
		t.Fatalf("expected error from role lookup")
	}
	if errors.Is(err, pkgerr.ErrForbidden) {
		t.Fatalf("infrastructure failure must not masquerade as a denial")
	}
}
