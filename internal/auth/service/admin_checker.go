package service

import (
	"context"
	"log"

	"github.com/mapa-lotes/lotmap-backend/internal/auth"
)

const roleAdmin = "admin"

// RoleLookup is the persistence dependency of the admin check.
type RoleLookup interface {
	RoleByUID(ctx context.Context, uid string) (string, error)
}

// AdminChecker answers "may this session run privileged commands".
type AdminChecker struct {
	profiles RoleLookup
}

// NewAdminChecker creates a new admin checker.
func NewAdminChecker(profiles RoleLookup) *AdminChecker {
	return &AdminChecker{profiles: profiles}
}

// IsAdmin reports whether the session carried by ctx has the
// administrator role. Fail-closed: an anonymous session, a missing
// profile, or a failed lookup all answer false, never true.
func (s *AdminChecker) IsAdmin(ctx context.Context) bool {
	uid := auth.SessionUIDFromContext(ctx)
	if uid == "" {
		return false
	}

	role, err := s.profiles.RoleByUID(ctx, uid)
	if err != nil {
		log.Printf("[warn] auth: role lookup for %s failed, treating as not admin: %v", uid, err)
		return false
	}
	return role == roleAdmin
}
