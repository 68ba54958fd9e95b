// Package access carries the caller identity that every service operation
// receives as an explicit argument.
package access

import "coursehub/services/apperr"

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID uint
	Role   string
}

func (a Actor) IsAdmin() bool {
	return a.UserID != 0 && a.Role == RoleAdmin
}

// RequireLearner accepts any authenticated identity.
func (a Actor) RequireLearner() error {
	if a.UserID == 0 {
		return apperr.New(apperr.Unauthorized, "authentication required")
	}
	return nil
}

func (a Actor) RequireAdmin() error {
	if err := a.RequireLearner(); err != nil {
		return err
	}
	if a.Role != RoleAdmin {
		return apperr.New(apperr.Unauthorized, "access denied! admin only")
	}
	return nil
}
