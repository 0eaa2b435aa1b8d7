// Package tenant holds the per-request identity every domain service receives
// as an explicit argument.
package tenant

import "complyhr/internal/platform/models"

type Context struct {
	CompanyID string
	UserID    string
	Role      string
}

func (c Context) IsAdmin() bool {
	return c.Role == models.RoleOwner || c.Role == models.RoleAdmin
}

// CanWrite is false only for viewers.
func (c Context) CanWrite() bool {
	return c.Role != models.RoleViewer
}

// Actor returns the user id as a nullable column value.
func (c Context) Actor() *string {
	if c.UserID == "" {
		return nil
	}
	id := c.UserID
	return &id
}
