package user

import (
	"time"
)

// User mirrors the documents the signup flow writes to the users collection. IDs are the
// 12-digit codes issued at signup; the password hash is never decoded.
type User struct {
	ID          string    `json:"id" bson:"_id"`
	CompanyCode string    `json:"companyCode" bson:"companyCode"`
	Name        string    `json:"name" bson:"name"`
	Email       string    `json:"email" bson:"email"`
	Mobile      string    `json:"mobile,omitempty" bson:"mobile,omitempty"`
	Role        string    `json:"role" bson:"role"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Role constants
const (
	RoleUser         = "user"
	RoleAdmin        = "admin"
	RoleSuperAdmin   = "sadmin"
	RoleUnauthorized = "unauthorized"
)

// Approval actions
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// GetAllUsersRequest represents request for getting the users of one company
type GetAllUsersRequest struct {
	CompanyCode string
	Page        int
	Limit       int
	Skip        int
	Role        string
	Search      string
}

// GetAllUsersResponse represents response for getting all users
type GetAllUsersResponse struct {
	Users      []*User `json:"users"`
	TotalCount int64   `json:"totalCount"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	TotalPages int     `json:"totalPages"`
}

type ApproveRequest struct {
	UserID string `json:"userId" binding:"required"`
	Action string `json:"action" binding:"required"`
}

// IsAdmin checks if user is admin or super admin
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}

// IsApproved reports whether an admin has let the user in.
func (u *User) IsApproved() bool {
	return u.Role != RoleUnauthorized && u.Role != ""
}
