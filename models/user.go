// models/user.go
package models

import "time"

// Role is the authorization role resolved by the role directory.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleWorker Role = "worker"
	RoleNone   Role = "none"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleWorker, RoleNone:
		return true
	}
	return false
}

// User model, keyed by the auth provider's uid
type User struct {
	UID         string    `json:"uid" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Email       string    `json:"email" bson:"email"`
	PhoneNumber string    `json:"phoneNumber,omitempty" bson:"phoneNumber,omitempty"`
	IsAdmin     bool      `json:"isAdmin" bson:"isAdmin"`
	IsWorker    bool      `json:"isWorker" bson:"isWorker"`
	Role        Role      `json:"role" bson:"role"`
	BranchID    *string   `json:"branchId" bson:"branchId"`
	BranchName  *string   `json:"branchName,omitempty" bson:"branchName"`
	IsBlocked   bool      `json:"isBlocked" bson:"isBlocked"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

// RoleInfo is what the role directory answers for a uid.
type RoleInfo struct {
	UID       string  `json:"uid"`
	Role      Role    `json:"role"`
	BranchID  *string `json:"branchId"`
	IsBlocked bool    `json:"isBlocked"`
}

// RoleAssignment is the document change applied by SetRole.
type RoleAssignment struct {
	Role       Role
	IsAdmin    bool
	IsWorker   bool
	BranchID   *string
	BranchName *string
}

type SetRoleRequest struct {
	Role     Role   `json:"role" validate:"required,oneof=admin worker none"`
	BranchID string `json:"branchId,omitempty"`
}

type ProfileRequest struct {
	Name        string `json:"name" validate:"required"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}
