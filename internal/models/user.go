package models

import "time"

type UserRole string

const (
	UserRoleStaff   UserRole = "STAFF"
	UserRoleManager UserRole = "MANAGER"
	UserRoleAdmin   UserRole = "ADMIN"
)

type UserStatus string

const (
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusInactive UserStatus = "INACTIVE"
)

type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	FullName     string
	Role         UserRole
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
