package models

import "time"

type UserRole string

const (
	UserRoleCitizen UserRole = "citizen"
	UserRoleAdmin   UserRole = "admin"
)

type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	Name         string
	Gender       string
	Phone        string
	Address      string
	City         string
	State        string
	District     string
	Pincode      string
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile carries the identity-bearing fields a user may change after
// signup. Email and password are not updatable through this path.
type Profile struct {
	Name     string
	Gender   string
	Phone    string
	Address  string
	City     string
	State    string
	District string
	Pincode  string
}
