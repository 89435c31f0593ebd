package models

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Staff roles. Each role has its own dashboard room.
const (
	RoleChief        = "chief"
	RoleReceptionist = "receptionist"
	RoleInventory    = "inventory"
	RoleManager      = "manager"
)

// Roles lists every staff role.
var Roles = []string{RoleChief, RoleReceptionist, RoleInventory, RoleManager}

// NormalizeRole maps legacy role names and reports whether the result is known.
func NormalizeRole(role string) (string, bool) {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "stakeholder" {
		role = RoleManager
	}
	for _, r := range Roles {
		if r == role {
			return role, true
		}
	}
	return role, false
}

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:80;uniqueIndex;not null" json:"username"`
	Name         string    `gorm:"size:150" json:"name"`
	Password     string    `gorm:"-" json:"-"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         string    `gorm:"size:20;not null;default:receptionist" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HashPassword replaces PasswordHash with a bcrypt hash of Password.
func (u *User) HashPassword() error {
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	u.Password = ""
	return nil
}

func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain)) == nil
}
