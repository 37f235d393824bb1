package users

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// RoleType represents a console role assigned by the backend
type RoleType string

const (
	RoleAdmin       RoleType = "admin"        // Inventory, pricing and staff management
	RoleCashier     RoleType = "cashier"      // Point of sale only
	RoleStockKeeper RoleType = "stock_keeper" // Goods in, stock takes
)

// Warehouse is the stock location the user is attached to.
type Warehouse struct {
	ID   string `json:"id"`
	Code string `json:"code,omitempty"`
	Name string `json:"name,omitempty"`
}

// User is the profile returned by GET /user/.
type User struct {
	ID           string     `json:"id,omitempty"`
	Username     string     `json:"username,omitempty"`
	Email        string     `json:"email,omitempty"`
	PasswordHash string     `json:"-"` // never serialize
	FirstName    string     `json:"firstName,omitempty"`
	LastName     string     `json:"lastName,omitempty"`
	IsAdmin      bool       `json:"isAdmin"`
	Roles        []RoleType `json:"roles,omitempty"`
	Warehouse    *Warehouse `json:"warehouse,omitempty"`
	LastLogin    time.Time  `json:"lastLogin,omitempty"`
	Blocked      bool       `json:"blocked,omitempty"`
}

// Admin reports whether the user may open admin-only screens.
// The backend flag wins; the role list is honoured for older payloads that omit it.
func (u *User) Admin() bool {
	if u == nil {
		return false
	}
	return u.IsAdmin || u.HasRole(RoleAdmin)
}

func (u *User) HasRole(role RoleType) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// DisplayName prefers the full name and falls back to the username.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	return u.Username
}

// WarehouseName returns "" when the user has no warehouse.
func (u *User) WarehouseName() string {
	if u.Warehouse == nil {
		return ""
	}
	if u.Warehouse.Name != "" {
		return u.Warehouse.Name
	}
	return u.Warehouse.Code
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
