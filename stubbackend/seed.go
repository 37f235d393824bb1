package stubbackend

import (
	"fmt"

	"github.com/jrsteele09/go-pos-console/users"
	"github.com/rs/zerolog/log"
)

// Seeded development accounts.
const (
	SeedAdminUsername   = "admin"
	SeedAdminPassword   = "admin-password"
	SeedCashierUsername = "cashier"
	SeedCashierPassword = "cashier-password"
)

func (s *Server) seedUsers() error {
	warehouse := &users.Warehouse{ID: "wh-main", Code: "MAIN", Name: "Main Warehouse"}

	seeds := []struct {
		user     users.User
		password string
	}{
		{
			user: users.User{
				Username:  SeedAdminUsername,
				Email:     "admin@pos.local",
				FirstName: "Store",
				LastName:  "Manager",
				IsAdmin:   true,
				Roles:     []users.RoleType{users.RoleAdmin},
				Warehouse: warehouse,
			},
			password: SeedAdminPassword,
		},
		{
			user: users.User{
				Username:  SeedCashierUsername,
				Email:     "cashier@pos.local",
				FirstName: "Till",
				LastName:  "Operator",
				Roles:     []users.RoleType{users.RoleCashier},
				Warehouse: warehouse,
			},
			password: SeedCashierPassword,
		},
	}

	for _, seed := range seeds {
		if existing, err := s.users.GetByUsername(seed.user.Username); err == nil && existing != nil {
			continue
		}
		hash, err := users.HashPassword(seed.password)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", seed.user.Username, err)
		}
		u := seed.user
		u.PasswordHash = hash
		if err := s.users.Upsert(&u); err != nil {
			return fmt.Errorf("create %s: %w", seed.user.Username, err)
		}
		log.Info().Str("username", u.Username).Bool("admin", u.IsAdmin).Msg("seeded development user")
	}
	return nil
}
