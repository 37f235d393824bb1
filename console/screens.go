package console

import (
	"fmt"
	"strings"

	"github.com/jrsteele09/go-pos-console/guard"
	"github.com/jrsteele09/go-pos-console/session"
)

func (a *App) registerScreens() {
	a.router.Handle(RouteDashboard, guard.Protected, dashboardScreen)
	a.router.Handle(RouteProfile, guard.Protected, profileScreen)
	a.router.Handle(RouteBrands, guard.Protected, a.brandsScreen)
	a.router.Handle(RouteAdminBrands, guard.AdminOnly, a.brandsScreen)
}

func dashboardScreen(st session.State) string {
	if u := st.User(); u != nil {
		return fmt.Sprintf("Welcome, %s.", u.DisplayName())
	}
	return "Welcome. Loading your profile..."
}

func profileScreen(st session.State) string {
	u := st.User()
	if u == nil {
		return "Loading your profile..."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Name:      %s\n", u.DisplayName())
	fmt.Fprintf(&b, "Username:  %s\n", u.Username)
	fmt.Fprintf(&b, "Email:     %s\n", u.Email)
	fmt.Fprintf(&b, "Admin:     %t\n", u.Admin())
	if w := u.WarehouseName(); w != "" {
		fmt.Fprintf(&b, "Warehouse: %s\n", w)
	}
	return strings.TrimRight(b.String(), "\n")
}

// brandsScreen shows the page the brands feature last loaded. Fetching is the
// caller's job; a render pass never talks to the backend.
func (a *App) brandsScreen(st session.State) string {
	page := a.brands.Loaded()
	if page == nil {
		return "Brands not loaded."
	}
	if len(page.Brands) == 0 {
		return "No brands yet."
	}
	var b strings.Builder
	for _, br := range page.Brands {
		fmt.Fprintf(&b, "- %s\n", br.Name)
	}
	fmt.Fprintf(&b, "(%d of %d)", len(page.Brands), page.Pagination.Total)
	return b.String()
}
