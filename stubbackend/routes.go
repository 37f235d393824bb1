package stubbackend

import "net/http"

// Route paths, relative to the API prefix.
const (
	RouteRefresh = "/auth/refresh"
	RouteSignIn  = "/auth/signin"
	RouteSignOut = "/auth/signout"
	RouteProfile = "/user/"
	RouteBrands  = "/brands"
)

func (s *Server) initRoutes() {
	// AUTH
	s.RegisterRouteFunc(http.MethodPost, RouteRefresh, ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc(http.MethodPost, RouteSignIn, ChainMiddleware(s.SignInHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc(http.MethodPost, RouteSignOut, ChainMiddleware(s.SignOutHandler(), s.APIMiddleware(s.RequireAuth())...))

	// USER
	s.RegisterRouteFunc(http.MethodGet, RouteProfile, ChainMiddleware(s.ProfileHandler(), s.APIMiddleware(s.RequireAuth())...))

	// BRANDS
	s.RegisterRouteFunc(http.MethodGet, RouteBrands, ChainMiddleware(s.ListBrandsHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteFunc(http.MethodPost, RouteBrands, ChainMiddleware(s.CreateBrandHandler(), s.APIMiddleware(s.RequireAuth(), s.RequireAdmin())...))
}
