// Package guard decides what may be rendered for the current session.
package guard

import "github.com/jrsteele09/go-pos-console/session"

// Content produces the protected view. It is only called once a guard has let the request through,
// so a denied route never runs its content.
type Content func(st session.State) string

// Guard wraps a route's content with an access rule.
type Guard func(st session.State, route string, child Content) View

// Protected renders child for any signed-in user, whatever their role. Until the
// profile arrives it renders the loading placeholder.
func Protected(st session.State, route string, child Content) View {
	if !st.HasToken() {
		return View{Kind: ViewLogin, Route: route}
	}
	if st.User() == nil {
		return View{Kind: ViewLoading, Route: route}
	}
	return View{Kind: ViewContent, Route: route, Body: child(st)}
}

// AdminOnly renders child for an admin and the forbidden view for anyone else.
// A pending profile renders the loading placeholder.
func AdminOnly(st session.State, route string, child Content) View {
	if !st.HasToken() {
		return View{Kind: ViewLogin, Route: route}
	}
	if st.User() == nil {
		return View{Kind: ViewLoading, Route: route}
	}
	if !st.IsAdmin() {
		return View{Kind: ViewForbidden, Route: route}
	}
	return View{Kind: ViewContent, Route: route, Body: child(st)}
}
