package auth

import "net/http"

// RequireAdmin guards the admin HTML routes. Without a valid session
// cookie the browser is redirected to the login form; this is an HTML
// surface, so a redirect beats a bare 401.
func RequireAdmin(sessions *SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || sessions.Validate(cookie.Value) != nil {
				http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
