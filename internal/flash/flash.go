// Package flash implements one-shot notices for the admin UI using the
// cookie-then-redirect pattern: a mutation sets the notice, redirects,
// and the next page load consumes it.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

const cookieName = "flash"

// Notice kinds. They map straight to styling classes in the templates.
const (
	KindSuccess = "success"
	KindError   = "error"
)

// Notice is a single message carried across one redirect.
type Notice struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Set stores a notice in the flash cookie. The value is base64 over
// JSON because cookie values cannot carry spaces or commas raw.
func Set(w http.ResponseWriter, kind, message string) {
	payload, err := json.Marshal(Notice{Kind: kind, Message: message})
	if err != nil {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    base64.URLEncoding.EncodeToString(payload),
		Path:     "/admin",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Success sets a success notice.
func Success(w http.ResponseWriter, message string) {
	Set(w, KindSuccess, message)
}

// Error sets an error notice.
func Error(w http.ResponseWriter, message string) {
	Set(w, KindError, message)
}

// Take reads and clears the flash cookie. It returns nil when no notice
// is pending or the cookie is unreadable; a mangled cookie is simply
// dropped.
func Take(w http.ResponseWriter, r *http.Request) *Notice {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return nil
	}

	// Expire the cookie regardless of whether it decodes.
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/admin",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	payload, err := base64.URLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}

	var notice Notice
	if err := json.Unmarshal(payload, &notice); err != nil {
		return nil
	}
	return &notice
}
