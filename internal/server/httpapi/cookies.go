package httpapi

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/figmints/meetsync/internal/server/models"
)

const (
	// authTokenCookie carries the signed session token. HttpOnly: scripts
	// never see it.
	authTokenCookie = "auth_token"
	// authUserCookie carries a readable identity summary for UI bootstrap.
	// It is informational only; the server never trusts its contents.
	authUserCookie = "auth_user"
)

func setAuthCookies(w http.ResponseWriter, r *http.Request, token string, identity models.Identity, validity time.Duration) {
	isSecure := r.TLS != nil
	maxAge := int(validity.Seconds())

	http.SetCookie(w, &http.Cookie{
		Name:     authTokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})

	payload, _ := json.Marshal(identity)
	http.SetCookie(w, &http.Cookie{
		Name:     authUserCookie,
		Value:    url.QueryEscape(string(payload)),
		Path:     "/",
		HttpOnly: false,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

func clearAuthCookies(w http.ResponseWriter, r *http.Request) {
	isSecure := r.TLS != nil
	for _, name := range []string{authTokenCookie, authUserCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			HttpOnly: name == authTokenCookie,
			Secure:   isSecure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
		})
	}
}
