package web

import (
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/ambroz/quotedesk/internal/auth"
	"github.com/ambroz/quotedesk/internal/store"
)

// LoginPage handles GET /admin/login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "login.html", &PageData{Title: "Admin Login"})
}

// LoginSubmit handles POST /admin/login.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")

	if username == "" || password == "" {
		s.Templates.Render(w, "login.html", &PageData{
			Title: "Admin Login",
			Error: "Enter a username and password.",
		})
		return
	}

	admin, err := store.GetAdminByUsername(r.Context(), s.DB, username)
	if err != nil || admin == nil {
		s.Templates.Render(w, "login.html", &PageData{
			Title: "Admin Login",
			Error: "Invalid username or password.",
		})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		slog.Warn("login failed", "username", username, "remote", r.RemoteAddr)
		s.Templates.Render(w, "login.html", &PageData{
			Title: "Admin Login",
			Error: "Invalid username or password.",
		})
		return
	}

	token, err := auth.GenerateToken(s.JWTSecret, admin.ID, admin.Username)
	if err != nil {
		s.Templates.Render(w, "login.html", &PageData{
			Title: "Admin Login",
			Error: "Login failed, please try again.",
		})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   86400, // 24 hours
	})

	http.Redirect(w, r, "/admin/panel", http.StatusSeeOther)
}

// Logout handles POST /admin/logout. Revokes the session token and
// clears the cookie.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie("token"); err == nil && cookie.Value != "" {
		if claims, err := auth.ValidateToken(s.JWTSecret, cookie.Value); err == nil {
			if claims.ID != "" && claims.ExpiresAt != nil {
				if err := store.RevokeToken(r.Context(), s.DB, claims.ID, claims.ExpiresAt.Time); err != nil {
					slog.Error("failed to revoke token on logout", "error", err)
				}
			}
		}
	}

	clearAuthCookie(w)
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}
