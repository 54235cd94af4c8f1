package web

import (
	"database/sql"
	"net/http"

	webembed "github.com/ambroz/quotedesk/web"
)

// NewRouter creates the web page router with all page routes registered.
func NewRouter(db *sql.DB, jwtSecret string) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:        db,
		Templates: templates,
		JWTSecret: jwtSecret,
	}

	mux := http.NewServeMux()
	cookieAuth := CookieAuthMiddleware(jwtSecret, db)

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	// Public routes: the seller form, admin login, print view.
	mux.HandleFunc("GET /{$}", s.FormPage)
	mux.HandleFunc("POST /{$}", s.FormSubmit)
	mux.HandleFunc("GET /admin/login", s.LoginPage)
	mux.HandleFunc("POST /admin/login", s.LoginSubmit)
	mux.HandleFunc("POST /admin/logout", s.Logout)
	mux.HandleFunc("GET /print/{id}", s.PrintPage)

	// Admin panel, cookie-guarded.
	mux.Handle("GET /admin/panel", cookieAuth(http.HandlerFunc(s.PanelPage)))
	mux.Handle("POST /admin/panel/{id}/items/{index}/price", cookieAuth(http.HandlerFunc(s.ItemPriceSubmit)))
	mux.Handle("POST /admin/panel/{id}/items/{index}/status", cookieAuth(http.HandlerFunc(s.ItemStatusSubmit)))
	mux.Handle("POST /admin/panel/{id}/notes", cookieAuth(http.HandlerFunc(s.NotesSubmit)))

	// Unknown paths redirect to the seller form.
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
	})

	return mux, nil
}
