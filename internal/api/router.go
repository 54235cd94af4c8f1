package api

import (
	"database/sql"
	"net/http"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	sellersHandler := &SellersHandler{DB: db}
	submissionsHandler := &SubmissionsHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)

	// Public: seller form submission and print-view fetch.
	mux.HandleFunc("POST /api/sellers/submit", sellersHandler.Submit)
	mux.HandleFunc("GET /api/sellers/{id}", sellersHandler.Get)

	// Public: admin login and registration.
	mux.HandleFunc("POST /api/admin/login", authHandler.Login)
	mux.HandleFunc("POST /api/admin/register", authHandler.Register)

	// Authenticated admin routes.
	mux.Handle("POST /api/admin/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("GET /api/admin/submissions", authMW(http.HandlerFunc(submissionsHandler.List)))
	mux.Handle("GET /api/admin/submissions/{id}", authMW(http.HandlerFunc(submissionsHandler.Get)))
	mux.Handle("PUT /api/admin/submissions/{id}/items/{index}", authMW(http.HandlerFunc(submissionsHandler.UpdateItem)))
	mux.Handle("PUT /api/admin/submissions/{id}/notes", authMW(http.HandlerFunc(submissionsHandler.UpdateNotes)))

	return mux
}
