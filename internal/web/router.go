package web

import (
	"net/http"

	"bank-auth/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (h *WebHandler) SetupRoutes() *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.LoggingMiddleware(h.logger))

	mw := middleware.NewMiddleware(h.sessionStore, h.logger)

	// Web pages
	r.HandleFunc("/", h.Index).Methods("GET")
	r.HandleFunc("/signup", h.Signup).Methods("GET", "POST")
	r.HandleFunc("/login", h.Login).Methods("GET", "POST")
	r.HandleFunc("/dashboard", mw.RequireSession(h.Dashboard)).Methods("GET")
	r.HandleFunc("/logout", h.Logout).Methods("GET")

	// Operations
	r.HandleFunc("/healthz", h.Healthz).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// 404 handler
	r.NotFoundHandler = http.HandlerFunc(h.NotFound)

	return r
}
