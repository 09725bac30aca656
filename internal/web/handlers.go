package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"mime"
	"net/http"

	"bank-auth/internal/auth"
	"bank-auth/internal/session"
	"bank-auth/middleware"
	"bank-auth/models"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// Messages shown above the signup and login forms
const (
	MsgAllFieldsRequired  = "All fields required"
	MsgSignupFailed       = "User already exists or DB error"
	MsgInvalidCredentials = "Invalid credentials"
	MsgDatabaseError      = "Database error"
)

// Readiness reports whether the database has been reached
type Readiness interface {
	Ready() bool
}

type WebHandler struct {
	authService  *auth.Service
	templates    *template.Template
	sessionStore sessions.Store
	readiness    Readiness
	logger       *zap.Logger
}

type PageData struct {
	Title    string
	Page     string
	Message  string
	Username string
	User     *models.SessionUser
}

func NewWebHandler(authService *auth.Service, store sessions.Store, readiness Readiness, logger *zap.Logger) (*WebHandler, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &WebHandler{
		authService:  authService,
		templates:    templates,
		sessionStore: store,
		readiness:    readiness,
		logger:       logger,
	}, nil
}

func (h *WebHandler) Index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *WebHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		h.render(w, "signup.html", PageData{Title: "Sign up", Page: "signup"})
		return
	}

	creds := h.readCredentials(r)
	if _, err := h.authService.Signup(r.Context(), creds); err != nil {
		message := MsgSignupFailed
		if errors.Is(err, auth.ErrMissingFields) {
			message = MsgAllFieldsRequired
		}
		h.render(w, "signup.html", PageData{
			Title:    "Sign up",
			Page:     "signup",
			Message:  message,
			Username: creds.Username,
		})
		return
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *WebHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		h.render(w, "login.html", PageData{Title: "Log in", Page: "login"})
		return
	}

	creds := h.readCredentials(r)
	user, err := h.authService.Login(r.Context(), creds)
	if err != nil {
		message := MsgDatabaseError
		switch {
		case errors.Is(err, auth.ErrMissingFields):
			message = MsgAllFieldsRequired
		case errors.Is(err, auth.ErrInvalidCredentials):
			message = MsgInvalidCredentials
		}
		h.render(w, "login.html", PageData{
			Title:    "Log in",
			Page:     "login",
			Message:  message,
			Username: creds.Username,
		})
		return
	}

	// an unreadable cookie still yields a fresh session to write into
	s, _ := h.sessionStore.Get(r, session.Name)
	if err := session.SetUser(r, w, s, user); err != nil {
		h.logger.Error("Failed to save session", zap.String("username", user.Username), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// Dashboard expects RequireSession in front of it
func (h *WebHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	h.render(w, "dashboard.html", PageData{
		Title:    "Dashboard",
		Page:     "dashboard",
		Username: user.Username,
		User:     user,
	})
}

func (h *WebHandler) Logout(w http.ResponseWriter, r *http.Request) {
	s, _ := h.sessionStore.Get(r, session.Name)
	if err := session.Destroy(r, w, s); err != nil {
		h.logger.Warn("Failed to destroy session", zap.Error(err))
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *WebHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if !h.readiness.Ready() {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("database not ready"))
		return
	}
	w.Write([]byte("ok"))
}

func (h *WebHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	http.NotFound(w, r)
}

// readCredentials reads the request body only, as a form post or JSON. A malformed body
// reads as empty and query parameters are ignored.
func (h *WebHandler) readCredentials(r *http.Request) auth.Credentials {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var creds auth.Credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			h.logger.Debug("Ignoring malformed JSON body", zap.Error(err))
			return auth.Credentials{}
		}
		return creds
	}

	return auth.Credentials{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
}

func (h *WebHandler) render(w http.ResponseWriter, name string, data PageData) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error("Template execution error", zap.String("template", name), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}
