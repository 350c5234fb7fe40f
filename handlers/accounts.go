// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Dr-Payne25/GVisit/auth"
	"github.com/Dr-Payne25/GVisit/middleware"
	"github.com/Dr-Payne25/GVisit/models"
	"github.com/Dr-Payne25/GVisit/session"
	"github.com/Dr-Payne25/GVisit/store"
	"github.com/Dr-Payne25/GVisit/views"
)

const msgTryAgain = "Something went wrong. Please try again."

type AccountHandler struct {
	Deps
}

func NewAccountHandler(d Deps) *AccountHandler {
	return &AccountHandler{Deps: d}
}

// RegisterForm handles GET /journal_register
func (h *AccountHandler) RegisterForm(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if s.LoggedIn() {
		h.redirect(w, r, s, "/journal")
		return
	}
	h.render(w, http.StatusOK, s, views.PageJournalRegister, "Register", views.AccountData{})
}

// Register handles POST /journal_register
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request, s *session.Session) {
	form := parseRegisterForm(r.PostForm)
	retry := func(status int, message string) {
		s.AddFlash(session.FlashError, message)
		h.render(w, status, s, views.PageJournalRegister, "Register", views.AccountData{Username: form.Username})
	}

	if !h.allowLogin(r, "register") {
		retry(http.StatusTooManyRequests, "Too many attempts. Please wait a minute and try again.")
		return
	}
	if msg := form.validate(); msg != "" {
		retry(http.StatusOK, msg)
		return
	}

	hash, err := auth.HashPassword(form.Password)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		retry(http.StatusInternalServerError, msgTryAgain)
		return
	}

	username := auth.NormalizeUsername(form.Username)
	user := models.User{
		Username:     username,
		DisplayName:  auth.DisplayName(username),
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	err = h.Store.CreateUser(r.Context(), user)
	if errors.Is(err, store.ErrUserExists) {
		retry(http.StatusOK, "Username already exists")
		return
	}
	if err != nil {
		slog.Error("failed to create user", "error", err)
		retry(http.StatusInternalServerError, msgTryAgain)
		return
	}

	slog.Info("user registered", "user", username)
	s.AddFlash(session.FlashSuccess, "User registered successfully")
	h.login(w, r, s, user, false)
}

// LoginForm handles GET /journal_login
func (h *AccountHandler) LoginForm(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if s.LoggedIn() {
		h.redirect(w, r, s, "/journal")
		return
	}
	h.render(w, http.StatusOK, s, views.PageJournalLogin, "Journal login", views.AccountData{})
}

// Login handles POST /journal_login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request, s *session.Session) {
	username := auth.NormalizeUsername(r.PostForm.Get("username"))
	retry := func(status int, message string) {
		s.AddFlash(session.FlashError, message)
		h.render(w, status, s, views.PageJournalLogin, "Journal login", views.AccountData{Username: username})
	}

	if !h.allowLogin(r, "journal") {
		retry(http.StatusTooManyRequests, "Too many attempts. Please wait a minute and try again.")
		return
	}

	user, err := h.Store.GetUser(r.Context(), username)
	found := err == nil
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		slog.Error("failed to load user", "error", err)
		retry(http.StatusInternalServerError, msgTryAgain)
		return
	}
	if found && !auth.IsBcryptHash(user.PasswordHash) {
		// Plaintext or foreign hashes from hand-edited users files never match
		slog.Warn("user has an unusable password hash", "user", user.Username)
		found = false
	}

	// Same message whether the user is unknown or the password is wrong
	if err := auth.VerifyUser(user.PasswordHash, found, r.PostForm.Get("password")); err != nil {
		middleware.LoginRejections.WithLabelValues("journal", "credentials").Inc()
		retry(http.StatusOK, "Invalid username or password")
		return
	}

	name := user.DisplayName
	if name == "" {
		name = auth.DisplayName(user.Username)
	}
	s.AddFlash(session.FlashSuccess, "Welcome back, "+name+"!")
	h.login(w, r, s, user, r.PostForm.Get("remember_me") != "")
}

func (h *AccountHandler) login(w http.ResponseWriter, r *http.Request, s *session.Session, user models.User, remember bool) {
	loggedIn, err := h.Sessions.Login(w, s, user, remember)
	if err != nil {
		slog.Error("failed to start session", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	slog.Info("user logged in", "user", loggedIn.Username, "remember", remember)
	h.redirect(w, r, loggedIn, "/journal")
}

// Logout handles POST /logout_journal
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if s.LoggedIn() {
		slog.Info("user logged out", "user", s.Username)
	}
	fresh := h.Sessions.Logout(w, r, s)
	h.flashRedirect(w, r, fresh, session.FlashInfo, "You have been logged out successfully.", "/journal_login")
}
