package handlers

import (
	"net/http"
	"strings"

	"github.com/isdelr/haulboard-be/internal/api/respond"
	"github.com/isdelr/haulboard-be/internal/apperr"
	"github.com/isdelr/haulboard-be/internal/auth"
	"github.com/isdelr/haulboard-be/internal/models"
	"github.com/isdelr/haulboard-be/internal/services"
	"github.com/rs/zerolog/hlog"
)

// AuthHandler serves login, logout, registration and the session probe.
type AuthHandler struct {
	users  services.UserServiceProvider
	events services.EventServiceProvider
	guard  *auth.Guard
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users services.UserServiceProvider, events services.EventServiceProvider, guard *auth.Guard) *AuthHandler {
	return &AuthHandler{users: users, events: events, guard: guard}
}

// AuthPayload defines the structure for login requests.
type AuthPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
	Company  string `json:"company"`
}

type userResponse struct {
	User *models.User `json:"user"`
}

type tokenResponse struct {
	auth.IssuedToken
	User models.User `json:"user"`
}

// Login authenticates the user and starts a cookie session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	user, err := h.authenticate(w, r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if _, err := h.guard.StartSession(w, user); err != nil {
		respond.Error(w, r, err)
		return
	}

	services.Record(r.Context(), h.events, services.EventLogin, services.LevelInfo, user.Email+" signed in", user.ID)
	respond.JSON(w, http.StatusOK, userResponse{User: &user})
}

// Token authenticates the user and returns a bearer token instead of a cookie.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	user, err := h.authenticate(w, r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	issued, err := h.guard.IssueToken(user)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	services.Record(r.Context(), h.events, services.EventLogin, services.LevelInfo, user.Email+" obtained an API token", user.ID)
	respond.JSON(w, http.StatusOK, tokenResponse{IssuedToken: issued, User: user})
}

func (h *AuthHandler) authenticate(w http.ResponseWriter, r *http.Request) (models.User, error) {
	var payload AuthPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		return models.User{}, err
	}
	if _, err := services.ValidateEmail(payload.Email); err != nil {
		return models.User{}, err
	}
	if err := services.ValidatePassword(payload.Password); err != nil {
		return models.User{}, err
	}

	user, err := h.users.AuthenticateUser(r.Context(), payload.Email, payload.Password)
	if err != nil {
		if apperr.IsKind(err, apperr.KindUnauthenticated) {
			hlog.FromRequest(r).Warn().Msg("Failed authentication attempt")
		}
		return models.User{}, err
	}
	return user, nil
}

// Register creates a self-service account. Admin accounts cannot be self-registered.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		respond.Error(w, r, err)
		return
	}

	role, err := models.ParseRole(payload.Role)
	if err != nil || role == models.RoleAdmin {
		respond.Error(w, r, apperr.Validation("role must be one of individual, carrier, company"))
		return
	}

	user, err := h.users.CreateUser(r.Context(), services.NewUser{
		Email:    payload.Email,
		Password: payload.Password,
		Name:     payload.Name,
		Role:     role,
		Phone:    payload.Phone,
		Company:  payload.Company,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	services.Record(r.Context(), h.events, services.EventRegister, services.LevelInfo,
		"New "+strings.ToLower(string(user.Role))+" account "+user.Email, user.ID)
	respond.JSON(w, http.StatusCreated, userResponse{User: &user})
}

// Logout revokes the presented token and clears the cookie. It always succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if user, err := h.guard.Identify(r); err == nil {
		services.Record(r.Context(), h.events, services.EventLogout, services.LevelInfo, user.Email+" signed out", user.ID)
	}
	h.guard.EndSession(w, r)
	respond.JSON(w, http.StatusNoContent, nil)
}

// Session reports the current user, or null when there is no valid session.
// Store outages and a missing signing secret still return 500 so a server fault
// is never reported to the client as being logged out.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	user, err := h.guard.Identify(r)
	if err != nil {
		if apperr.Status(err) >= http.StatusInternalServerError {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, userResponse{User: nil})
		return
	}
	respond.JSON(w, http.StatusOK, userResponse{User: &user})
}
