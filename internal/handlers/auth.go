package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/garage-hub/internal/auth"
	"github.com/ukydev/garage-hub/internal/db"
	"github.com/ukydev/garage-hub/internal/middleware"
	"github.com/ukydev/garage-hub/internal/models"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService    *auth.Service
	userCollection db.UserCollection
	now            func() time.Time
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service, userCollection db.UserCollection) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		userCollection: userCollection,
		now:            time.Now,
	}
}

type profileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type passwordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var loginReq models.LoginRequest
	if err := decodeJSON(w, r, &loginReq); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if loginReq.Username == "" || loginReq.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := h.userCollection.FindUserByUsername(r.Context(), loginReq.Username)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			log.WithError(err).Error("Failed to look up user")
		}
		writeError(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
		return
	}
	if !user.IsActive {
		writeError(w, http.StatusUnauthorized, auth.ErrUserInactive.Error())
		return
	}
	if !h.authService.CheckPassword(loginReq.Password, user.PasswordHash) {
		log.WithField("username", loginReq.Username).Warn("Failed login attempt")
		writeError(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
		return
	}

	response, err := h.issueTokens(*user)
	if err != nil {
		log.WithError(err).Error("Failed to issue tokens")
		writeError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	if err := h.userCollection.UpdateLastLogin(r.Context(), user.ID); err != nil {
		log.WithError(err).WithField("user_id", user.ID).Warn("Failed to update last login")
	}

	writeJSON(w, http.StatusOK, response)
}

// Register handles POST /api/auth/register
// Self-registration always creates a customer account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var registerReq models.RegisterRequest
	if err := decodeJSON(w, r, &registerReq); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.authService.ValidateUsername(registerReq.Username); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.authService.ValidateEmail(registerReq.Email); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.authService.ValidatePassword(registerReq.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	switch {
	case registerReq.Role == "":
		registerReq.Role = models.RoleCustomer
	case !models.IsValidRole(registerReq.Role):
		writeError(w, http.StatusBadRequest, "invalid role")
		return
	case registerReq.Role != models.RoleCustomer:
		writeError(w, http.StatusForbidden, "only customer accounts can self-register")
		return
	}

	if taken, err := h.exists(r, h.userCollection.FindUserByUsername, registerReq.Username); err != nil || taken {
		h.writeTaken(w, err, "username already exists")
		return
	}
	if taken, err := h.exists(r, h.userCollection.FindUserByEmail, registerReq.Email); err != nil || taken {
		h.writeTaken(w, err, "email already exists")
		return
	}

	passwordHash, err := h.authService.HashPassword(registerReq.Password)
	if err != nil {
		log.WithError(err).Error("Failed to hash password")
		writeError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	now := h.now()
	user := models.User{
		ID:           uuid.NewString(),
		Username:     registerReq.Username,
		Email:        registerReq.Email,
		PasswordHash: passwordHash,
		Role:         registerReq.Role,
		FirstName:    strings.TrimSpace(registerReq.FirstName),
		LastName:     strings.TrimSpace(registerReq.LastName),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.userCollection.InsertUser(r.Context(), user); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			writeError(w, http.StatusConflict, "username or email already exists")
			return
		}
		log.WithError(err).Error("Failed to create user")
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	response, err := h.issueTokens(user)
	if err != nil {
		log.WithError(err).Error("Failed to issue tokens")
		writeError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	log.WithFields(log.Fields{"user_id": user.ID, "username": user.Username}).Info("User registered")
	writeJSON(w, http.StatusCreated, response)
}

// GetProfile handles GET /api/auth/profile
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateProfile handles PUT /api/auth/profile
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var updateReq profileRequest
	if err := decodeJSON(w, r, &updateReq); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	if updateReq.FirstName != "" {
		user.FirstName = updateReq.FirstName
	}
	if updateReq.LastName != "" {
		user.LastName = updateReq.LastName
	}
	if updateReq.Email != "" && updateReq.Email != user.Email {
		if err := h.authService.ValidateEmail(updateReq.Email); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if taken, err := h.exists(r, h.userCollection.FindUserByEmail, updateReq.Email); err != nil || taken {
			h.writeTaken(w, err, "email already exists")
			return
		}
		user.Email = updateReq.Email
	}

	user.UpdatedAt = h.now()
	if err := h.userCollection.UpdateUser(r.Context(), user.ID, *user); err != nil {
		log.WithError(err).WithField("user_id", user.ID).Error("Failed to update user")
		writeError(w, http.StatusInternalServerError, "failed to update user")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// ChangePassword handles POST /api/auth/password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var passwordReq passwordRequest
	if err := decodeJSON(w, r, &passwordReq); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if passwordReq.CurrentPassword == "" || passwordReq.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "current password and new password are required")
		return
	}
	if err := h.authService.ValidatePassword(passwordReq.NewPassword); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	if !h.authService.CheckPassword(passwordReq.CurrentPassword, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}

	newPasswordHash, err := h.authService.HashPassword(passwordReq.NewPassword)
	if err != nil {
		log.WithError(err).Error("Failed to hash password")
		writeError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}
	user.PasswordHash = newPasswordHash
	user.UpdatedAt = h.now()
	if err := h.userCollection.UpdateUser(r.Context(), user.ID, *user); err != nil {
		log.WithError(err).WithField("user_id", user.ID).Error("Failed to update password")
		writeError(w, http.StatusInternalServerError, "failed to update password")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "password changed successfully"})
}

// ListUsers handles GET /api/users
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userCollection.FindUsers(r.Context())
	if err != nil {
		log.WithError(err).Error("Failed to list users")
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *AuthHandler) issueTokens(user models.User) (models.LoginResponse, error) {
	token, err := h.authService.GenerateToken(&user)
	if err != nil {
		return models.LoginResponse{}, err
	}
	refreshToken, err := h.authService.GenerateRefreshToken()
	if err != nil {
		return models.LoginResponse{}, err
	}
	return models.LoginResponse{Token: token, RefreshToken: refreshToken, User: user}, nil
}

// currentUser loads the authenticated user, writing the error response
// itself when that fails.
func (h *AuthHandler) currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "user context not found")
		return nil, false
	}
	user, err := h.userCollection.FindUserByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return nil, false
		}
		log.WithError(err).WithField("user_id", claims.UserID).Error("Failed to load user")
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return nil, false
	}
	return user, true
}

func (h *AuthHandler) exists(r *http.Request, find func(ctx context.Context, key string) (*models.User, error), key string) (bool, error) {
	_, err := find(r.Context(), key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, db.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (h *AuthHandler) writeTaken(w http.ResponseWriter, err error, msg string) {
	if err != nil {
		log.WithError(err).Error("Failed to check for existing user")
		writeError(w, http.StatusInternalServerError, "failed to check existing users")
		return
	}
	writeError(w, http.StatusConflict, msg)
}
