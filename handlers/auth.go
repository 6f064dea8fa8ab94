package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lms-go/library-backend/httperr"
	"github.com/lms-go/library-backend/middleware"
	"github.com/lms-go/library-backend/store"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	DB        *store.DB
	Logger    *slog.Logger
	JWTSecret string
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if herr := readJSON(r, &req); herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	if req.Email == "" || req.Password == "" {
		httperr.Write(w, r, h.Logger, httperr.BadRequest("email and password required"))
		return
	}
	user, err := h.DB.UserByEmail(r.Context(), strings.ToLower(req.Email), nil)
	if err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	if user == nil {
		httperr.Write(w, r, h.Logger, httperr.Unauthorized("invalid email or password"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		httperr.Write(w, r, h.Logger, httperr.Unauthorized("invalid email or password"))
		return
	}

	claims := &middleware.Claims{
		UserID: user.ID.Hex(),
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour * 7)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.JWTSecret))
	if err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Token: token, Email: user.Email, Role: user.Role})
}
