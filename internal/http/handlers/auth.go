package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/geocoder89/blogapi/internal/domain/user"
	"github.com/geocoder89/blogapi/internal/http/middlewares"
	"github.com/geocoder89/blogapi/internal/observability"
	"github.com/geocoder89/blogapi/internal/security"
	"github.com/gin-gonic/gin"
)

type UserStore interface {
	Create(ctx context.Context, p user.CreateParams) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id int64) (user.User, error)
}

type TokenIssuer interface {
	GenerateAccessToken(userID int64, email, role string) (string, error)
}

type AuthHandler struct {
	users UserStore
	jwt   TokenIssuer
	prom  *observability.Prom
}

func NewAuthHandler(users UserStore, jwtManager TokenIssuer, prom *observability.Prom) *AuthHandler {
	return &AuthHandler{
		users: users,
		jwt:   jwtManager,
		prom:  prom,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,notblank,min=3,max=32"`
	// bcrypt ignores everything past 72 bytes
	Password string `json:"password" binding:"required,min=8,maxbytes=72"`
}

type authResponse struct {
	Message string      `json:"message,omitempty"`
	Token   string      `json:"token"`
	User    user.Public `json:"user"`
}

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req SignUpRequest

	if !BindJSON(ctx, &req) {
		return
	}

	email := strings.TrimSpace(req.Email)
	username := strings.TrimSpace(req.Username)

	cctx, cancel := storeContext(ctx, 3*time.Second)
	defer cancel()

	_, err := h.users.GetByEmail(cctx, email)
	switch {
	case err == nil:
		h.prom.ObserveAuth("signup", "email_taken")
		RespondBadRequest(ctx, "email_taken", "Email is already in use.")
		return
	case !errors.Is(err, user.ErrNotFound):
		RespondInternal(ctx, "Could not create user", err)
		return
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		if errors.Is(err, security.ErrPasswordTooLong) {
			RespondInvalidBody(ctx, gin.H{"fields": []FieldError{{
				Field:   "password",
				Rule:    "maxbytes",
				Param:   strconv.Itoa(security.MaxPasswordBytes),
				Message: validationMessage("maxbytes", strconv.Itoa(security.MaxPasswordBytes)),
			}}})
			return
		}
		RespondInternal(ctx, "Could not create user", err)
		return
	}

	u, err := h.users.Create(cctx, user.CreateParams{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Role:         user.RoleUser,
	})

	if err != nil {
		// unique index caught a concurrent signup
		if errors.Is(err, user.ErrEmailTaken) {
			h.prom.ObserveAuth("signup", "email_taken")
			RespondBadRequest(ctx, "email_taken", "Email is already in use.")
			return
		}

		RespondInternal(ctx, "Could not create user", err)
		return
	}

	token, err := h.jwt.GenerateAccessToken(u.ID, u.Email, u.Role)

	if err != nil {
		RespondInternal(ctx, "Could not generate access token", err)
		return
	}

	h.prom.ObserveAuth("signup", "success")

	ctx.JSON(http.StatusCreated, authResponse{
		Message: "User created successfully",
		Token:   token,
		User:    u.Public(),
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}
	// short timeout for DB lookup
	cctx, cancel := storeContext(ctx, 2*time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, strings.TrimSpace(req.Email))
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			RespondInternal(ctx, "Could not log in", err)
			return
		}
		security.SpendCompare(req.Password)
		h.prom.ObserveAuth("login", "failure")
		RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		h.prom.ObserveAuth("login", "failure")
		RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	token, err := h.jwt.GenerateAccessToken(foundUser.ID, foundUser.Email, foundUser.Role)

	if err != nil {
		RespondInternal(ctx, "Could not generate access token", err)
		return
	}

	h.prom.ObserveAuth("login", "success")

	ctx.JSON(http.StatusOK, authResponse{
		Token: token,
		User:  foundUser.Public(),
	})
}

// Me returns the caller as resolved by RequireAuth.
func (h *AuthHandler) Me(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := storeContext(ctx, 2*time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondUnAuthorized(ctx, "unauthorized", "User no longer exists")
			return
		}
		RespondInternal(ctx, "Could not load user", err)
		return
	}

	ctx.JSON(http.StatusOK, u.Public())
}
