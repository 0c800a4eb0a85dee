package handler

import (
	"context"      // context with cancellation for DB calls
	"database/sql" // sentinel sql.ErrNoRows checks
	"errors"
	"log"      // simulated email delivery of reset codes
	"net/http" // HTTP status codes and cookies
	"strings"  // input normalization
	"time"     // timeouts and expiry checks

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/greenloop/ewaste-pickup/internal/config"     // app configuration
	"github.com/greenloop/ewaste-pickup/internal/middleware" // session cookie name
	"github.com/greenloop/ewaste-pickup/internal/model"      // roles
	"github.com/greenloop/ewaste-pickup/internal/repository" // DB repositories
	"github.com/greenloop/ewaste-pickup/internal/utils"      // hashing, token issuing
)

// genericResetMessage is returned by the forgot-password flow whether
// or not the email exists, so the endpoint cannot be used to probe for
// accounts.
const genericResetMessage = "If an account with that email exists, a password reset code has been sent."

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u}
}

// ----- DTOs -----

type registerReq struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Address  *string `json:"address"`
	Role     string  `json:"role"` // resident | collector | admin
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type forgotReq struct {
	Email string `json:"email"`
}
type resetReq struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

type registeredResp struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// sessionCookie builds the auth cookie carrying the session token.
// httpOnly keeps it away from scripts; SameSite=Lax and the Secure
// flag outside local development follow the usual browser hardening.
func (h *AuthHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.Cfg.Env != "dev",
	}
}

// Register creates a user account. Unknown or empty roles default to
// resident; only an admin action can change a role afterwards.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/email/password required"})
	}
	role, ok := model.ParseRole(strings.ToLower(strings.TrimSpace(req.Role)))
	if !ok {
		role = model.RoleResident
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Name, req.Email, hash, role, req.Address)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	return c.JSON(http.StatusCreated, registeredResp{ID: uid, Email: req.Email, Role: string(role)})
}

// Login verifies credentials and sets the session cookie. The same
// 401 body covers unknown email and wrong password so the two cannot
// be told apart.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email or password"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	ok, err := utils.VerifyPassword(u.PasswordHash, req.Password)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "credential verification failed"})
	}
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email or password"})
	}

	tok, err := utils.NewSessionToken(h.Cfg.JWTSecret, u.ID, u.Email, string(u.Role), h.Cfg.SessionTTL)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue session failed"})
	}
	c.SetCookie(h.sessionCookie(tok.Token, int(h.Cfg.SessionTTL/time.Second)))

	return c.JSON(http.StatusOK, echo.Map{"id": u.ID, "email": u.Email})
}

// Logout clears the session cookie. The token itself stays
// cryptographically valid until its natural expiry; there is no
// server-side revocation list, which is a documented limitation of
// the stateless session design.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(h.sessionCookie("", -1))
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// Me resolves the current session from the cookie and reports who the
// caller is. Missing or invalid tokens yield 401 with
// authenticated=false rather than an error body.
func (h *AuthHandler) Me(c echo.Context) error {
	cookie, err := c.Cookie(middleware.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"authenticated": false})
	}
	claims, err := utils.ParseSessionToken(h.Cfg.JWTSecret, cookie.Value)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"authenticated": false})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"authenticated": true,
		"user": echo.Map{
			"id":    claims.UserID,
			"email": claims.Email,
			"role":  claims.Role,
		},
	})
}

// ForgotPassword generates a one-time numeric reset code, stores its
// bcrypt hash with a short expiry and replies with the same generic
// message whether or not the account exists. Actual email delivery is
// out of scope: the code is logged, and echoed in the response for
// development use.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusOK, echo.Map{"message": genericResetMessage})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	code, err := utils.NewResetCode()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "generate code failed"})
	}
	codeHash, err := utils.HashPassword(code, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash code failed"})
	}
	expires := time.Now().UTC().Add(h.Cfg.ResetCodeTTL)
	if err := h.Users.SetResetCode(ctx, u.ID, codeHash, expires); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store code failed"})
	}

	log.Printf("password reset code for %s: %s (expires %s)", u.Email, code, expires.Format(time.RFC3339))

	return c.JSON(http.StatusOK, echo.Map{
		"message":    genericResetMessage,
		"reset_code": code, // simulated email delivery; remove once a mailer exists
	})
}

// ResetPassword consumes a reset code: the code must match, must not
// be expired, and is cleared on success together with the password
// write, so it can never be used twice. Expired codes are cleared on
// detection and reported distinctly from invalid ones.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Code == "" || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/code/new_password required"})
	}
	if len(req.NewPassword) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 6 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired reset code"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if u.ResetCode == nil || u.ResetCodeExpires == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired reset code"})
	}
	if time.Now().UTC().After(*u.ResetCodeExpires) {
		_ = h.Users.ClearResetCode(ctx, u.ID)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reset code has expired, request a new one"})
	}
	ok, err := utils.VerifyPassword(*u.ResetCode, req.Code)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "credential verification failed"})
	}
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reset code"})
	}

	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
	}
	if err := h.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update password failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "password has been reset"})
}
