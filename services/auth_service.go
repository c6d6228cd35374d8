package services

import (
	"crypto/subtle"
	"errors"
	"log"
	"strings"
	"time"

	"game-site-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// SessionCookie is the cookie carrying the signed admin session token.
const SessionCookie = "admin_session"

var (
	ErrNotConfigured      = errors.New("admin identity or session secret not configured")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AuthConfig is the statically configured single-admin identity. It is
// built once at startup and injected; business logic never reads the
// environment directly.
type AuthConfig struct {
	AdminEmail    string
	AdminPassword string
	SessionSecret string
	SessionTTL    time.Duration
}

// AuthService is the single-tenant gate in front of the admin area. There
// is no user table and no server-side session state: a token is valid iff
// its signature verifies and its expiry has not elapsed.
type AuthService struct {
	cfg AuthConfig
}

func NewAuthService(cfg AuthConfig) *AuthService {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	return &AuthService{cfg: cfg}
}

func (s *AuthService) configured() bool {
	return s.cfg.AdminEmail != "" && s.cfg.AdminPassword != "" && s.cfg.SessionSecret != ""
}

// Login checks the credentials against the configured admin identity and
// mints a signed session token. ErrNotConfigured is checked before any
// comparison happens.
func (s *AuthService) Login(email, password string) (string, error) {
	if !s.configured() {
		return "", ErrNotConfigured
	}

	emailOK := subtle.ConstantTimeCompare([]byte(strings.ToLower(strings.TrimSpace(email))), []byte(strings.ToLower(s.cfg.AdminEmail)))
	passwordOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.AdminPassword))
	if emailOK != 1 || passwordOK != 1 {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	tok, err := jwt.NewBuilder().
		Subject(s.cfg.AdminEmail).
		IssuedAt(now).
		Expiration(now.Add(s.cfg.SessionTTL)).
		Build()
	if err != nil {
		return "", err
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, []byte(s.cfg.SessionSecret)))
	if err != nil {
		return "", err
	}
	return string(signed), nil
}

// Verify resolves a token to the admin identity. Missing tokens, bad
// signatures and expired tokens all fail the same way; callers are never
// told why.
func (s *AuthService) Verify(token string) (string, bool) {
	if token == "" || s.cfg.SessionSecret == "" {
		return "", false
	}
	parsed, err := jwt.Parse(
		[]byte(token),
		jwt.WithKey(jwa.HS256, []byte(s.cfg.SessionSecret)),
		jwt.WithValidate(true),
	)
	if err != nil {
		return "", false
	}
	return parsed.Subject(), true
}

// LoginEndpoint serves POST /admin/login.
func (s *AuthService) LoginEndpoint(c *fiber.Ctx) error {
	type Req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid JSON")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return utils.Error(c, fiber.StatusBadRequest, "email and password are required")
	}

	token, err := s.Login(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotConfigured):
			log.Printf("🚫 [AUTH] login attempted but admin identity is not configured")
			return utils.Error(c, fiber.StatusServiceUnavailable, "admin login is not configured")
		case errors.Is(err, ErrInvalidCredentials):
			return utils.Error(c, fiber.StatusUnauthorized, "invalid credentials")
		default:
			log.Printf("ERROR minting session token: %v", err)
			return utils.Error(c, fiber.StatusInternalServerError, "failed to create session")
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Expires:  time.Now().Add(s.cfg.SessionTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
	return utils.Message(c, "logged in")
}

// LogoutEndpoint serves POST /admin/logout. It clears the cookie
// unconditionally; with no server-side session table the token itself stays
// cryptographically valid until its expiry elapses.
func (s *AuthService) LogoutEndpoint(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
	return utils.Message(c, "logged out")
}
