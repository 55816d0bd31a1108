package services

import (
	"context"
	"crypto/rand"
	"errors"
	"strings"
	"time"

	"portfolio/app/models"
	"portfolio/app/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const DefaultTokenTTL = 24 * time.Hour

// Session is the result of a successful sign in
type Session struct {
	Token     string       `json:"token"`
	User      *models.User `json:"user"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// AuthConfig configures token signing and sign up
type AuthConfig struct {
	Secret      []byte
	TokenTTL    time.Duration
	AllowSignup bool
}

// AuthService registers authors and issues session tokens
type AuthService struct {
	users       repositories.UserRepository
	secret      []byte
	ttl         time.Duration
	allowSignup bool
	now         func() time.Time
}

// NewAuthService creates an AuthService. Without a secret a random one is
// generated, so tokens do not survive a restart.
func NewAuthService(users repositories.UserRepository, cfg AuthConfig) *AuthService {
	secret := cfg.Secret
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			panic(err)
		}
		log.Warn().Str("op", "services.NewAuthService").Msg("no jwt secret configured, sessions will not survive a restart")
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &AuthService{
		users:       users,
		secret:      secret,
		ttl:         ttl,
		allowSignup: cfg.AllowSignup,
		now:         time.Now,
	}
}

// SignUp registers a new author
func (s *AuthService) SignUp(ctx context.Context, email, password string) (*models.User, error) {
	const op = "services.SignUp"
	if !s.allowSignup {
		return nil, ErrSignupDisabled
	}

	user := &models.User{
		ID:        uuid.NewString(),
		Email:     models.NormalizeEmail(email),
		CreatedAt: s.now(),
	}
	if err := user.SetPassword(password); err != nil {
		if errors.Is(err, models.ErrPasswordLength) {
			return nil, invalid(err)
		}
		return nil, fail(op, err)
	}
	if err := user.Validate(); err != nil {
		return nil, invalid(err)
	}
	if err := s.users.Create(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fail(op, err)
	}

	log.Info().Str("op", op).Str("user_id", user.ID).Msg("user signed up")
	return user, nil
}

// SignIn checks the credentials and issues a session token
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	const op = "services.SignIn"

	user, err := s.users.GetByEmail(email)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fail(op, err)
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	expires := now.Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   expires.Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fail(op, err)
	}

	return &Session{Token: signed, User: user, ExpiresAt: expires}, nil
}

// CurrentUser resolves a session token to its user
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	const op = "services.CurrentUser"

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrUnauthenticated
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return nil, ErrUnauthenticated
	}

	id, err := parsed.Claims.GetSubject()
	if err != nil || id == "" {
		return nil, ErrUnauthenticated
	}

	user, err := s.users.GetByID(id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, fail(op, err)
	}
	return user, nil
}
