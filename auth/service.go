package auth

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/habiliai/tutorwise/config"
	"github.com/habiliai/tutorwise/entity"
	"github.com/habiliai/tutorwise/errors"
	"github.com/habiliai/tutorwise/internal/db"
	"github.com/habiliai/tutorwise/internal/mylog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	TokenType = "bearer"
	issuer    = "tutorwise"
)

type (
	RegisterRequest struct {
		Email    string  `json:"email"`
		Password string  `json:"password"`
		FullName *string `json:"full_name,omitempty"`
	}

	Claims struct {
		jwt.RegisteredClaims
	}

	Service struct {
		db         *gorm.DB
		secret     []byte
		expiry     time.Duration
		bcryptCost int
		logger     *slog.Logger
		now        func() time.Time
	}

	Option func(*Service)
)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.bcryptCost = cost
	}
}

// WithClock overrides the time source used for token timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(gormDB *gorm.DB, conf *config.AuthConfig, opts ...Option) (*Service, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	s := &Service{
		db:         gormDB,
		secret:     []byte(conf.SecretKey),
		expiry:     time.Duration(conf.ExpireMinutes) * time.Minute,
		bcryptCost: bcrypt.DefaultCost,
		logger:     mylog.Discard(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", errors.Wrapf(errors.ErrInvalidParams, "invalid email %q", email)
	}
	return email, nil
}

// Register creates a user and returns it with a fresh access token.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*entity.User, string, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, "", err
	}
	if req.Password == "" {
		return nil, "", errors.Wrapf(errors.ErrInvalidParams, "password is required")
	}

	_, tx := db.OpenSession(ctx, s.db)

	var count int64
	if err := tx.Model(&entity.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, "", errors.Wrapf(err, "failed to look up user")
	}
	if count > 0 {
		return nil, "", errors.Wrapf(errors.ErrConflict, "Email already registered")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, "", errors.Wrapf(err, "failed to hash password")
	}

	user := &entity.User{
		Email:          email,
		HashedPassword: string(hashed),
		FullName:       req.FullName,
		IsActive:       true,
	}
	if err := tx.Create(user).Error; err != nil {
		return nil, "", errors.Wrapf(err, "failed to create user")
	}
	s.logger.Info("user registered", "user_id", user.ID)

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login checks the credentials and returns the user with a fresh access token.
// Unknown emails and wrong passwords fail the same way.
func (s *Service) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	invalid := errors.Wrapf(errors.ErrUnauthorized, "Invalid email or password")

	_, tx := db.OpenSession(ctx, s.db)

	var user entity.User
	if err := tx.First(&user, "email = ?", strings.TrimSpace(email)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", invalid
		}
		return nil, "", errors.Wrapf(err, "failed to look up user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, "", invalid
	}
	if !user.IsActive {
		return nil, "", errors.Wrapf(errors.ErrUnauthorized, "user is inactive")
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

func (s *Service) IssueToken(userID string) (string, error) {
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.Wrapf(err, "failed to sign token")
	}
	return token, nil
}

// VerifyToken returns the user id carried by a valid, unexpired token.
func (s *Service) VerifyToken(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return "", errors.Wrapf(errors.ErrUnauthorized, "invalid token: %v", err)
	}
	if claims.Subject == "" {
		return "", errors.Wrapf(errors.ErrUnauthorized, "token has no subject")
	}
	return claims.Subject, nil
}
