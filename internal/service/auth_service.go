package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hose_installation/internal/models"
	"hose_installation/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = 12 * time.Hour

var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidToken    = errors.New("invalid token")
	ErrEmptyUsername   = errors.New("username is empty")
)

// Identity is who a valid token speaks for.
type Identity struct {
	UserID int
	Role   string
}

func (i Identity) IsAdmin() bool { return i.Role == models.RoleAdmin }

type AuthOptions struct {
	SigningKey string
	TokenTTL   time.Duration
	// IsAdmin decides whether a new account gets the admin role.
	IsAdmin func(username string) bool
}

// AuthService handles sign-up, sign-in and token checks.
type AuthService struct {
	authRepo repository.Authorization
	key      []byte
	ttl      time.Duration
	isAdmin  func(string) bool
}

func NewAuthService(repo repository.Authorization, opts AuthOptions) *AuthService {
	s := &AuthService{
		authRepo: repo,
		key:      []byte(opts.SigningKey),
		ttl:      opts.TokenTTL,
		isAdmin:  opts.IsAdmin,
	}
	if s.ttl <= 0 {
		s.ttl = defaultTokenTTL
	}
	return s
}

// SignUp hashes the password and stores a new user.
func (s *AuthService) SignUp(username, password string) (int, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return 0, ErrEmptyUsername
	}
	hash, err := hashPassword(password)
	if err != nil {
		return 0, fmt.Errorf("invalid password: %w", err)
	}
	role := models.RoleUser
	if s.isAdmin != nil && s.isAdmin(username) {
		role = models.RoleAdmin
	}
	return s.authRepo.Create(username, hash, role)
}

type Claims struct {
	jwt.RegisteredClaims
	UserID int    `json:"user_id"`
	Role   string `json:"role"`
}

// GenerateToken checks credentials and returns a signed JWT.
func (s *AuthService) GenerateToken(username, password string) (string, error) {
	u, err := s.authRepo.GetByUsername(strings.TrimSpace(username))
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", ErrUserNotFound
	}
	if err := verifyPassword(u.PasswordHash, password); err != nil {
		return "", ErrInvalidPassword
	}
	return s.issueToken(u.ID, u.Role)
}

func (s *AuthService) ParseToken(accessToken string) (Identity, error) {
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.key, nil
	})
	if err != nil {
		return Identity{}, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Identity{}, ErrInvalidToken
	}
	role := claims.Role
	if role == "" {
		role = models.RoleUser
	}
	return Identity{UserID: claims.UserID, Role: role}, nil
}

func hashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func verifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func (s *AuthService) issueToken(userID int, role string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: userID,
		Role:   role,
	})
	return token.SignedString(s.key)
}

// UserService is the admin view of accounts.
type UserService struct {
	repo repository.Authorization
}

func NewUserService(repo repository.Authorization) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.List(ctx)
	return users, storeErr("list users", err)
}

func (s *UserService) SetRole(ctx context.Context, id int, role string) error {
	role = strings.ToLower(strings.TrimSpace(role))
	if role != models.RoleUser && role != models.RoleAdmin {
		return invalid("role must be %q or %q", models.RoleUser, models.RoleAdmin)
	}
	return storeErr("update user role", s.repo.UpdateRole(ctx, id, role))
}
