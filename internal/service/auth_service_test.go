package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"hose_installation/internal/models"
	"hose_installation/internal/repository"

	"github.com/golang-jwt/jwt/v5"
)

const testKey = "test-signing-key-0123456789"

// mockAuthRepo is a lightweight in-test mock for repository.Authorization.
type mockAuthRepo struct {
	CreateFn        func(username, hash, role string) (int, error)
	GetByUsernameFn func(username string) (*models.User, error)
	ListFn          func(ctx context.Context) ([]models.User, error)
	UpdateRoleFn    func(ctx context.Context, id int, role string) error

	createCalls []struct {
		username string
		hash     string
		role     string
	}
	getCalls []string
}

func (m *mockAuthRepo) Create(username, hash, role string) (int, error) {
	m.createCalls = append(m.createCalls, struct {
		username string
		hash     string
		role     string
	}{username: username, hash: hash, role: role})
	return m.CreateFn(username, hash, role)
}

func (m *mockAuthRepo) GetByUsername(username string) (*models.User, error) {
	m.getCalls = append(m.getCalls, username)
	return m.GetByUsernameFn(username)
}

func (m *mockAuthRepo) List(ctx context.Context) ([]models.User, error) {
	return m.ListFn(ctx)
}

func (m *mockAuthRepo) UpdateRole(ctx context.Context, id int, role string) error {
	return m.UpdateRoleFn(ctx, id, role)
}

func newTestAuth(repo *mockAuthRepo) *AuthService {
	return NewAuthService(repo, AuthOptions{
		SigningKey: testKey,
		IsAdmin:    func(u string) bool { return u == "root" },
	})
}

// --- SignUp tests ---

func TestAuthService_SignUp_SuccessHashesPasswordAndCallsRepo(t *testing.T) {
	mock := &mockAuthRepo{
		CreateFn: func(username, hash, role string) (int, error) {
			return 42, nil
		},
	}
	svc := newTestAuth(mock)

	id, err := svc.SignUp("  alice ", "s3cr3t")
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected id 42, got %d", id)
	}

	if len(mock.createCalls) != 1 {
		t.Fatalf("expected 1 Create call, got %d", len(mock.createCalls))
	}
	call := mock.createCalls[0]
	if call.username != "alice" {
		t.Errorf("expected username 'alice', got %q", call.username)
	}
	if call.role != models.RoleUser {
		t.Errorf("expected role %q, got %q", models.RoleUser, call.role)
	}
	if call.hash == "s3cr3t" {
		t.Errorf("expected hashed password not equal to raw password")
	}
	if err := verifyPassword(call.hash, "s3cr3t"); err != nil {
		t.Errorf("stored hash does not verify with original password: %v", err)
	}
}

func TestAuthService_SignUp_ConfiguredAdminGetsAdminRole(t *testing.T) {
	mock := &mockAuthRepo{
		CreateFn: func(username, hash, role string) (int, error) { return 1, nil },
	}
	svc := newTestAuth(mock)

	if _, err := svc.SignUp("root", "pw"); err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}
	if got := mock.createCalls[0].role; got != models.RoleAdmin {
		t.Fatalf("expected admin role, got %q", got)
	}
}

func TestAuthService_SignUp_RejectsEmptyInput(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
	}{
		{"empty password", "bob", "   "},
		{"empty username", "  ", "pw"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockAuthRepo{
				CreateFn: func(username, hash, role string) (int, error) {
					t.Fatal("Create should not be called")
					return 0, nil
				},
			}
			svc := newTestAuth(mock)

			if _, err := svc.SignUp(tt.username, tt.password); err == nil {
				t.Fatalf("expected error, got nil")
			}
			if len(mock.createCalls) != 0 {
				t.Fatalf("expected no Create calls, got %d", len(mock.createCalls))
			}
		})
	}
}

func TestAuthService_SignUp_RepoError(t *testing.T) {
	mock := &mockAuthRepo{
		CreateFn: func(username, hash, role string) (int, error) {
			return 0, errors.New("db down")
		},
	}
	svc := newTestAuth(mock)

	if _, err := svc.SignUp("carl", "pass123"); err == nil {
		t.Fatalf("expected repo error, got nil")
	}
}

// --- GenerateToken tests ---

func TestAuthService_GenerateToken_Success(t *testing.T) {
	hash, err := hashPassword("letmein")
	if err != nil {
		t.Fatalf("hashPassword failed: %v", err)
	}
	user := &models.User{ID: 7, Username: "diana", PasswordHash: hash, Role: models.RoleAdmin}

	mock := &mockAuthRepo{
		GetByUsernameFn: func(username string) (*models.User, error) {
			if username != "diana" {
				t.Fatalf("expected username 'diana', got %q", username)
			}
			return user, nil
		},
	}
	svc := newTestAuth(mock)

	token, err := svc.GenerateToken("diana", "letmein")
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}
	if token == "" {
		t.Fatalf("expected non-empty token")
	}

	id, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if id.UserID != 7 || !id.IsAdmin() {
		t.Fatalf("unexpected identity %+v", id)
	}
	if len(mock.getCalls) != 1 {
		t.Fatalf("expected 1 GetByUsername call, got %d", len(mock.getCalls))
	}
}

func TestAuthService_GenerateToken_UserNotFound(t *testing.T) {
	mock := &mockAuthRepo{
		GetByUsernameFn: func(username string) (*models.User, error) {
			return nil, nil
		},
	}
	svc := newTestAuth(mock)

	_, err := svc.GenerateToken("ghost", "pw")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got: %v", err)
	}
}

func TestAuthService_GenerateToken_InvalidPassword(t *testing.T) {
	correctHash, err := hashPassword("correct")
	if err != nil {
		t.Fatalf("hashPassword failed: %v", err)
	}
	mock := &mockAuthRepo{
		GetByUsernameFn: func(username string) (*models.User, error) {
			return &models.User{ID: 1, Username: "eve", PasswordHash: correctHash}, nil
		},
	}
	svc := newTestAuth(mock)

	_, err = svc.GenerateToken("eve", "wrong")
	if !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got: %v", err)
	}
}

func TestAuthService_GenerateToken_RepoError(t *testing.T) {
	mock := &mockAuthRepo{
		GetByUsernameFn: func(username string) (*models.User, error) {
			return nil, errors.New("query failed")
		},
	}
	svc := newTestAuth(mock)

	if _, err := svc.GenerateToken("john", "pw"); err == nil {
		t.Fatalf("expected repo error, got nil")
	}
}

// --- ParseToken tests ---

func TestAuthService_ParseToken_Success(t *testing.T) {
	svc := newTestAuth(&mockAuthRepo{})
	token, err := svc.issueToken(99, models.RoleUser)
	if err != nil {
		t.Fatalf("issueToken failed: %v", err)
	}

	id, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken returned error: %v", err)
	}
	if id.UserID != 99 || id.IsAdmin() {
		t.Fatalf("unexpected identity %+v", id)
	}
}

func TestAuthService_ParseToken_MissingRoleDefaultsToUser(t *testing.T) {
	svc := newTestAuth(&mockAuthRepo{})
	token, err := svc.issueToken(3, "")
	if err != nil {
		t.Fatalf("issueToken failed: %v", err)
	}
	id, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken returned error: %v", err)
	}
	if id.Role != models.RoleUser {
		t.Fatalf("expected role %q, got %q", models.RoleUser, id.Role)
	}
}

func TestAuthService_ParseToken_Malformed(t *testing.T) {
	svc := newTestAuth(&mockAuthRepo{})
	if _, err := svc.ParseToken("not-a-jwt"); err == nil {
		t.Fatalf("expected error for malformed token")
	}
}

func TestAuthService_ParseToken_InvalidSignature(t *testing.T) {
	svc := newTestAuth(&mockAuthRepo{})

	now := time.Now()
	tk := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: 5,
	})
	badToken, err := tk.SignedString([]byte("different-key"))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}

	if _, err := svc.ParseToken(badToken); err == nil {
		t.Fatalf("expected signature verification error")
	}
}

func TestAuthService_ParseToken_Expired(t *testing.T) {
	svc := newTestAuth(&mockAuthRepo{})

	past := time.Now().Add(-2 * time.Hour)
	tk := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(past),
			IssuedAt:  jwt.NewNumericDate(past.Add(-time.Minute)),
		},
		UserID: 11,
	})
	expiredToken, err := tk.SignedString([]byte(testKey))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}

	if _, err := svc.ParseToken(expiredToken); err == nil {
		t.Fatalf("expected error for expired token")
	}
}

func TestAuthService_ParseToken_UnexpectedAlg(t *testing.T) {
	svc := newTestAuth(&mockAuthRepo{})

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("rsa.GenerateKey failed: %v", err)
	}
	now := time.Now()
	tk := jwt.NewWithClaims(jwt.SigningMethodRS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: 12,
	})
	tokenStr, err := tk.SignedString(privateKey)
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}

	if _, err := svc.ParseToken(tokenStr); err == nil {
		t.Fatalf("expected error due to unexpected signing method")
	}
}

// --- UserService tests ---

func TestUserService_SetRole(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		repoErr  error
		wantRole string
		wantErr  error
		wantCode int
	}{
		{name: "admin", role: " Admin ", wantRole: models.RoleAdmin},
		{name: "user", role: "user", wantRole: models.RoleUser},
		{name: "unknown role", role: "owner", wantErr: ErrInvalidInput},
		{name: "missing user", role: "user", repoErr: repository.ErrNotFound, wantRole: models.RoleUser, wantCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotRole string
			mock := &mockAuthRepo{
				UpdateRoleFn: func(ctx context.Context, id int, role string) error {
					gotRole = role
					return tt.repoErr
				},
			}
			err := NewUserService(mock).SetRole(context.Background(), 4, tt.role)

			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
			case tt.wantCode != 0:
				var se *StoreError
				if !errors.As(err, &se) || se.StatusCode != tt.wantCode {
					t.Fatalf("expected StoreError %d, got %v", tt.wantCode, err)
				}
			case err != nil:
				t.Fatalf("unexpected error: %v", err)
			}
			if gotRole != tt.wantRole {
				t.Fatalf("expected repo role %q, got %q", tt.wantRole, gotRole)
			}
		})
	}
}

func TestUserService_ListUsersWrapsStoreError(t *testing.T) {
	mock := &mockAuthRepo{
		ListFn: func(ctx context.Context) ([]models.User, error) {
			return nil, errors.New("disk I/O error")
		},
	}
	_, err := NewUserService(mock).ListUsers(context.Background())

	var se *StoreError
	if !errors.As(err, &se) {
		t.Fatalf("expected StoreError, got %v", err)
	}
	if se.StatusCode != http.StatusInternalServerError || !strings.Contains(se.Error(), "list users") {
		t.Fatalf("unexpected StoreError %+v", se)
	}
}
