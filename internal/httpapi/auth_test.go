package httpapi

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"jokersolar/backend/internal/domain"
)

type userStoreStub struct {
	mu      sync.Mutex
	users   map[string]domain.UserAccount
	updates int
}

func (s *userStoreStub) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.users == nil {
		s.users = make(map[string]domain.UserAccount)
	}
	s.users[user.Email] = user
	return nil
}

func (s *userStoreStub) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.UserAccount, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, user)
	}
	return out, nil
}

func (s *userStoreStub) UpdateUserPassword(_ context.Context, email string, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.users[email]
	user.PasswordHash = passwordHash
	s.users[email] = user
	s.updates++
	return nil
}

func adminAccount() domain.UserAccount {
	return domain.UserAccount{
		User: domain.User{
			ID:        "u-admin",
			Name:      "Store Admin",
			Email:     "admin@jokersolar.com",
			Role:      domain.RoleAdmin,
			CreatedAt: time.Now().UTC(),
		},
		PasswordHash: "admin123",
	}
}

func TestAuthManagerUpgradesLegacyPlainPassword(t *testing.T) {
	store := &userStoreStub{
		users: map[string]domain.UserAccount{
			"admin@jokersolar.com": adminAccount(),
		},
	}

	manager := NewAuthManager("test-secret", time.Hour, store)
	_, err := manager.Login(domain.LoginRequest{
		Email:    "admin@jokersolar.com",
		Password: "admin123",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	users, err := store.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users failed: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(users))
	}
	if users[0].PasswordHash == "admin123" {
		t.Fatalf("expected password to be upgraded from plain-text")
	}
	if !strings.HasPrefix(users[0].PasswordHash, "$2") {
		t.Fatalf("expected bcrypt password hash, got %s", users[0].PasswordHash)
	}
}

func TestCreateUserStoresPasswordHash(t *testing.T) {
	store := &userStoreStub{
		users: map[string]domain.UserAccount{
			"admin@jokersolar.com": adminAccount(),
		},
	}

	manager := NewAuthManager("test-secret", time.Hour, store)
	user, err := manager.CreateUser(domain.UserCreateRequest{
		Name:     "New Seller",
		Email:    "seller@jokersolar.com",
		Password: "pass1234",
	})
	if err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	if user.Email != "seller@jokersolar.com" {
		t.Fatalf("unexpected email %s", user.Email)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("expected default role %q, got %q", domain.RoleUser, user.Role)
	}

	users, err := store.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users failed: %v", err)
	}
	var found *domain.UserAccount
	for i := range users {
		if users[i].Email == "seller@jokersolar.com" {
			found = &users[i]
			break
		}
	}
	if found == nil {
		t.Fatalf("expected user to be saved")
	}
	if found.PasswordHash == "pass1234" {
		t.Fatalf("expected password to be hashed")
	}
	if !strings.HasPrefix(found.PasswordHash, "$2") {
		t.Fatalf("expected bcrypt hash prefix, got %s", found.PasswordHash)
	}

	_, err = manager.Login(domain.LoginRequest{
		Email:    "seller@jokersolar.com",
		Password: "pass1234",
	})
	if err != nil {
		t.Fatalf("login with hashed password failed: %v", err)
	}
}

func TestCreateUserValidation(t *testing.T) {
	manager := NewAuthManager("test-secret", time.Hour, &userStoreStub{})

	cases := []struct {
		name string
		req  domain.UserCreateRequest
	}{
		{"missing email", domain.UserCreateRequest{Name: "X", Password: "pass1234"}},
		{"bad email", domain.UserCreateRequest{Name: "X", Email: "not-an-email", Password: "pass1234"}},
		{"missing name", domain.UserCreateRequest{Email: "x@jokersolar.com", Password: "pass1234"}},
		{"short password", domain.UserCreateRequest{Name: "X", Email: "x@jokersolar.com", Password: "abc"}},
		{"bad role", domain.UserCreateRequest{Name: "X", Email: "x@jokersolar.com", Password: "pass1234", Role: "owner"}},
	}
	for _, tc := range cases {
		if _, err := manager.CreateUser(tc.req); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestParseTokenRoundTrip(t *testing.T) {
	store := &userStoreStub{
		users: map[string]domain.UserAccount{
			"admin@jokersolar.com": adminAccount(),
		},
	}

	manager := NewAuthManager("test-secret", time.Hour, store)
	resp, err := manager.Login(domain.LoginRequest{
		Email:    "admin@jokersolar.com",
		Password: "admin123",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	actor, err := manager.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if actor.Email != "admin@jokersolar.com" {
		t.Fatalf("unexpected actor email %q", actor.Email)
	}
	if actor.Name != "Store Admin" {
		t.Fatalf("unexpected actor name %q", actor.Name)
	}
	if actor.Role != domain.RoleAdmin {
		t.Fatalf("unexpected actor role %q", actor.Role)
	}

	if _, err := manager.ParseToken("not-a-token"); err == nil {
		t.Fatalf("expected error for malformed token")
	}
}
