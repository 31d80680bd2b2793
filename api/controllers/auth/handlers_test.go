package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/delizzia/pos-backend/api/middleware"
	"github.com/delizzia/pos-backend/internal/auth"
	"github.com/delizzia/pos-backend/internal/users"
	"github.com/delizzia/pos-backend/pkg/config"
	"github.com/delizzia/pos-backend/pkg/db/models"
	"github.com/delizzia/pos-backend/pkg/enums"
	pkgerrors "github.com/delizzia/pos-backend/pkg/errors"
	"github.com/google/uuid"
)

type stubAuthService struct {
	resp       *auth.TokenResponse
	user       *models.User
	err        error
	loggedOut  string
	actorRole  enums.MemberRole
	lastCreate auth.CreateUserRequest
}

func (s *stubAuthService) Login(context.Context, auth.LoginRequest) (*auth.TokenResponse, error) {
	return s.resp, s.err
}

func (s *stubAuthService) Refresh(context.Context, auth.RefreshRequest) (*auth.TokenResponse, error) {
	return s.resp, s.err
}

func (s *stubAuthService) Logout(_ context.Context, token string) error {
	s.loggedOut = token
	return s.err
}

func (s *stubAuthService) CreateUser(_ context.Context, role enums.MemberRole, req auth.CreateUserRequest) (*models.User, error) {
	s.actorRole = role
	s.lastCreate = req
	return s.user, s.err
}

func (s *stubAuthService) EnsureOwner(context.Context, config.BootstrapConfig) (bool, error) {
	return false, nil
}

func TestLoginReturnsTokens(t *testing.T) {
	svc := &stubAuthService{resp: &auth.TokenResponse{AccessToken: "access", RefreshToken: "refresh", ExpiresIn: 1800, User: &users.UserDTO{Email: "owner@delizzia.ec"}}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(`{"email":"owner@delizzia.ec","password":"Secret#2024"}`))
	resp := httptest.NewRecorder()
	Login(svc, nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var body struct {
		Data auth.TokenResponse `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.AccessToken != "access" || body.Data.ExpiresIn != 1800 {
		t.Fatalf("unexpected payload %+v", body.Data)
	}
}

func TestLoginRejectsInvalidBody(t *testing.T) {
	svc := &stubAuthService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(`{"email":"not-an-email"}`))
	resp := httptest.NewRecorder()
	Login(svc, nil)(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestLoginPropagatesUnauthorized(t *testing.T) {
	svc := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(`{"email":"owner@delizzia.ec","password":"wrong"}`))
	resp := httptest.NewRecorder()
	Login(svc, nil)(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestLogoutUsesBearerToken(t *testing.T) {
	svc := &stubAuthService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer token-123")
	resp := httptest.NewRecorder()
	Logout(svc, nil)(resp, req)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", resp.Code)
	}
	if svc.loggedOut != "token-123" {
		t.Fatalf("expected token forwarded, got %q", svc.loggedOut)
	}

	resp = httptest.NewRecorder()
	Logout(svc, nil)(resp, httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.Code)
	}
}

func TestCreateUserPassesActorRole(t *testing.T) {
	svc := &stubAuthService{user: &models.User{ID: uuid.New(), Email: "cashier@delizzia.ec", Role: enums.MemberRoleStaff, IsActive: true}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", bytes.NewBufferString(`{"email":"cashier@delizzia.ec","password":"Cashier#2024","name":"Ana"}`))
	req = req.WithContext(middleware.WithRole(req.Context(), enums.MemberRoleOwner))
	resp := httptest.NewRecorder()
	CreateUser(svc, nil)(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.actorRole != enums.MemberRoleOwner {
		t.Fatalf("expected owner actor, got %q", svc.actorRole)
	}
	if svc.lastCreate.Name != "Ana" {
		t.Fatalf("unexpected request %+v", svc.lastCreate)
	}
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	svc := &stubAuthService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", bytes.NewBufferString(`{"email":"a@delizzia.ec","password":"x","name":"A","role":"admin"}`))
	resp := httptest.NewRecorder()
	CreateUser(svc, nil)(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
