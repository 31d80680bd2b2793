package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/delizzia/pos-backend/api/controllers"
	"github.com/delizzia/pos-backend/internal/auth"
	"github.com/delizzia/pos-backend/internal/menu"
	"github.com/delizzia/pos-backend/internal/ratetable"
	pkgAuth "github.com/delizzia/pos-backend/pkg/auth"
	"github.com/delizzia/pos-backend/pkg/auth/session"
	"github.com/delizzia/pos-backend/pkg/config"
	"github.com/delizzia/pos-backend/pkg/db/models"
	"github.com/delizzia/pos-backend/pkg/enums"
	pkgerrors "github.com/delizzia/pos-backend/pkg/errors"
	"github.com/delizzia/pos-backend/pkg/logger"
	"github.com/delizzia/pos-backend/pkg/metrics"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionManager struct{}

func (stubSessionManager) HasSession(context.Context, string) (bool, error) {
	return true, nil
}

type stubAuthService struct{}

func (stubAuthService) Login(_ context.Context, req auth.LoginRequest) (*auth.TokenResponse, error) {
	if req.Password != "pizza" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}
	return &auth.TokenResponse{AccessToken: "access", RefreshToken: "refresh", ExpiresIn: 3600}, nil
}

func (stubAuthService) Refresh(context.Context, auth.RefreshRequest) (*auth.TokenResponse, error) {
	return &auth.TokenResponse{AccessToken: "access", RefreshToken: "refresh"}, nil
}

func (stubAuthService) Logout(context.Context, string) error { return nil }

func (stubAuthService) CreateUser(_ context.Context, _ enums.MemberRole, req auth.CreateUserRequest) (*models.User, error) {
	return &models.User{ID: uuid.New(), Email: req.Email, Name: req.Name, Role: enums.MemberRoleStaff}, nil
}

func (stubAuthService) EnsureOwner(context.Context, config.BootstrapConfig) (bool, error) {
	return false, nil
}

type stubMenuService struct{}

func (stubMenuService) Create(_ context.Context, in menu.CreateItemInput) (*models.MenuItem, error) {
	return &models.MenuItem{ID: uuid.New(), Name: in.Name, Category: in.Category, Price: in.Price, Cost: in.Cost}, nil
}

func (stubMenuService) Get(context.Context, uuid.UUID) (*models.MenuItem, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
}

func (stubMenuService) List(context.Context, menu.ListFilter) ([]models.MenuItem, error) {
	return []models.MenuItem{}, nil
}

func (stubMenuService) Update(context.Context, uuid.UUID, menu.UpdateItemInput) (*models.MenuItem, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "8080", CORSOrigins: []string{"http://localhost:3000"}},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "delizzia", ExpirationMinutes: 30},
		RateLimit: config.RateLimitConfig{
			LoginWindow:     time.Minute,
			LoginIPLimit:    20,
			LoginEmailLimit: 5,
		},
		Business: config.BusinessConfig{Timezone: "America/Guayaquil"},
	}
}

type testRouter struct {
	handler http.Handler
	cfg     *config.Config
	rates   *ratetable.Store
	reg     *prometheus.Registry
}

func newTestRouter(t *testing.T) testRouter {
	t.Helper()
	cfg := testConfig()
	reg := prometheus.NewRegistry()
	rates := ratetable.NewStore(ratetable.Default())
	handler := NewRouter(Dependencies{
		Config:      cfg,
		Logger:      logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard}),
		Sessions:    stubSessionManager{},
		Health:      map[string]controllers.Pinger{"db": stubPinger{}},
		Auth:        stubAuthService{},
		Menu:        stubMenuService{},
		Rates:       rates,
		Gatherer:    reg,
		HTTPMetrics: metrics.NewHTTPMetrics(reg),
	})
	return testRouter{handler: handler, cfg: cfg, rates: rates, reg: reg}
}

func (tr testRouter) do(t *testing.T, method, path, body string, role enums.MemberRole) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if role != "" {
		req.Header.Set("Authorization", "Bearer "+buildToken(t, tr.cfg, role))
	}
	resp := httptest.NewRecorder()
	tr.handler.ServeHTTP(resp, req)
	return resp
}

func buildToken(t *testing.T, cfg *config.Config, role enums.MemberRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "cook@delizzia.ec",
		Role:   role,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthRoutes(t *testing.T) {
	tr := newTestRouter(t)
	if resp := tr.do(t, http.MethodGet, "/health/live", "", ""); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for live got %d", resp.Code)
	}
	if resp := tr.do(t, http.MethodGet, "/health/ready", "", ""); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for ready got %d", resp.Code)
	}
}

func TestLoginIsPublic(t *testing.T) {
	tr := newTestRouter(t)
	resp := tr.do(t, http.MethodPost, "/api/v1/auth/login", `{"email":"owner@delizzia.ec","password":"pizza"}`, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	resp = tr.do(t, http.MethodPost, "/api/v1/auth/login", `{"email":"owner@delizzia.ec","password":"pasta"}`, "")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password got %d", resp.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	tr := newTestRouter(t)
	for _, path := range []string{"/api/v1/menu/items", "/api/v1/orders", "/api/v1/reports/daily", "/api/v1/rates"} {
		if resp := tr.do(t, http.MethodGet, path, "", ""); resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 got %d", path, resp.Code)
		}
	}
}

func TestStaffCanReadButNotWriteMenu(t *testing.T) {
	tr := newTestRouter(t)
	if resp := tr.do(t, http.MethodGet, "/api/v1/menu/items", "", enums.MemberRoleStaff); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for staff read got %d", resp.Code)
	}
	body := `{"name":"Calzone","category":"pizzas","price":"11","cost":"4"}`
	if resp := tr.do(t, http.MethodPost, "/api/v1/menu/items", body, enums.MemberRoleStaff); resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for staff write got %d", resp.Code)
	}
	if resp := tr.do(t, http.MethodPost, "/api/v1/menu/items", body, enums.MemberRoleOwner); resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for owner write got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestOwnerOnlyRoutes(t *testing.T) {
	tr := newTestRouter(t)
	cases := []struct {
		method, path, body string
	}{
		{http.MethodPost, "/api/v1/users", `{"email":"new@delizzia.ec","password":"secret123","name":"New"}`},
		{http.MethodGet, "/api/v1/reports/export", ""},
		{http.MethodGet, "/api/v1/analytics/pricing?item_id=" + uuid.NewString(), ""},
		{http.MethodPut, "/api/v1/rates", `{}`},
	}
	for _, tc := range cases {
		if resp := tr.do(t, tc.method, tc.path, tc.body, enums.MemberRoleStaff); resp.Code != http.StatusForbidden {
			t.Fatalf("%s %s: expected 403 for staff got %d", tc.method, tc.path, resp.Code)
		}
	}
}

func TestOwnerUpdatesRates(t *testing.T) {
	tr := newTestRouter(t)
	body := `{"commission_rates":{"uber_eats":"0.25","phone":"0"},"packaging":{"small":"0.10","medium":"0.20","large":"0.30"}}`
	resp := tr.do(t, http.MethodPut, "/api/v1/rates", body, enums.MemberRoleOwner)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if _, err := tr.rates.Current().RateFor(enums.ChannelBis); err == nil {
		t.Fatalf("channels left out of the new table should be gone")
	}
	if resp := tr.do(t, http.MethodGet, "/api/v1/rates", "", enums.MemberRoleStaff); resp.Code != http.StatusOK {
		t.Fatalf("expected staff read of rates got %d", resp.Code)
	}
}

func TestMissingServicesAnswerInternal(t *testing.T) {
	tr := newTestRouter(t)
	if resp := tr.do(t, http.MethodGet, "/api/v1/orders", "", enums.MemberRoleStaff); resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 without order service got %d", resp.Code)
	}
}

func TestMetricsExposeRoutePatterns(t *testing.T) {
	tr := newTestRouter(t)
	tr.do(t, http.MethodGet, "/api/v1/menu/items/"+uuid.NewString(), "", enums.MemberRoleStaff)

	resp := tr.do(t, http.MethodGet, "/metrics", "", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for metrics got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `route="/api/v1/menu/items/{itemId}"`) {
		t.Fatalf("expected templated route label in metrics output")
	}
}
