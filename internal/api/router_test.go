package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/toolrent/rental-system/internal/api/handler"
	"github.com/toolrent/rental-system/internal/core/domain"
	"github.com/toolrent/rental-system/internal/core/service"
	"github.com/toolrent/rental-system/internal/infrastructure/queue"
)

type memoryUsers struct {
	mu    sync.Mutex
	byID  map[int64]domain.User
	email map[string]int64
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byID: map[int64]domain.User{}, email: map[string]int64{}}
}

func (m *memoryUsers) Create(_ context.Context, u *domain.User) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.email[u.Email]; ok {
		return 0, domain.ErrDuplicateEmail
	}
	id := int64(len(m.byID) + 1)
	stored := *u
	stored.ID = id
	m.byID[id] = stored
	m.email[u.Email] = id
	return id, nil
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.email[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u := m.byID[id]
	return &u, nil
}

func (m *memoryUsers) FindByID(_ context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

type memoryTools struct{}

func (memoryTools) List(context.Context) ([]domain.Tool, error) { return nil, nil }

func (memoryTools) FindByID(context.Context, int64) (*domain.Tool, error) {
	return nil, domain.ErrToolNotFound
}

func (memoryTools) Create(context.Context, *domain.Tool) (int64, error) { return 1, nil }

func (memoryTools) Delete(context.Context, int64) error { return domain.ErrToolNotFound }

type memoryRentals struct {
	mu   sync.Mutex
	rows []domain.Rental
}

func (m *memoryRentals) Create(_ context.Context, r *domain.Rental) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, *r)
	return int64(len(m.rows)), nil
}

func (m *memoryRentals) RentedByName(context.Context) ([]domain.RentedQuantity, error) {
	return nil, nil
}

func newTestRouter(t *testing.T) (*echo.Echo, *memoryRentals) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	pool := queue.NewHashPool(2, bcrypt.MinCost, zerolog.Nop())
	pool.Start(ctx)

	tokens := service.NewTokenManager("test-secret-0123456789", 0)
	rentals := &memoryRentals{}

	e := NewRouter(Deps{
		Auth:    service.NewAuthService(newMemoryUsers(), pool, tokens, zerolog.Nop()),
		Catalog: service.NewCatalogService(memoryTools{}),
		Orders:  service.NewOrderService(rentals, nil, zerolog.Nop()),
		Admin:   service.NewAdminService(memoryTools{}, rentals, zerolog.Nop()),
		Checks: map[string]handler.DependencyCheck{
			"postgres": func(context.Context) error { return nil },
		},
		Log: zerolog.Nop(),
	})
	return e, rentals
}

func do(e *echo.Echo, method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("authorization", token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func body(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return m
}

func TestRouter_SignupLoginProfileScenario(t *testing.T) {
	e, _ := newTestRouter(t)

	rec := do(e, http.MethodPost, "/signup", `{"name":"Alice","email":"alice@example.com","password":"s3cret"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	if msg := body(t, rec)["message"]; msg != "User registered successfully." {
		t.Fatalf("signup: unexpected message %v", msg)
	}

	rec = do(e, http.MethodPost, "/signup", `{"name":"Alice2","email":"alice@example.com","password":"other"}`, "")
	if rec.Code != http.StatusBadRequest || body(t, rec)["message"] != "Email already exists." {
		t.Fatalf("duplicate signup: got %d %s", rec.Code, rec.Body.String())
	}

	rec = do(e, http.MethodPost, "/login", `{"email":"alice@example.com","password":"s3cret"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	login := body(t, rec)
	token, _ := login["token"].(string)
	if token == "" {
		t.Fatalf("login: missing token")
	}
	user, _ := login["user"].(map[string]any)
	if user["user_id"] != float64(1) || user["name"] != "Alice" || user["email"] != "alice@example.com" {
		t.Fatalf("login: unexpected user %v", user)
	}

	rec = do(e, http.MethodGet, "/profile", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("profile: expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	profile, _ := body(t, rec)["user"].(map[string]any)
	if profile["email"] != "alice@example.com" {
		t.Fatalf("profile: unexpected user %v", profile)
	}

	rec = do(e, http.MethodGet, "/profile", "", token[:len(token)-1])
	if rec.Code != http.StatusUnauthorized || body(t, rec)["message"] != "Invalid Token" {
		t.Fatalf("truncated token: got %d %s", rec.Code, rec.Body.String())
	}

	rec = do(e, http.MethodGet, "/profile", "", "")
	if rec.Code != http.StatusUnauthorized || body(t, rec)["message"] != "Access Denied. No Token Provided." {
		t.Fatalf("no token: got %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_LoginFailuresIndistinguishable(t *testing.T) {
	e, _ := newTestRouter(t)
	do(e, http.MethodPost, "/signup", `{"name":"Alice","email":"alice@example.com","password":"s3cret"}`, "")

	wrongPass := do(e, http.MethodPost, "/login", `{"email":"alice@example.com","password":"nope"}`, "")
	unknown := do(e, http.MethodPost, "/login", `{"email":"bob@example.com","password":"s3cret"}`, "")

	if wrongPass.Code != unknown.Code || wrongPass.Body.String() != unknown.Body.String() {
		t.Fatalf("responses differ: %d %s vs %d %s",
			wrongPass.Code, wrongPass.Body.String(), unknown.Code, unknown.Body.String())
	}
	if wrongPass.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", wrongPass.Code)
	}
}

func TestRouter_OrderRecordsCaller(t *testing.T) {
	e, rentals := newTestRouter(t)
	do(e, http.MethodPost, "/signup", `{"name":"Alice","email":"alice@example.com","password":"s3cret"}`, "")
	token, _ := body(t, do(e, http.MethodPost, "/login", `{"email":"alice@example.com","password":"s3cret"}`, ""))["token"].(string)

	rec := do(e, http.MethodPost, "/order", `{"name":"Drill","price":10,"quantity":1,"duration":2}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("order without token: expected 401, got %d", rec.Code)
	}

	rec = do(e, http.MethodPost, "/order", `{"name":"Drill","price":10,"quantity":1,"duration":2}`, "Bearer "+token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("order: expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	if len(rentals.rows) != 1 || rentals.rows[0].UserID != 1 {
		t.Fatalf("expected booking for user 1, got %+v", rentals.rows)
	}
}

func TestRouter_AdminRequiresSession(t *testing.T) {
	e, _ := newTestRouter(t)
	rec := do(e, http.MethodGet, "/admin/rental-summary", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRouter_HealthAndUnknownRoute(t *testing.T) {
	e, _ := newTestRouter(t)

	if rec := do(e, http.MethodGet, "/health", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("liveness: expected 200, got %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/health/ready", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("readiness: expected 200, got %d", rec.Code)
	}

	rec := do(e, http.MethodGet, "/nope", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if _, ok := body(t, rec)["message"]; !ok {
		t.Fatalf("expected message envelope, got %s", rec.Body.String())
	}
}

func TestHTTPErrorHandler_HidesUnexpectedErrors(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(errors.New("pq: relation \"users\" does not exist"), c)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != `{"message":"Server Error"}` {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestReadiness_Degraded(t *testing.T) {
	var logs bytes.Buffer
	e := echo.New()
	h := handler.NewHealthDependenciesHandler(map[string]handler.DependencyCheck{
		"redis":    func(context.Context) error { return errors.New("dial tcp 10.0.0.7:6379: connection refused") },
		"postgres": func(context.Context) error { return nil },
	}, zerolog.New(&logs))
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)

	if err := h.Readiness(c); err != nil {
		t.Fatalf("readiness: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	var body struct {
		Status       string                       `json:"status"`
		Dependencies map[string]map[string]string `json:"dependencies"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "degraded" || body.Dependencies["redis"]["status"] != "unhealthy" || body.Dependencies["postgres"]["status"] != "ok" {
		t.Fatalf("unexpected readiness body: %s", rec.Body.String())
	}
	if len(body.Dependencies["redis"]) != 1 {
		t.Fatalf("expected only a status for redis, got %v", body.Dependencies["redis"])
	}
	if strings.Contains(rec.Body.String(), "10.0.0.7") || strings.Contains(rec.Body.String(), "refused") {
		t.Fatalf("readiness body leaks dependency error: %s", rec.Body.String())
	}
	if !strings.Contains(logs.String(), "connection refused") || !strings.Contains(logs.String(), `"dependency":"redis"`) {
		t.Fatalf("expected the failure to be logged, got %q", logs.String())
	}
}
