package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/faroled/faro/internal/catalog"
	"github.com/faroled/faro/internal/domain/product"
	domses "github.com/faroled/faro/internal/domain/session"
	historyrepo "github.com/faroled/faro/internal/repository/history"
	leadsrepo "github.com/faroled/faro/internal/repository/leads"
	chatuc "github.com/faroled/faro/internal/usecase/chat"
	faquc "github.com/faroled/faro/internal/usecase/faq"
	healthuc "github.com/faroled/faro/internal/usecase/health"
	"github.com/faroled/faro/internal/usecase/intent"
	leadsuc "github.com/faroled/faro/internal/usecase/leads"
	"github.com/faroled/faro/internal/usecase/search"
)

// --- Mocks ---

type stubSessions struct {
	states map[string]*domses.State
}

func (s *stubSessions) Get(_ context.Context, id string) (*domses.State, error) {
	if st, ok := s.states[id]; ok {
		return st, nil
	}
	return domses.New(), nil
}

func (s *stubSessions) Put(_ context.Context, id string, st *domses.State) error {
	s.states[id] = st
	return nil
}

func (s *stubSessions) Delete(_ context.Context, id string) error {
	delete(s.states, id)
	return nil
}

type stubGenerator struct{}

func (stubGenerator) Generate(context.Context, string, string) (string, error) {
	return "Claro, te muestro opciones.", nil
}

type stubCatalog struct {
	snap *catalog.Snapshot
	err  error
}

func (s *stubCatalog) Get() (*catalog.Snapshot, error) { return s.snap, s.err }

type stubChecker struct{ err error }

func (s *stubChecker) Check(context.Context) error { return s.err }

func testSnapshot() *catalog.Snapshot {
	return catalog.Build([]product.Product{
		product.FromMap(map[string]any{
			"sku":      "RF-100",
			"name":     "Reflector LED 100W IP65",
			"category": "exteriores",
			"tags":     []any{"reflectores"},
			"price":    "150000",
		}),
	}, "test")
}

func newTestServer(t *testing.T, cat *stubCatalog) (*Server, *historyrepo.Memory) {
	t.Helper()

	hist := historyrepo.NewMemory()
	chatSvc := chatuc.New(
		&stubSessions{states: make(map[string]*domses.State)},
		hist, stubGenerator{}, cat, faquc.New(faquc.CompanyCard{Empresa: "FaroLED"}),
		search.New(search.DefaultParams()),
		intent.NewClassifier(intent.DefaultParams()),
		intent.NewChain(intent.GuardConfig{CatalogURL: "https://faroled.example/catalogo"}),
		chatuc.Config{Fallback: "Te ayudo con iluminación."},
		zap.NewNop(),
	)
	leadSvc := leadsuc.New(leadsrepo.NewMemory(), nil, time.Second, zap.NewNop())
	healthSvc := healthuc.New(&stubChecker{}, nil)

	return NewServer(
		chatSvc, leadSvc, faquc.New(faquc.CompanyCard{Empresa: "FaroLED"}),
		hist, cat, healthSvc, zap.NewNop(),
	), hist
}

func newRouter(srv *Server, apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(BearerAuthMiddleware(apiKeys))
	srv.Routes(r)
	return r
}

// --- Tests ---

func TestPostChat(t *testing.T) {
	srv, _ := newTestServer(t, &stubCatalog{snap: testSnapshot()})
	router := newRouter(srv, nil)

	body := `{"session_id":"s1","message":"reflector para exterior"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp chatuc.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Products) != 1 || resp.Products[0].ID != "RF-100" {
		t.Fatalf("products = %+v", resp.Products)
	}
	if resp.HasMore {
		t.Fatal("single result cannot have more pages")
	}
}

func TestPostChatEmptyMessage(t *testing.T) {
	srv, _ := newTestServer(t, &stubCatalog{snap: testSnapshot()})
	router := newRouter(srv, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(
		http.MethodPost, "/chat", strings.NewReader(`{"session_id":"s1","message":"  "}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Code != "empty_message" {
		t.Fatalf("code = %q", resp.Code)
	}
}

func TestPostChatMissingSessionID(t *testing.T) {
	srv, _ := newTestServer(t, &stubCatalog{snap: testSnapshot()})
	router := newRouter(srv, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(
		http.MethodPost, "/chat", strings.NewReader(`{"message":"hola"}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestPostChatCatalogDownStillAnswers(t *testing.T) {
	srv, _ := newTestServer(t, &stubCatalog{err: errors.New("feed unreachable")})
	router := newRouter(srv, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(
		http.MethodPost, "/chat", strings.NewReader(`{"session_id":"s1","message":"reflectores"}`)))

	if rec.Code != http.StatusOK {
		t.Fatalf("chat must never 500, status = %d", rec.Code)
	}
}

func TestPostLead(t *testing.T) {
	srv, _ := newTestServer(t, &stubCatalog{snap: testSnapshot()})
	router := newRouter(srv, nil)

	body := `{"name":"Ana","email":"ana@example.com","phone":"3001112233","city":"Bogotá"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/leads", strings.NewReader(body)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["id"] == "" {
		t.Fatal("expected a generated lead id")
	}
}

func TestPostLeadInvalid(t *testing.T) {
	srv, _ := newTestServer(t, &stubCatalog{snap: testSnapshot()})
	router := newRouter(srv, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(
		http.MethodPost, "/leads", strings.NewReader(`{"name":"Ana","email":"nope","phone":"300"}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestGetFAQ(t *testing.T) {
	srv, _ := newTestServer(t, &stubCatalog{snap: testSnapshot()})
	router := newRouter(srv, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/faq", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var card faquc.CompanyCard
	if err := json.Unmarshal(rec.Body.Bytes(), &card); err != nil {
		t.Fatal(err)
	}
	if card.Empresa != "FaroLED" {
		t.Fatalf("card = %+v", card)
	}
}

func TestGetHistoryRequiresAuth(t *testing.T) {
	srv, hist := newTestServer(t, &stubCatalog{snap: testSnapshot()})
	router := newRouter(srv, []string{"secret"})

	_ = hist.Append(context.Background(), historyrepo.Entry{
		SessionID: "s1", UserMessage: "hola", BotReply: "hola!", At: time.Now(),
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history/s1", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/history/s1", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("authenticated status = %d", rec.Code)
	}
	var resp struct {
		SessionID string              `json:"session_id"`
		Items     []historyrepo.Entry `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Items) != 1 || resp.Items[0].UserMessage != "hola" {
		t.Fatalf("items = %+v", resp.Items)
	}
}

func TestAuthDoesNotBlockPublicRoutes(t *testing.T) {
	srv, _ := newTestServer(t, &stubCatalog{snap: testSnapshot()})
	router := newRouter(srv, []string{"secret"})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/faq", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("public route blocked, status = %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, &stubCatalog{snap: testSnapshot()})
	router := newRouter(srv, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHealthDegraded(t *testing.T) {
	srv, _ := newTestServer(t, &stubCatalog{snap: testSnapshot()})
	srv.health = healthuc.New(&stubChecker{err: errors.New("feed gone")}, nil)
	router := newRouter(srv, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestDebugCatalog(t *testing.T) {
	srv, _ := newTestServer(t, &stubCatalog{snap: testSnapshot()})
	router := newRouter(srv, []string{"secret"})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/catalog", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("debug must be protected, status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/debug/catalog", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["products"] != float64(1) {
		t.Fatalf("products = %v", resp["products"])
	}
}
