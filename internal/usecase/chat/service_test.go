package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/faroled/faro/internal/catalog"
	"github.com/faroled/faro/internal/domain"
	"github.com/faroled/faro/internal/domain/product"
	domses "github.com/faroled/faro/internal/domain/session"
	"github.com/faroled/faro/internal/repository/history"
	"github.com/faroled/faro/internal/usecase/intent"
	"github.com/faroled/faro/internal/usecase/search"
)

// --- Mocks ---

type memSessions struct {
	states map[string]*domses.State
	getErr error
	putErr error
}

func newMemSessions() *memSessions {
	return &memSessions{states: make(map[string]*domses.State)}
}

func (m *memSessions) Get(_ context.Context, id string) (*domses.State, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	st, ok := m.states[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return st, nil
}

func (m *memSessions) Put(_ context.Context, id string, st *domses.State) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.states[id] = st
	return nil
}

func (m *memSessions) Delete(_ context.Context, id string) error {
	delete(m.states, id)
	return nil
}

type mockHistory struct {
	entries []history.Entry
}

func (m *mockHistory) Append(_ context.Context, e history.Entry) error {
	m.entries = append(m.entries, e)
	return nil
}

type mockGenerator struct {
	reply   string
	err     error
	systems []string
}

func (m *mockGenerator) Generate(_ context.Context, system, _ string) (string, error) {
	m.systems = append(m.systems, system)
	return m.reply, m.err
}

type mockCatalog struct {
	snap *catalog.Snapshot
	err  error
}

func (m *mockCatalog) Get() (*catalog.Snapshot, error) { return m.snap, m.err }

type mockFAQ struct {
	answer string
	ok     bool
}

func (m *mockFAQ) TryAnswer(string) (string, bool) { return m.answer, m.ok }

// --- Fixtures ---

func reflectorFeed(n int) []product.Product {
	out := make([]product.Product, n)
	for i := 0; i < n; i++ {
		out[i] = product.FromMap(map[string]any{
			"sku":         fmt.Sprintf("RF-%02d", i+1),
			"name":        fmt.Sprintf("Reflector LED %dW IP65", (i+1)*50),
			"category":    "exteriores",
			"tags":        []any{"reflectores", "led"},
			"description": "Reflector para fachadas y canchas",
			"price":       "120000",
		})
	}
	return out
}

func newTestService(cat Catalog, gen Generator, faqSvc FAQ, sessions SessionStore) (*Service, *mockHistory) {
	hist := &mockHistory{}
	svc := New(
		sessions, hist, gen, cat, faqSvc,
		search.New(search.DefaultParams()),
		intent.NewClassifier(intent.DefaultParams()),
		intent.NewChain(intent.GuardConfig{
			CatalogURL: "https://faroled.example/catalogo",
			QuoteURL:   "https://wa.me/573000000000",
		}),
		Config{Fallback: "Puedo ayudarte con iluminación del catálogo."},
		zap.NewNop(),
	)
	return svc, hist
}

// --- Tests ---

func TestHandleEmptyMessage(t *testing.T) {
	svc, _ := newTestService(
		&mockCatalog{snap: catalog.Build(nil, "h")},
		&mockGenerator{reply: "ok"}, nil, newMemSessions(),
	)
	if _, err := svc.Handle(context.Background(), Request{SessionID: "s1", Message: "  "}); !errors.Is(err, domain.ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
}

func TestHandleCatalogGuard(t *testing.T) {
	svc, _ := newTestService(
		&mockCatalog{snap: catalog.Build(reflectorFeed(1), "h")},
		&mockGenerator{reply: "generated"}, nil, newMemSessions(),
	)
	resp, err := svc.Handle(context.Background(), Request{SessionID: "s1", Message: "envíame el catálogo por favor"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resp.Content, "https://faroled.example/catalogo") {
		t.Fatalf("expected catalog link, got %q", resp.Content)
	}
	if len(resp.Products) != 0 {
		t.Fatalf("guard replies carry no products, got %d", len(resp.Products))
	}
}

func TestHandleFAQHit(t *testing.T) {
	svc, _ := newTestService(
		&mockCatalog{snap: catalog.Build(reflectorFeed(1), "h")},
		&mockGenerator{reply: "generated"},
		&mockFAQ{answer: "Garantía de 2 años en toda la línea.", ok: true},
		newMemSessions(),
	)
	resp, err := svc.Handle(context.Background(), Request{SessionID: "s1", Message: "¿cuál es la garantía?"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Content != "Garantía de 2 años en toda la línea." {
		t.Fatalf("expected static FAQ answer, got %q", resp.Content)
	}
	if len(resp.Products) != 0 {
		t.Fatal("FAQ answers carry no products")
	}
}

func TestHandleQuestionWithoutFAQMatchGenerates(t *testing.T) {
	gen := &mockGenerator{reply: "Respuesta breve."}
	svc, _ := newTestService(
		&mockCatalog{snap: catalog.Build(reflectorFeed(1), "h")},
		gen, &mockFAQ{}, newMemSessions(),
	)
	resp, err := svc.Handle(context.Background(), Request{SessionID: "s1", Message: "¿me sirve para una bodega?"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Content != "Respuesta breve." {
		t.Fatalf("got %q", resp.Content)
	}
	if len(gen.systems) != 1 || !strings.Contains(gen.systems[0], "Modo FAQ") {
		t.Fatalf("expected FAQ prompt, got %v", gen.systems)
	}
}

func TestHandleSmalltalk(t *testing.T) {
	gen := &mockGenerator{reply: "¡Hola! ¿Qué espacio quieres iluminar?"}
	svc, hist := newTestService(
		&mockCatalog{snap: catalog.Build(reflectorFeed(1), "h")},
		gen, nil, newMemSessions(),
	)
	resp, err := svc.Handle(context.Background(), Request{SessionID: "s1", Message: "hola"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Content != gen.reply {
		t.Fatalf("got %q", resp.Content)
	}
	if len(resp.Products) != 0 {
		t.Fatal("smalltalk carries no products")
	}
	if len(hist.entries) != 1 || hist.entries[0].UserMessage != "hola" {
		t.Fatalf("history = %+v", hist.entries)
	}
}

func TestHandleProductSearch(t *testing.T) {
	gen := &mockGenerator{reply: "Este reflector funciona bien en exteriores."}
	sessions := newMemSessions()
	svc, _ := newTestService(
		&mockCatalog{snap: catalog.Build(reflectorFeed(1), "h")},
		gen, nil, sessions,
	)
	resp, err := svc.Handle(context.Background(), Request{SessionID: "s1", Message: "reflector para exterior"})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Products) != 1 {
		t.Fatalf("expected the single matching product, got %d", len(resp.Products))
	}
	if resp.Products[0].ID != "RF-01" {
		t.Fatalf("product id = %q", resp.Products[0].ID)
	}
	if resp.HasMore {
		t.Fatal("one product cannot have more pages")
	}
	if resp.LastQuery != "reflector para exterior" {
		t.Fatalf("last_query = %q", resp.LastQuery)
	}

	st := sessions.states["s1"]
	if st == nil || !st.HadEvidence {
		t.Fatalf("session state not persisted: %+v", st)
	}
	if !st.SeenByQuery["reflector para exterior"]["RF-01"] {
		t.Fatalf("shown product not marked seen: %+v", st.SeenByQuery)
	}
}

func TestHandleShowMoreExcludesSeen(t *testing.T) {
	gen := &mockGenerator{reply: "Aquí van más opciones."}
	sessions := newMemSessions()
	svc, _ := newTestService(
		&mockCatalog{snap: catalog.Build(reflectorFeed(7), "h")},
		gen, nil, sessions,
	)

	first, err := svc.Handle(context.Background(), Request{SessionID: "s1", Message: "reflectores led"})
	if err != nil {
		t.Fatal(err)
	}
	if len(first.Products) != 5 || !first.HasMore {
		t.Fatalf("page 0 = %d items, has_more=%v", len(first.Products), first.HasMore)
	}

	second, err := svc.Handle(context.Background(), Request{SessionID: "s1", Message: "ver mas"})
	if err != nil {
		t.Fatal(err)
	}
	if len(second.Products) != 2 || second.HasMore {
		t.Fatalf("page 1 = %d items, has_more=%v", len(second.Products), second.HasMore)
	}

	shown := make(map[string]bool)
	for _, p := range first.Products {
		shown[p.ID] = true
	}
	for _, p := range second.Products {
		if shown[p.ID] {
			t.Fatalf("product %s repeated across pages", p.ID)
		}
	}
	if second.LastQuery != first.LastQuery {
		t.Fatalf("continuation must reuse the query: %q vs %q", second.LastQuery, first.LastQuery)
	}
}

func TestHandleExhaustedContinuation(t *testing.T) {
	gen := &mockGenerator{reply: "No tengo más opciones; cambia la búsqueda."}
	sessions := newMemSessions()
	svc, _ := newTestService(
		&mockCatalog{snap: catalog.Build(reflectorFeed(3), "h")},
		gen, nil, sessions,
	)

	if _, err := svc.Handle(context.Background(), Request{SessionID: "s1", Message: "reflectores led"}); err != nil {
		t.Fatal(err)
	}
	resp, err := svc.Handle(context.Background(), Request{SessionID: "s1", Message: "ver mas"})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Products) != 0 || resp.HasMore {
		t.Fatalf("exhausted continuation = %d items, has_more=%v", len(resp.Products), resp.HasMore)
	}
	if resp.Content != gen.reply {
		t.Fatalf("got %q", resp.Content)
	}
	if st := sessions.states["s1"]; st.HadEvidence || st.TopicTokens != nil {
		t.Fatalf("topic should be cleared, state = %+v", st)
	}
}

func TestHandleCodeLookup(t *testing.T) {
	gen := &mockGenerator{reply: "Esa referencia es el reflector de 100W."}
	svc, _ := newTestService(
		&mockCatalog{snap: catalog.Build(reflectorFeed(3), "h")},
		gen, nil, newMemSessions(),
	)
	resp, err := svc.Handle(context.Background(), Request{SessionID: "s1", Message: "tienes la rf-02"})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Products) != 1 || resp.Products[0].ID != "RF-02" {
		t.Fatalf("products = %+v", resp.Products)
	}
	if resp.HasMore {
		t.Fatal("code lookups are single-item replies")
	}
}

func TestHandleGeneratorFailureFallsBack(t *testing.T) {
	svc, _ := newTestService(
		&mockCatalog{snap: catalog.Build(reflectorFeed(1), "h")},
		&mockGenerator{err: errors.New("upstream down")}, nil, newMemSessions(),
	)
	resp, err := svc.Handle(context.Background(), Request{SessionID: "s1", Message: "hola"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Content != "Puedo ayudarte con iluminación del catálogo." {
		t.Fatalf("got %q", resp.Content)
	}
}

func TestHandleCatalogFailureApologizes(t *testing.T) {
	svc, _ := newTestService(
		&mockCatalog{err: errors.New("feed unreachable")},
		&mockGenerator{reply: "ok"}, nil, newMemSessions(),
	)
	resp, err := svc.Handle(context.Background(), Request{SessionID: "s1", Message: "reflectores led"})
	if err != nil {
		t.Fatalf("internal failures must not surface: %v", err)
	}
	if resp.Content != apology {
		t.Fatalf("got %q", resp.Content)
	}
}

func TestHandleSessionStoreFailureDegrades(t *testing.T) {
	sessions := newMemSessions()
	sessions.getErr = errors.New("redis down")
	sessions.putErr = errors.New("redis down")
	svc, _ := newTestService(
		&mockCatalog{snap: catalog.Build(reflectorFeed(1), "h")},
		&mockGenerator{reply: "ok"}, nil, sessions,
	)
	resp, err := svc.Handle(context.Background(), Request{SessionID: "s1", Message: "reflector para exterior"})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Products) != 1 {
		t.Fatalf("retrieval must survive a dead session store, got %d products", len(resp.Products))
	}
}

func TestHandleFollowUpInheritsTopic(t *testing.T) {
	gen := &mockGenerator{reply: "Claro, estas son opciones cálidas."}
	sessions := newMemSessions()
	svc, _ := newTestService(
		&mockCatalog{snap: catalog.Build(reflectorFeed(2), "h")},
		gen, nil, sessions,
	)

	if _, err := svc.Handle(context.Background(), Request{SessionID: "s1", Message: "reflectores para exterior"}); err != nil {
		t.Fatal(err)
	}
	resp, err := svc.Handle(context.Background(), Request{SessionID: "s1", Message: "si"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resp.LastQuery, "si") || len(resp.LastQuery) <= len("si") {
		t.Fatalf("follow-up should inherit topic tokens, last_query = %q", resp.LastQuery)
	}
}
