// Package chat orchestrates one chat turn: guard chain, intent
// classification, FAQ lookup, product retrieval with pagination and the
// generated reply, with per-session conversational memory.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/faroled/faro/internal/domain"
	"github.com/faroled/faro/internal/domain/product"
	domses "github.com/faroled/faro/internal/domain/session"
	"github.com/faroled/faro/internal/domain/text"
	"github.com/faroled/faro/internal/metrics"
	"github.com/faroled/faro/internal/repository/history"
	"github.com/faroled/faro/internal/usecase/intent"
	"github.com/faroled/faro/internal/usecase/search"
)

// poolPadding widens the retriever's over-fetch beyond the requested page so
// downstream filters and exclusions have enough material.
const poolPadding = 400

const apology = "Tuvimos un inconveniente técnico. Intenta de nuevo."

// Request is one chat turn from the widget.
type Request struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	Page      int    `json:"page"`
}

// Response is the reply for one chat turn.
type Response struct {
	Content   string            `json:"content"`
	Products  []product.Display `json:"products"`
	Page      int               `json:"page"`
	LastQuery string            `json:"last_query"`
	HasMore   bool              `json:"has_more"`
}

// Config holds reply phrasing settings.
type Config struct {
	Fallback   string
	StyleGuide string
	Tone       string
}

// Service handles chat turns. Safe for concurrent use; turns for the same
// session are serialized so continuation state is never lost.
type Service struct {
	sessions   SessionStore
	history    HistoryWriter
	generator  Generator
	catalog    Catalog
	faq        FAQ
	searcher   *search.Service
	classifier *intent.Classifier
	guards     *intent.Chain
	cfg        Config
	logger     *zap.Logger

	locks sync.Map // session id -> *sync.Mutex
}

// New creates the chat service. history and faq can be nil.
func New(
	sessions SessionStore, hist HistoryWriter, generator Generator, cat Catalog, faqSvc FAQ,
	searcher *search.Service, classifier *intent.Classifier, guards *intent.Chain,
	cfg Config, log *zap.Logger,
) *Service {
	return &Service{
		sessions:   sessions,
		history:    hist,
		generator:  generator,
		catalog:    cat,
		faq:        faqSvc,
		searcher:   searcher,
		classifier: classifier,
		guards:     guards,
		cfg:        cfg,
		logger:     log,
	}
}

// Handle processes one chat turn. The empty message is the only hard error;
// every internal failure degrades to a fixed apology reply so the widget
// never sees a 500.
func (s *Service) Handle(ctx context.Context, req Request) (Response, error) {
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return Response{}, domain.ErrEmptyMessage
	}

	mu := s.sessionLock(req.SessionID)
	mu.Lock()
	defer mu.Unlock()

	resp := s.process(ctx, req.SessionID, msg, req.Page)

	if s.history != nil {
		if err := s.history.Append(ctx, history.Entry{
			SessionID:   req.SessionID,
			UserMessage: msg,
			BotReply:    resp.Content,
			At:          time.Now().UTC(),
		}); err != nil {
			s.logger.Warn("history append failed", zap.Error(err))
		}
	}
	return resp, nil
}

// process runs the turn fail-open: any panic or internal error becomes the
// apology response.
func (s *Service) process(ctx context.Context, sessionID, msg string, clientPage int) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("chat turn panicked", zap.Any("panic", r))
			resp = Response{Content: apology, Products: []product.Display{}, LastQuery: msg}
		}
	}()

	r, err := s.turn(ctx, sessionID, msg, clientPage)
	if err != nil {
		s.logger.Error("chat turn failed", zap.Error(err))
		return Response{Content: apology, Products: []product.Display{}, LastQuery: msg}
	}
	return r
}

func (s *Service) turn(ctx context.Context, sessionID, msg string, clientPage int) (Response, error) {
	if d, hit := s.guards.Evaluate(msg); hit {
		metrics.ChatRequestsTotal.WithLabelValues(d.Intent).Inc()
		return Response{Content: d.Reply, Products: []product.Display{}}, nil
	}

	snap, err := s.catalog.Get()
	if err != nil {
		return Response{}, fmt.Errorf("load catalog: %w", err)
	}

	st := s.loadState(ctx, sessionID)
	defer s.saveState(ctx, sessionID, st)

	cats := intent.CatTokens(snap, msg)
	phr := intent.PhraseTokens(snap, msg)
	kind := s.classifier.Classify(snap, msg, cats, phr)
	promptCtx := catalogContext(snap)

	if clientPage < 0 {
		clientPage = 0
	}
	isMore := intent.WantsMore(msg)
	// A bare "si" or "calida" with an active topic is a refinement of the
	// previous search, not smalltalk.
	isFollowUp := intent.IsFollowUp(msg) && len(st.TopicTokens) > 0

	// An exact product-code reference short-circuits everything but the
	// guards, even when the rest of the message reads as smalltalk.
	if row, ok := snap.FindCode(msg); ok {
		metrics.ChatRequestsTotal.WithLabelValues("code").Inc()
		st.LastQuery = msg
		st.ServerPage = 0
		st.HadEvidence = true
		st.TopicTokens = mergeTokens(phr, cats)
		return Response{
			Content:   s.generate(ctx, "inscope", promptCtx, msg),
			Products:  []product.Display{row.Product.ToDisplay()},
			LastQuery: msg,
		}, nil
	}

	// Questions route to the FAQ table first, then the generator. Product
	// retrieval is skipped entirely.
	if !isMore && !isFollowUp && intent.IsQuestion(msg) {
		metrics.ChatRequestsTotal.WithLabelValues("faq").Inc()
		if s.faq != nil {
			if answer, ok := s.faq.TryAnswer(msg); ok {
				return Response{Content: answer, Products: []product.Display{}}, nil
			}
		}
		return Response{
			Content:  s.generate(ctx, "faq", promptCtx, msg),
			Products: []product.Display{},
		}, nil
	}

	if !isMore && !isFollowUp && (kind == intent.KindSmalltalk || kind == intent.KindOfftopic) {
		metrics.ChatRequestsTotal.WithLabelValues(string(kind)).Inc()
		return Response{
			Content:  s.generate(ctx, string(kind), promptCtx, msg),
			Products: []product.Display{},
		}, nil
	}

	// Resolve the effective query and page. A continuation reuses the last
	// query; a fresh one-word follow-up inherits the session topic.
	var q string
	var page int
	if isMore && st.LastQuery != "" {
		q = st.LastQuery
		st.ServerPage++
		if clientPage > st.ServerPage {
			st.ServerPage = clientPage
		}
		page = st.ServerPage
	} else {
		q = msg
		if isFollowUp {
			q = strings.Join(append(append([]string{}, st.TopicTokens...), q), " ")
		}
		st.LastQuery = q
		st.ServerPage = clientPage
		page = clientPage
	}

	qKey := text.Normalize(q)
	if page == 0 {
		st.ResetSeen(qKey)
	}
	seen := st.Seen(qKey)

	metrics.SearchesTotal.Inc()
	need := (page+1)*s.searcher.PageSize() + poolPadding
	pool := s.searcher.Candidates(snap, q, need)
	items, hasMore := s.searcher.Page(pool, search.PageQuery{
		HardTags:   cats,
		SoftTokens: phr,
		Exclude:    seen,
		Page:       page,
	})

	if len(items) > 0 {
		metrics.ChatRequestsTotal.WithLabelValues("inscope").Inc()
		displays := make([]product.Display, len(items))
		keys := make([]string, len(items))
		for i, row := range items {
			displays[i] = row.Product.ToDisplay()
			keys[i] = row.Key
		}
		st.MarkSeen(qKey, keys)
		st.HadEvidence = true
		if merged := mergeTokens(phr, cats); len(merged) > 0 {
			st.TopicTokens = merged
		}
		return Response{
			Content:   s.generate(ctx, "inscope", promptCtx, msg),
			Products:  displays,
			Page:      page,
			LastQuery: q,
			HasMore:   hasMore,
		}, nil
	}

	metrics.SearchesEmptyTotal.Inc()

	// A continuation that ran dry: acknowledge and reset the topic so the
	// next fragment starts clean.
	if st.HadEvidence && (isMore || page > 0) {
		metrics.ChatRequestsTotal.WithLabelValues("inscope").Inc()
		st.ClearTopic()
		return Response{
			Content:   s.generate(ctx, "inscope", promptCtx, msg+"\nNo hubo más resultados para la consulta anterior."),
			Products:  []product.Display{},
			Page:      page,
			LastQuery: q,
		}, nil
	}

	metrics.ChatRequestsTotal.WithLabelValues(string(kind)).Inc()
	return Response{
		Content:   s.generate(ctx, string(kind), promptCtx, msg),
		Products:  []product.Display{},
		LastQuery: q,
	}, nil
}

// generate calls the language generator and substitutes the local fallback
// sentence on any failure. Never on the path of retrieval correctness.
func (s *Service) generate(ctx context.Context, kind, promptCtx, userMsg string) string {
	system := buildSystemPrompt(kind, promptCtx, s.cfg.StyleGuide, s.cfg.Tone)
	reply, err := s.generator.Generate(ctx, system, userMsg)
	if err != nil || strings.TrimSpace(reply) == "" {
		if err != nil {
			s.logger.Warn("generation failed", zap.Error(err))
		}
		metrics.GenerationFallbacksTotal.Inc()
		return s.cfg.Fallback
	}
	return reply
}

// loadState returns the session state, falling back to a fresh one when the
// store is unavailable. Losing continuity beats failing the turn.
func (s *Service) loadState(ctx context.Context, sessionID string) *domses.State {
	st, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			s.logger.Warn("session load failed", zap.Error(err))
		}
		return domses.New()
	}
	return st
}

func (s *Service) saveState(ctx context.Context, sessionID string, st *domses.State) {
	if err := s.sessions.Put(ctx, sessionID, st); err != nil {
		s.logger.Warn("session save failed", zap.Error(err))
	}
}

func (s *Service) sessionLock(id string) *sync.Mutex {
	v, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// mergeTokens concatenates token lists preserving order, first seen wins.
func mergeTokens(lists ...[]string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, list := range lists {
		for _, t := range list {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}
