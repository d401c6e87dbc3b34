package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	domainauth "github.com/target/aihub-dashboard/internal/domain/auth"
	"github.com/target/aihub-dashboard/internal/domain/chat"
	"github.com/target/aihub-dashboard/internal/observability/metrics"
	"github.com/target/aihub-dashboard/internal/ports"
	"golang.org/x/time/rate"
)

// Provider names.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderEcho      = "echo"
)

var (
	// ErrUnknownProvider is returned when the requested provider is not registered.
	ErrUnknownProvider = errors.New("unknown chat provider")
	// ErrRateLimited is returned when a user sends messages faster than allowed.
	ErrRateLimited = errors.New("chat rate limit exceeded")
	// ErrProviderFailed wraps upstream failures; the prompt is not logged and the charge is refunded.
	ErrProviderFailed = errors.New("chat provider failed")
)

// ChatStores groups the persistence dependencies of ChatService.
type ChatStores struct {
	Log     ports.ChatLog  // Required
	Credits *CreditService // Required
	Logger  *slog.Logger   // Optional
}

// ChatConfig tunes ChatService behavior.
type ChatConfig struct {
	Timeout           time.Duration
	CreditsPerMessage int64
	// RatePerMinute is the sustained per-user message rate; zero disables limiting.
	RatePerMinute float64
	Burst         int
	// HistoryTurns is how many earlier prompt/reply pairs are sent upstream.
	HistoryTurns int
}

// ChatServiceOptions groups dependencies for ChatService.
type ChatServiceOptions struct {
	Providers []ports.ChatProvider
	Stores    ChatStores
	Config    ChatConfig
	Metrics   metrics.Sink // Optional
}

// ChatService relays user prompts to the registered providers, charging credits
// and recording the exchange.
type ChatService struct {
	providers map[string]ports.ChatProvider
	log       ports.ChatLog
	credits   *CreditService
	logger    *slog.Logger
	cfg       ChatConfig
	limiters  *limiterCache
	metrics   metrics.Sink
	now       func() time.Time
}

// NewChatService constructs a ChatService with validation.
func NewChatService(opts ChatServiceOptions) (*ChatService, error) {
	if len(opts.Providers) == 0 {
		return nil, errors.New("at least one chat provider is required")
	}
	if opts.Stores.Log == nil {
		return nil, errors.New("ChatLog is required")
	}
	if opts.Stores.Credits == nil {
		return nil, errors.New("CreditService is required")
	}
	if opts.Config.CreditsPerMessage < 0 {
		return nil, errors.New("credits per message must not be negative")
	}

	providers := make(map[string]ports.ChatProvider, len(opts.Providers))
	for _, p := range opts.Providers {
		if p == nil {
			return nil, errors.New("nil chat provider")
		}
		name := p.Name()
		if _, dup := providers[name]; dup {
			return nil, fmt.Errorf("duplicate chat provider %q", name)
		}
		providers[name] = p
	}

	cfg := opts.Config
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}

	logger := opts.Stores.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sink := opts.Metrics
	if sink == nil {
		sink = metrics.Discard
	}

	var limiters *limiterCache
	if cfg.RatePerMinute > 0 {
		limiters = newLimiterCache(rate.Limit(cfg.RatePerMinute/60), cfg.Burst)
	}

	return &ChatService{
		providers: providers,
		log:       opts.Stores.Log,
		credits:   opts.Stores.Credits,
		logger:    logger.With("component", "chat_service"),
		cfg:       cfg,
		limiters:  limiters,
		metrics:   sink,
		now:       time.Now,
	}, nil
}

// MustNewChatService constructs a ChatService and panics on error.
func MustNewChatService(opts ChatServiceOptions) *ChatService {
	svc, err := NewChatService(opts)
	if err != nil {
		panic(err) //nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
	}
	return svc
}

// Providers returns the registered provider names in lexical order.
func (s *ChatService) Providers() []string {
	out := make([]string, 0, len(s.providers))
	for name := range s.providers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// HasProvider reports whether name is registered.
func (s *ChatService) HasProvider(name string) bool {
	_, ok := s.providers[name]
	return ok
}

// SendInput is one chat request from a signed-in user.
type SendInput struct {
	User     domainauth.User
	Provider string
	Message  string
}

// Send relays the message and returns the recorded exchange.
func (s *ChatService) Send(ctx context.Context, in SendInput) (*chat.Exchange, error) {
	if in.User.ID == "" {
		return nil, errors.New("user ID is required")
	}
	msg, err := chat.NormalizeMessage(in.Message)
	if err != nil {
		return nil, err
	}
	provider, ok := s.providers[in.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, in.Provider)
	}
	if s.limiters != nil && !s.limiters.get(in.User.ID).Allow() {
		s.record(in.Provider, metrics.ResultRateLimited, 0, nil)
		return nil, ErrRateLimited
	}

	balance, err := s.credits.Charge(ctx, in.User.ID, s.cfg.CreditsPerMessage)
	if err != nil {
		if errors.Is(err, ErrInsufficientCredits) {
			s.record(in.Provider, metrics.ResultInsufficientCredits, 0, nil)
		}
		return nil, err
	}

	history, err := s.history(ctx, in.User.ID, in.Provider)
	if err != nil {
		s.logger.WarnContext(ctx, "load chat history failed", "user_id", in.User.ID, "error", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	started := s.now()
	reply, err := provider.Complete(callCtx, ports.CompletionRequest{
		UserID:  in.User.ID,
		Message: msg,
		History: history,
	})
	if err != nil {
		if refundErr := s.credits.Refund(context.WithoutCancel(ctx), in.User.ID, s.cfg.CreditsPerMessage); refundErr != nil {
			s.logger.ErrorContext(ctx, "refund after provider failure", "user_id", in.User.ID, "error", refundErr)
		}
		s.logger.WarnContext(ctx, "chat provider failed",
			"provider", in.Provider, "user_id", in.User.ID, "duration", s.now().Sub(started), "error", err)
		s.record(in.Provider, metrics.ResultProviderFailed, s.now().Sub(started), err)
		return nil, fmt.Errorf("%w: %s: %w", ErrProviderFailed, in.Provider, err)
	}

	ex := &chat.Exchange{
		Prompt:  s.message(in, chat.SpeakerUser, msg, started),
		Reply:   s.message(in, chat.SpeakerAssistant, reply, s.now()),
		Charged: s.cfg.CreditsPerMessage,
		Balance: balance,
	}
	if err := s.log.Append(ctx, ex.Prompt, ex.Reply); err != nil {
		s.logger.ErrorContext(ctx, "append chat log", "user_id", in.User.ID, "error", err)
	}

	elapsed := s.now().Sub(started)
	s.logger.InfoContext(ctx, "chat exchange",
		"provider", in.Provider, "user_id", in.User.ID, "duration", elapsed, "balance", balance)
	metrics.RecordChat(s.metrics, metrics.ChatExchange{
		Provider: in.Provider,
		Result:   metrics.ResultOK,
		Duration: elapsed,
		Charged:  ex.Charged,
	})
	return ex, nil
}

func (s *ChatService) record(provider, result string, d time.Duration, err error) {
	metrics.RecordChat(s.metrics, metrics.ChatExchange{Provider: provider, Result: result, Duration: d, Err: err})
}

func (s *ChatService) message(in SendInput, who chat.Speaker, content string, at time.Time) chat.Message {
	return chat.Message{
		ID:        uuid.NewString(),
		UserID:    in.User.ID,
		UserEmail: in.User.Email,
		Provider:  in.Provider,
		Speaker:   who,
		Content:   content,
		CreatedAt: at.UTC(),
	}
}

// history returns earlier turns with provider, oldest first.
func (s *ChatService) history(ctx context.Context, userID, provider string) ([]chat.Message, error) {
	if s.cfg.HistoryTurns <= 0 {
		return nil, nil
	}
	recent, err := s.log.Recent(ctx, userID, s.cfg.HistoryTurns*2*len(s.providers))
	if err != nil {
		return nil, fmt.Errorf("recent messages: %w", err)
	}
	var out []chat.Message
	for _, m := range recent {
		if m.Provider != provider {
			continue
		}
		out = append(out, m)
		if len(out) == s.cfg.HistoryTurns*2 {
			break
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// Recent returns the user's newest messages, newest first.
func (s *ChatService) Recent(ctx context.Context, userID string, limit int) ([]chat.Message, error) {
	msgs, err := s.log.Recent(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent messages: %w", err)
	}
	return msgs, nil
}

// MessagesSent returns how many prompts the user has sent.
func (s *ChatService) MessagesSent(ctx context.Context, userID string) (int64, error) {
	n, err := s.log.Count(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return n, nil
}

// limiterCache holds one token bucket per user. Buckets idle long enough to
// have refilled completely are dropped, since a fresh bucket behaves the same.
type limiterCache struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	rate      rate.Limit
	burst     int
	idleTTL   time.Duration
	nextSweep time.Time
	now       func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// minLimiterIdle keeps slow-refilling buckets from being swept too eagerly.
const minLimiterIdle = 10 * time.Minute

func newLimiterCache(r rate.Limit, burst int) *limiterCache {
	idle := minLimiterIdle
	if r > 0 {
		if refill := time.Duration(float64(burst) / float64(r) * float64(time.Second)); refill > idle {
			idle = refill
		}
	}
	return &limiterCache{
		limiters: make(map[string]*limiterEntry),
		rate:     r,
		burst:    burst,
		idleTTL:  idle,
		now:      time.Now,
	}
}

func (lc *limiterCache) get(key string) *rate.Limiter {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	now := lc.now()
	lc.sweep(now)
	if e, ok := lc.limiters[key]; ok {
		e.lastSeen = now
		return e.limiter
	}
	e := &limiterEntry{limiter: rate.NewLimiter(lc.rate, lc.burst), lastSeen: now}
	lc.limiters[key] = e
	return e.limiter
}

// sweep drops idle buckets at most once per idleTTL. Callers hold mu.
func (lc *limiterCache) sweep(now time.Time) {
	if now.Before(lc.nextSweep) {
		return
	}
	lc.nextSweep = now.Add(lc.idleTTL)
	for k, e := range lc.limiters {
		if now.Sub(e.lastSeen) >= lc.idleTTL {
			delete(lc.limiters, k)
		}
	}
}

func (lc *limiterCache) size() int {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return len(lc.limiters)
}
