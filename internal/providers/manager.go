package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"legaldoc/internal/config"

	"go.uber.org/zap"
)

type NamedLLMProvider struct {
	Ref      ProviderRef
	Provider LLMProvider
}

// Manager walks the configured chain in order. A provider that fails with a
// quota or rate error is skipped until its cooldown expires. The mock provider
// only answers for chains without a real provider: once a real provider is in
// play its failure is returned so the caller can fall back.
type Manager struct {
	llmProviders []NamedLLMProvider
	cooldown     time.Duration
	log          *zap.Logger
	now          func() time.Time

	mu            sync.Mutex
	disabledUntil map[int]time.Time
	closers       []func() error
}

// NewManager builds every provider in cfg.LLMProviders. Clients keep the
// context they were built with for credential refresh, so ctx is detached from
// its deadline and cancellation.
func NewManager(ctx context.Context, cfg config.Config, log *zap.Logger) (*Manager, error) {
	if log == nil {
		log = zap.NewNop()
	}
	ctx = context.WithoutCancel(ctx)
	m := &Manager{
		cooldown:      cfg.ProviderCooldown,
		log:           log,
		now:           time.Now,
		disabledUntil: map[int]time.Time{},
	}
	for _, ref := range ParseProviderList(cfg.LLMProviders) {
		p, err := m.buildProvider(ctx, ref, cfg)
		if err != nil {
			m.Close()
			return nil, err
		}
		m.llmProviders = append(m.llmProviders, NamedLLMProvider{Ref: ref, Provider: p})
	}
	return m, nil
}

// NewManagerWith wraps already-built providers, mainly for tests.
func NewManagerWith(log *zap.Logger, cooldown time.Duration, ps ...NamedLLMProvider) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		llmProviders:  ps,
		cooldown:      cooldown,
		log:           log,
		now:           time.Now,
		disabledUntil: map[int]time.Time{},
	}
}

func (m *Manager) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	if len(m.llmProviders) == 0 {
		return GenerateResponse{}, ProviderInfo{}, ErrNoProviders
	}
	var errs []error
	realSeen := false
	for _, i := range m.PreferredLLMOrder() {
		np := m.llmProviders[i]
		if np.Ref.Name == "mock" {
			if realSeen {
				continue
			}
		} else {
			realSeen = true
		}
		if m.disabled(i) {
			continue
		}
		resp, info, err := np.Provider.Generate(ctx, req)
		if err == nil {
			return resp, info, nil
		}
		kind := ClassifyError(err)
		m.log.Warn("llm provider failed",
			zap.String("provider", np.Ref.Raw),
			zap.String("operation", req.Operation),
			zap.String("error_type", string(kind)),
			zap.Error(err),
		)
		errs = append(errs, err)
		if cooldownWorthy(kind) {
			m.disable(i)
		}
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return GenerateResponse{}, ProviderInfo{}, fmt.Errorf("all providers cooling down: %w", ErrNoProviders)
	}
	return GenerateResponse{}, ProviderInfo{}, errors.Join(errs...)
}

func (m *Manager) LLMCount() int {
	return len(m.llmProviders)
}

func (m *Manager) Names() []string {
	out := make([]string, 0, len(m.llmProviders))
	for _, p := range m.llmProviders {
		out = append(out, p.Ref.Raw)
	}
	return out
}

// PreferredLLMOrder keeps configured order but always tries mock last.
func (m *Manager) PreferredLLMOrder() []int {
	return preferredOrder(len(m.llmProviders), func(i int) string { return m.llmProviders[i].Ref.Name })
}

func preferredOrder(n int, nameAt func(i int) string) []int {
	if n <= 0 {
		return nil
	}
	out := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if nameAt(i) != "mock" {
			out = append(out, i)
		}
	}
	for i := 0; i < n; i++ {
		if nameAt(i) == "mock" {
			out = append(out, i)
		}
	}
	return out
}

func (m *Manager) Close() {
	for _, c := range m.closers {
		_ = c()
	}
	m.closers = nil
}

func (m *Manager) disabled(i int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	until, ok := m.disabledUntil[i]
	return ok && m.now().Before(until)
}

func (m *Manager) disable(i int) {
	if m.cooldown <= 0 {
		return
	}
	m.mu.Lock()
	m.disabledUntil[i] = m.now().Add(m.cooldown)
	m.mu.Unlock()
}

func (m *Manager) buildProvider(ctx context.Context, ref ProviderRef, cfg config.Config) (LLMProvider, error) {
	model := func(def string) string {
		if ref.Model != "" {
			return ref.Model
		}
		return def
	}
	switch strings.ToLower(ref.Name) {
	case "mock":
		return NewMockProvider(), nil
	case "gemini":
		p, err := NewGeminiProvider(ctx, cfg.GeminiProjectID, cfg.GeminiRegion, model(cfg.GeminiModel))
		if err != nil {
			return nil, err
		}
		m.closers = append(m.closers, p.Close)
		return p, nil
	case "openai":
		return NewOpenAIProvider("openai", cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, model(cfg.OpenAIModel)), nil
	case "groq":
		return NewGroqProvider(cfg.GroqAPIKey, model(cfg.GroqModel)), nil
	case "ollama":
		return NewOllamaProvider(cfg.OllamaBaseURL, model(cfg.OllamaModel)), nil
	case "anthropic":
		return NewAnthropicProvider(cfg.AnthropicAPIKey, model(cfg.AnthropicModel)), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", ref.Name)
	}
}
