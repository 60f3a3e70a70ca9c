package dictionary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"legaldoc/internal/models"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const DefaultBaseURL = "https://api.dictionaryapi.dev"

type Options struct {
	BaseURL string
	Timeout time.Duration
	Cache   Cache
	TTL     time.Duration
	Client  *http.Client
	Logger  *zap.Logger
}

// Dictionary resolves a term against the public dictionary service first and
// the built-in legal glossary second. It never returns an error: every failure
// is reported as not found.
type Dictionary struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
	cache   Cache
	ttl     time.Duration
	log     *zap.Logger
	group   singleflight.Group
}

func New(opts Options) *Dictionary {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Cache == nil {
		opts.Cache = NewMemoryCache()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Dictionary{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		timeout: opts.Timeout,
		client:  opts.Client,
		cache:   opts.Cache,
		ttl:     opts.TTL,
		log:     opts.Logger,
	}
}

func Normalize(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

func (d *Dictionary) Lookup(ctx context.Context, term string) (models.TermLookupResult, bool) {
	term = Normalize(term)
	if term == "" {
		return models.TermLookupResult{}, false
	}
	if res, ok := d.cache.Get(ctx, term); ok {
		return res, true
	}
	// Concurrent callers asking for the same term share one upstream request.
	v, _, _ := d.group.Do(term, func() (any, error) {
		res, ok := d.resolve(context.WithoutCancel(ctx), term)
		if !ok {
			return nil, nil
		}
		if err := d.cache.Set(ctx, res, d.ttl); err != nil {
			d.log.Warn("cache definition failed", zap.String("term", term), zap.Error(err))
		}
		return res, nil
	})
	res, ok := v.(models.TermLookupResult)
	return res, ok
}

func (d *Dictionary) resolve(ctx context.Context, term string) (models.TermLookupResult, bool) {
	res, err := d.fetchExternal(ctx, term)
	if err == nil {
		return res, true
	}
	d.log.Debug("external definition unavailable", zap.String("term", term), zap.Error(err))
	return builtinLookup(term)
}

type entry struct {
	Meanings []struct {
		PartOfSpeech string `json:"partOfSpeech"`
		Definitions  []struct {
			Definition string `json:"definition"`
		} `json:"definitions"`
	} `json:"meanings"`
}

func (d *Dictionary) fetchExternal(ctx context.Context, term string) (models.TermLookupResult, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	endpoint := d.baseURL + "/api/v2/entries/en/" + url.PathEscape(term)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.TermLookupResult{}, fmt.Errorf("build dictionary request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := d.client.Do(req)
	if err != nil {
		return models.TermLookupResult{}, fmt.Errorf("dictionary request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return models.TermLookupResult{}, fmt.Errorf("dictionary status %d", resp.StatusCode)
	}
	var entries []entry
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&entries); err != nil {
		return models.TermLookupResult{}, fmt.Errorf("decode dictionary response: %w", err)
	}
	if len(entries) == 0 || len(entries[0].Meanings) == 0 {
		return models.TermLookupResult{}, fmt.Errorf("no meanings for %q", term)
	}
	first := entries[0].Meanings[0]
	def := ""
	if len(first.Definitions) > 0 {
		def = strings.TrimSpace(first.Definitions[0].Definition)
	}
	return models.TermLookupResult{
		Term:         term,
		Definition:   def,
		PartOfSpeech: first.PartOfSpeech,
		Source:       models.SourceDictionaryAPI,
	}, nil
}
