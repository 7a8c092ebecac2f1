package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/winnie-backend/internal/nutrition"
	"github.com/yungbote/winnie-backend/internal/nutrition/prompts"
	"github.com/yungbote/winnie-backend/internal/observability"
	"github.com/yungbote/winnie-backend/internal/platform/logger"
	"github.com/yungbote/winnie-backend/internal/platform/pinecone"
	"github.com/yungbote/winnie-backend/internal/platform/rediscache"
)

const (
	DefaultResearchTopK     = 2
	DefaultResearchTimeout  = 5 * time.Second
	DefaultResearchCacheTTL = time.Hour
	researchStatusQuery     = "PCOS nutrition diet anti-inflammatory women hormones"
)

// Embedder is the slice of the LLM client used to vectorize queries.
type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

type ResearchConfig struct {
	Namespace string
	TopK      int
	Timeout   time.Duration
	CacheTTL  time.Duration
}

type ResearchStatus struct {
	Success           bool   `json:"success"`
	HasData           bool   `json:"hasData"`
	SampleResultCount int    `json:"sampleResultCount"`
	Message           string `json:"message"`
}

// ResearchDocument is one retrieved article. Matches without content are
// never returned.
type ResearchDocument struct {
	Title         string `json:"title"`
	Content       string `json:"content"`
	Source        string `json:"source,omitempty"`
	PublishedDate string `json:"publishedDate,omitempty"`
}

type ResearchService interface {
	// Context returns the formatted evidence block for query, or "" when
	// research is disabled, slow, failing or finds nothing.
	Context(ctx context.Context, query string) string
	// Search returns up to topK documents for query under the lookup timeout.
	// It returns nothing when research is disabled.
	Search(ctx context.Context, query string, topK int) ([]ResearchDocument, error)
	Status(ctx context.Context) ResearchStatus
	Enabled() bool
}

type researchService struct {
	log      *logger.Logger
	embedder Embedder
	store    pinecone.VectorStore
	cache    rediscache.Cache
	cfg      ResearchConfig
}

// NewResearchService wires the research lookup. A nil embedder or store
// disables it; a nil cache disables caching only.
func NewResearchService(log *logger.Logger, embedder Embedder, store pinecone.VectorStore, cache rediscache.Cache, cfg ResearchConfig) ResearchService {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultResearchTopK
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultResearchTimeout
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultResearchCacheTTL
	}
	return &researchService{
		log:      log.With("service", "ResearchService"),
		embedder: embedder,
		store:    store,
		cache:    cache,
		cfg:      cfg,
	}
}

// ResearchQuery is the search text used for a meal plan request.
func ResearchQuery(conds []nutrition.ConditionTag, cuisine string, phase nutrition.Phase) string {
	return fmt.Sprintf("nutrition diet meal planning %s %s seed cycling menstrual cycle %s",
		strings.Join(nutrition.TagStrings(conds), " "), cuisine, phase)
}

func (rs *researchService) Enabled() bool {
	return rs.embedder != nil && rs.store != nil
}

func (rs *researchService) Context(ctx context.Context, query string) string {
	m := observability.Current()
	if !rs.Enabled() {
		m.ObserveResearch("disabled")
		return ""
	}
	key := cacheKey(query)
	if rs.cache != nil {
		if v, ok, err := rs.cache.Get(ctx, key); err == nil && ok {
			m.ObserveResearch("cache_hit")
			return v
		} else if err != nil {
			rs.log.Debug("Research cache read failed", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, rs.cfg.Timeout)
	defer cancel()
	ctx, span := observability.StartSpan(ctx, "research.search")
	defer span.End()

	docs, err := rs.search(ctx, query, rs.cfg.TopK)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		rs.log.Warn("Research lookup timed out", "timeout", rs.cfg.Timeout.String())
		m.ObserveResearch("timeout")
		return ""
	case err != nil:
		rs.log.Warn("Research lookup failed", "error", err)
		m.ObserveResearch("error")
		return ""
	case len(docs) == 0:
		m.ObserveResearch("empty")
		return ""
	}

	items := make([]prompts.ResearchItem, 0, len(docs))
	for _, d := range docs {
		items = append(items, prompts.ResearchItem{Title: d.Title, Content: d.Content})
	}
	out := prompts.FormatResearch(items)
	if rs.cache != nil {
		if err := rs.cache.Set(context.WithoutCancel(ctx), key, out, rs.cfg.CacheTTL); err != nil {
			rs.log.Debug("Research cache write failed", "error", err)
		}
	}
	m.ObserveResearch("hit")
	return out
}

func (rs *researchService) Search(ctx context.Context, query string, topK int) ([]ResearchDocument, error) {
	if !rs.Enabled() {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, rs.cfg.Timeout)
	defer cancel()
	return rs.search(ctx, query, topK)
}

func (rs *researchService) search(ctx context.Context, query string, topK int) ([]ResearchDocument, error) {
	vecs, err := rs.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) == 0 || len(vecs[0]) == 0 {
		return nil, fmt.Errorf("embed query: empty embedding")
	}
	matches, err := rs.store.QueryMatches(ctx, rs.cfg.Namespace, vecs[0], topK, nil)
	if err != nil {
		return nil, fmt.Errorf("query vectors: %w", err)
	}
	docs := make([]ResearchDocument, 0, len(matches))
	for _, mt := range matches {
		content := metaString(mt.Metadata, "content")
		if content == "" {
			continue
		}
		title := metaString(mt.Metadata, "title")
		if title == "" {
			title = "Research Article"
		}
		docs = append(docs, ResearchDocument{
			Title:         title,
			Content:       content,
			Source:        metaString(mt.Metadata, "source"),
			PublishedDate: metaString(mt.Metadata, "publishedDate"),
		})
	}
	return docs, nil
}

func (rs *researchService) Status(ctx context.Context) ResearchStatus {
	if !rs.Enabled() {
		return ResearchStatus{Message: "Research service unavailable"}
	}
	ctx, cancel := context.WithTimeout(ctx, rs.cfg.Timeout)
	defer cancel()
	items, err := rs.search(ctx, researchStatusQuery, 3)
	if err != nil {
		rs.log.Warn("Research status lookup failed", "error", err)
		return ResearchStatus{Message: "Research service unavailable"}
	}
	msg := "Research database is empty"
	if len(items) > 0 {
		msg = "Research database is ready"
	}
	return ResearchStatus{
		Success:           true,
		HasData:           len(items) > 0,
		SampleResultCount: len(items),
		Message:           msg,
	}
}

func metaString(meta map[string]any, key string) string {
	if v, ok := meta[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func cacheKey(query string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(query))))
	return "research:" + hex.EncodeToString(sum[:])
}
