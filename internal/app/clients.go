package app

import (
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/winnie-backend/internal/platform/envutil"
	"github.com/yungbote/winnie-backend/internal/platform/logger"
	"github.com/yungbote/winnie-backend/internal/platform/openai"
	"github.com/yungbote/winnie-backend/internal/platform/pinecone"
	"github.com/yungbote/winnie-backend/internal/platform/rediscache"
)

// Clients holds the external integrations. Every field is optional: a nil
// client switches its feature to the static fallback path.
type Clients struct {
	LLM         openai.Client
	VectorStore pinecone.VectorStore
	Cache       rediscache.Cache
	Redis       goredis.UniversalClient
}

var (
	newOpenAIClient        = openai.NewClient
	newPineconeClient      = pinecone.New
	newPineconeVectorStore = pinecone.NewVectorStore
	newRedisCache          = rediscache.New
)

func wireClients(log *logger.Logger) Clients {
	log.Info("Wiring clients...")
	var out Clients

	// OpenAI
	if strings.TrimSpace(envutil.String("OPENAI_API_KEY", "")) == "" {
		log.Warn("OPENAI_API_KEY not set; meal plans and chat use static fallbacks")
	} else if c, err := newOpenAIClient(log); err != nil {
		log.Warn("OpenAI client init failed; using static fallbacks", "error", err)
	} else {
		out.LLM = c
	}

	// Pinecone
	out.VectorStore = wireVectorStore(log)

	// Redis
	if envutil.String("REDIS_ADDR", "") == "" {
		log.Info("REDIS_ADDR not set; research cache disabled")
	} else if cache, rdb, err := newRedisCache(log); err != nil {
		log.Warn("Redis unavailable; research cache disabled", "error", err)
	} else {
		out.Cache, out.Redis = cache, rdb
	}
	return out
}

// wireVectorStore binds the research index. Research stays disabled when
// Pinecone is not configured or the index cannot be resolved.
func wireVectorStore(log *logger.Logger) pinecone.VectorStore {
	apiKey := envutil.String("PINECONE_API_KEY", "")
	if apiKey == "" {
		log.Warn("PINECONE_API_KEY not set; research context disabled")
		return nil
	}
	pc, err := newPineconeClient(log, pinecone.Config{
		APIKey:     apiKey,
		APIVersion: envutil.String("PINECONE_API_VERSION", ""),
		BaseURL:    envutil.String("PINECONE_BASE_URL", ""),
	})
	if err != nil {
		log.Warn("Pinecone client init failed; research context disabled", "error", err)
		return nil
	}
	vs, err := newPineconeVectorStore(log, pc)
	if err != nil {
		log.Warn("Pinecone index unavailable; research context disabled", "error", err)
		return nil
	}
	return instrumentVectorStore(vs)
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Cache != nil {
		_ = c.Cache.Close()
	}
}
