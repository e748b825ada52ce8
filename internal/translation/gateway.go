package translation

import (
	"context"
	"strings"

	"github.com/avrentals/backend/internal/metrics"
)

// Gateway is the single entry point callers use to resolve translations. It
// layers the lookups: memory cache, then the durable store, then a provider
// dispatch, with in-flight deduplication so concurrent requests for the same
// pair cost one resolution. Resolution never returns an error: the worst
// outcome is the source text itself.
type Gateway struct {
	cache      *MemoryCache
	store      *Store
	inflight   *InFlightRegistry
	dispatcher *BatchDispatcher
	sourceLang string
}

// NewGateway wires the pipeline. sourceLang is the language source texts are
// authored in; requests for it pass through untouched.
func NewGateway(cache *MemoryCache, store *Store, dispatcher *BatchDispatcher, sourceLang string) *Gateway {
	if sourceLang == "" {
		sourceLang = "en"
	}
	return &Gateway{
		cache:      cache,
		store:      store,
		inflight:   NewInFlightRegistry(),
		dispatcher: dispatcher,
		sourceLang: sourceLang,
	}
}

// passthrough reports whether a request needs no translation at all.
func (g *Gateway) passthrough(text, lang string) bool {
	return lang == "" || lang == g.sourceLang || strings.TrimSpace(text) == ""
}

// TranslateOne resolves a single (text, lang) pair. Always returns a usable
// string; on any failure downstream the source text comes back unchanged.
func (g *Gateway) TranslateOne(ctx context.Context, text, lang string) string {
	if g.passthrough(text, lang) {
		metrics.TranslationsServedTotal.WithLabelValues("passthrough").Inc()
		return text
	}

	if cached, ok := g.cache.Get(text, lang); ok {
		metrics.TranslationsServedTotal.WithLabelValues("memory").Inc()
		return cached
	}

	call, leader := g.inflight.Acquire(text, lang)
	if !leader {
		return call.Wait(ctx, text)
	}

	result := g.resolveOne(ctx, text, lang)
	g.inflight.Complete(text, lang, result)
	return result
}

// resolveOne is the leader's path: durable store first, provider second.
func (g *Gateway) resolveOne(ctx context.Context, text, lang string) string {
	rec, err := g.store.FindOne(ctx, text, lang)
	if err != nil {
		infoLog("store lookup failed for %q -> %s: %v", truncateText(text, 40), lang, err)
		return text
	}
	if rec != nil {
		g.cache.Set(text, lang, rec.TranslatedText)
		metrics.TranslationsServedTotal.WithLabelValues("store").Inc()
		return rec.TranslatedText
	}

	return g.dispatcher.Dispatch(ctx, []string{text}, lang)[text]
}

// TranslateMany resolves a batch for one target language. The output is
// positional: one entry per input, in input order, with duplicate inputs
// collapsing to one lookup but still duplicated in the output. In progressive
// mode, texts not already cached come back as source text immediately while
// resolution continues in the background; the next request picks up the
// cached results.
func (g *Gateway) TranslateMany(ctx context.Context, texts []string, lang string, progressive bool) []string {
	out := make([]string, len(texts))

	if lang == "" || lang == g.sourceLang {
		copy(out, texts)
		metrics.TranslationsServedTotal.WithLabelValues("passthrough").Add(float64(len(texts)))
		return out
	}

	resolved := make(map[string]string, len(texts))
	var misses []string
	for _, t := range texts {
		if _, seen := resolved[t]; seen {
			continue
		}
		if strings.TrimSpace(t) == "" {
			resolved[t] = t
			metrics.TranslationsServedTotal.WithLabelValues("passthrough").Inc()
			continue
		}
		if cached, ok := g.cache.Get(t, lang); ok {
			resolved[t] = cached
			metrics.TranslationsServedTotal.WithLabelValues("memory").Inc()
			continue
		}
		resolved[t] = t
		misses = append(misses, t)
	}

	if len(misses) > 0 {
		if progressive {
			// Resolve off the request: the response ships fallbacks for
			// the misses and the resolved pairs land in cache for the
			// next call. The request context dies with the response, so
			// use a fresh one.
			go g.resolveMany(context.Background(), misses, lang)
		} else {
			for text, translated := range g.resolveMany(ctx, misses, lang) {
				resolved[text] = translated
			}
		}
	}

	// Reassemble positionally: every input index gets its text's result.
	for i, t := range texts {
		out[i] = resolved[t]
	}
	return out
}

// resolveMany claims every miss up front, resolves the claimed ones with one
// store query plus one dispatch wave, and waits out the keys some other
// request is already resolving.
func (g *Gateway) resolveMany(ctx context.Context, texts []string, lang string) map[string]string {
	results := make(map[string]string, len(texts))

	var leaders []string
	followers := make(map[string]*InFlightCall)
	for _, t := range texts {
		call, leader := g.inflight.Acquire(t, lang)
		if leader {
			leaders = append(leaders, t)
		} else {
			followers[t] = call
		}
	}

	if len(leaders) > 0 {
		resolved := g.resolveLeaders(ctx, leaders, lang)
		for _, t := range leaders {
			r, ok := resolved[t]
			if !ok {
				r = t
			}
			results[t] = r
			g.inflight.Complete(t, lang, r)
		}
	}

	for t, call := range followers {
		results[t] = call.Wait(ctx, t)
	}
	return results
}

func (g *Gateway) resolveLeaders(ctx context.Context, texts []string, lang string) map[string]string {
	stored, err := g.store.FindMany(ctx, texts, lang)
	if err != nil {
		infoLog("bulk store lookup failed for %d texts -> %s: %v", len(texts), lang, err)
		stored = map[string]string{}
	}

	var missing []string
	for _, t := range texts {
		if translated, ok := stored[t]; ok {
			g.cache.Set(t, lang, translated)
			metrics.TranslationsServedTotal.WithLabelValues("store").Inc()
		} else {
			missing = append(missing, t)
		}
	}

	if len(missing) == 0 {
		return stored
	}

	for t, translated := range g.dispatcher.Dispatch(ctx, missing, lang) {
		stored[t] = translated
	}
	return stored
}

// Invalidate clears cached entries, optionally scoped to one language. The
// durable store is untouched; entries repopulate from it on the next lookup.
func (g *Gateway) Invalidate(lang string) {
	g.cache.Invalidate(lang)
}

// Evict removes one cached pair. Used after admin edits so the next lookup
// sees the updated record.
func (g *Gateway) Evict(text, lang string) {
	g.cache.Delete(text, lang)
}

// Preload warms the memory cache from the durable store. Returns the number
// of entries loaded.
func (g *Gateway) Preload(ctx context.Context) (int, error) {
	recs, err := g.store.All(ctx)
	if err != nil {
		return 0, err
	}
	for i := range recs {
		g.cache.Set(recs[i].SourceText, recs[i].TargetLang, recs[i].TranslatedText)
	}
	infoLog("preloaded %d translations into memory cache", len(recs))
	return len(recs), nil
}

// CacheStats reports the in-process side of the pipeline.
type CacheStats struct {
	MemoryEntries int `json:"memoryEntries"`
	InFlight      int `json:"inFlight"`
}

// Stats returns cache and store statistics for the stats endpoint.
func (g *Gateway) Stats(ctx context.Context) (CacheStats, *StoreStats, error) {
	cs := CacheStats{MemoryEntries: g.cache.Len(), InFlight: g.inflight.Len()}
	ss, err := g.store.Stats(ctx)
	return cs, ss, err
}
