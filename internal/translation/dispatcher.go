package translation

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/avrentals/backend/internal/metrics"
	"github.com/avrentals/backend/internal/provider"
)

// DispatcherConfig bounds a single dispatch wave.
type DispatcherConfig struct {
	MaxChunkSize int           // hard cap on texts per provider call
	CallTimeout  time.Duration // per provider call
	MaxRetries   int           // extra attempts on transient failure, same credential
	RetryDelay   time.Duration // fixed delay between those attempts
}

// BatchDispatcher turns a set of untranslated texts into provider calls:
// it splits the set into numbered-prompt chunks, spreads the chunks across
// whatever credentials the limiter will hand out, and write-through persists
// every resolved pair. A chunk that cannot be fully resolved degrades to
// source text; the caller always gets a complete result map, never an error.
type BatchDispatcher struct {
	provider provider.Provider
	limiter  *CredentialRateLimiter
	store    *Store
	cache    *MemoryCache
	cfg      DispatcherConfig
}

// NewBatchDispatcher creates a dispatcher. Zero config fields get defaults.
func NewBatchDispatcher(p provider.Provider, limiter *CredentialRateLimiter, store *Store, cache *MemoryCache, cfg DispatcherConfig) *BatchDispatcher {
	if cfg.MaxChunkSize <= 0 {
		cfg.MaxChunkSize = 10
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 20 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	return &BatchDispatcher{provider: p, limiter: limiter, store: store, cache: cache, cfg: cfg}
}

// Dispatch resolves texts against the provider and returns a map holding an
// entry for every distinct input. Degraded entries map to their own source
// text.
func (d *BatchDispatcher) Dispatch(ctx context.Context, texts []string, lang string) map[string]string {
	results := make(map[string]string, len(texts))

	// Dedupe preserving first-seen order, and prefill with the identity
	// fallback so every caller key resolves no matter what happens below.
	var distinct []string
	for _, t := range texts {
		if _, seen := results[t]; seen {
			continue
		}
		results[t] = t
		distinct = append(distinct, t)
	}
	if len(distinct) == 0 {
		return results
	}

	// Waves: each pass spends whatever window budget the credentials have
	// right now. Texts that could not be attempted because every assigned
	// credential ran dry carry over to the next wave, which blocks on the
	// limiter until a window resets or a cooldown ends.
	var mu sync.Mutex
	pending := distinct
	for len(pending) > 0 {
		creds, err := d.limiter.WaitAvailable(ctx)
		if err != nil {
			infoLog("dispatch abandoned waiting for credentials: %v", err)
			metrics.TranslationsServedTotal.WithLabelValues("fallback").Add(float64(len(pending)))
			break
		}
		pending = d.runWave(ctx, creds, pending, lang, results, &mu)
	}

	return results
}

// runWave makes one pass over texts with the credentials available at the
// start of the wave. Every chunk acquires a call slot from the limiter before
// it fires; a credential that runs out of budget or enters cooldown mid-wave
// stops immediately and its unattempted texts come back for the next wave.
func (d *BatchDispatcher) runWave(ctx context.Context, creds []Credential, texts []string, lang string, results map[string]string, mu *sync.Mutex) []string {
	chunks := d.chunk(texts, len(creds))
	debugLog("dispatching %d texts to %s in %d chunks across %d credentials",
		len(texts), lang, len(chunks), len(creds))

	// One worker per credential, each draining its own chunk queue in order.
	// Chunks go round-robin so load stays even when chunk counts differ.
	perCred := make([][][]string, len(creds))
	for i, c := range chunks {
		w := i % len(creds)
		perCred[w] = append(perCred[w], c)
	}

	var leftover []string
	g, gctx := errgroup.WithContext(ctx)
	for w := range creds {
		cred := creds[w]
		assigned := perCred[w]
		if len(assigned) == 0 {
			continue
		}
		g.Go(func() error {
			for i, chunk := range assigned {
				if !d.limiter.Acquire(cred.ID) {
					debugLog("credential %s out of budget, deferring %d chunks", cred.ID, len(assigned)-i)
					mu.Lock()
					for _, rest := range assigned[i:] {
						leftover = append(leftover, rest...)
					}
					mu.Unlock()
					return nil
				}
				translated, ok := d.translateChunk(gctx, cred, chunk, lang)
				if !ok {
					metrics.ChunksDegradedTotal.Inc()
					metrics.TranslationsServedTotal.WithLabelValues("fallback").Add(float64(len(chunk)))
					continue
				}
				mu.Lock()
				for j, text := range chunk {
					results[text] = translated[j]
				}
				mu.Unlock()
				metrics.TranslationsServedTotal.WithLabelValues("provider").Add(float64(len(chunk)))
				d.persist(gctx, chunk, translated, lang)
			}
			return nil
		})
	}
	g.Wait()

	return leftover
}

// chunk splits texts so each available credential gets roughly one chunk,
// capped by MaxChunkSize.
func (d *BatchDispatcher) chunk(texts []string, credCount int) [][]string {
	size := (len(texts) + credCount - 1) / credCount
	if size > d.cfg.MaxChunkSize {
		size = d.cfg.MaxChunkSize
	}
	if size < 1 {
		size = 1
	}

	var chunks [][]string
	for start := 0; start < len(texts); start += size {
		end := start + size
		if end > len(texts) {
			end = len(texts)
		}
		chunks = append(chunks, texts[start:end])
	}
	return chunks
}

// translateChunk runs one chunk against one credential, retrying transient
// failures a bounded number of times. The caller has already acquired the
// slot for the first attempt; each retry acquires its own, and a retry that
// finds the window spent degrades instead of overdrawing it. It reports
// ok=false when the chunk must degrade; partial replies degrade the whole
// chunk rather than mixing translated and fallback slots from one call.
func (d *BatchDispatcher) translateChunk(ctx context.Context, cred Credential, chunk []string, lang string) ([]string, bool) {
	for attempt := 0; ; attempt++ {
		if attempt > 0 && !d.limiter.Acquire(cred.ID) {
			debugLog("no budget left on credential %s to retry chunk of %d", cred.ID, len(chunk))
			return nil, false
		}

		callCtx, cancel := context.WithTimeout(ctx, d.cfg.CallTimeout)
		translated, err := d.provider.TranslateBatch(callCtx, cred.APIKey, chunk, lang)
		cancel()

		if err == nil {
			if !provider.Complete(translated) {
				debugLog("chunk of %d came back incomplete, degrading", len(chunk))
				return nil, false
			}
			return translated, true
		}

		if provider.IsThrottled(err) {
			d.limiter.RecordThrottled(cred.ID, provider.RetryAfter(err))
			return nil, false
		}

		if provider.IsRetryable(err) && attempt < d.cfg.MaxRetries {
			debugLog("transient provider failure on credential %s (attempt %d): %v", cred.ID, attempt+1, err)
			select {
			case <-ctx.Done():
				return nil, false
			case <-time.After(d.cfg.RetryDelay):
			}
			continue
		}

		infoLog("chunk of %d failed on credential %s: %v", len(chunk), cred.ID, err)
		return nil, false
	}
}

// persist write-throughs resolved pairs to the store and memory cache.
// Identical output means the provider had nothing to translate; those pairs
// are never persisted so a better translation can still land later.
func (d *BatchDispatcher) persist(ctx context.Context, chunk, translated []string, lang string) {
	for i, text := range chunk {
		if translated[i] == text {
			continue
		}
		if d.cache != nil {
			d.cache.Set(text, lang, translated[i])
		}
		if d.store != nil {
			if err := d.store.Upsert(ctx, text, lang, translated[i], d.provider.Model()); err != nil {
				debugLog("upsert failed for %q -> %s: %v", truncateText(text, 40), lang, err)
			}
		}
	}
}
