package translation

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/avrentals/backend/internal/metrics"
	"github.com/avrentals/backend/internal/models"
)

// ErrDuplicate is returned by Create when a record for the same
// (sourceText, targetLang) pair already exists.
var ErrDuplicate = errors.New("translation already exists for this source text and language")

// Store is the durable side of the cache: gorm-backed lookup and upsert over
// the translations table. All writes are idempotent upserts keyed by the
// uniqueness invariant, so no cross-process locking is needed.
type Store struct {
	db    *gorm.DB
	usage *UsageRecorder
}

// NewStore creates a store. usage may be nil; hit metadata is then skipped.
func NewStore(db *gorm.DB, usage *UsageRecorder) *Store {
	return &Store{db: db, usage: usage}
}

// FindOne looks up a single pair. Absent is (nil, nil), not an error.
// On hit, the usage counters are queued in the background; the read path
// never waits for metadata writes.
func (s *Store) FindOne(ctx context.Context, text, lang string) (*models.Translation, error) {
	if s.db == nil {
		return nil, nil
	}

	var rec models.Translation
	err := s.db.WithContext(ctx).
		Where("source_text = ? AND target_lang = ?", text, lang).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.StoreMisses.Inc()
			return nil, nil
		}
		return nil, err
	}

	metrics.StoreHits.Inc()
	if s.usage != nil {
		s.usage.RecordHit(rec.ID)
	}
	return &rec, nil
}

// FindMany looks up many pairs with a single query and returns the subset
// that exists, keyed by source text.
func (s *Store) FindMany(ctx context.Context, texts []string, lang string) (map[string]string, error) {
	results := make(map[string]string)
	if s.db == nil || len(texts) == 0 {
		return results, nil
	}

	var recs []models.Translation
	err := s.db.WithContext(ctx).
		Where("source_text IN ? AND target_lang = ?", texts, lang).
		Find(&recs).Error
	if err != nil {
		return results, err
	}

	for i := range recs {
		results[recs[i].SourceText] = recs[i].TranslatedText
		if s.usage != nil {
			s.usage.RecordHit(recs[i].ID)
		}
	}

	metrics.StoreHits.Add(float64(len(recs)))
	metrics.StoreMisses.Add(float64(len(texts) - len(recs)))
	return results, nil
}

// Upsert persists a provider-resolved pair. A concurrent insert race on the
// same key resolves to one winner and any number of no-ops: the existing
// record wins and the conflict never surfaces to the caller.
func (s *Store) Upsert(ctx context.Context, text, lang, translated, providerModel string) error {
	if s.db == nil {
		return nil
	}

	rec := models.Translation{
		SourceText:       text,
		TargetLang:       lang,
		TranslatedText:   translated,
		ProviderModel:    providerModel,
		Status:           models.StatusApproved,
		IsAutoTranslated: true,
	}

	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "source_text"}, {Name: "target_lang"}},
		DoNothing: true,
	}).Create(&rec).Error
}

// All streams every persisted pair, for warming the memory cache at startup.
// Only the columns the cache needs are selected.
func (s *Store) All(ctx context.Context) ([]models.Translation, error) {
	if s.db == nil {
		return nil, nil
	}

	var recs []models.Translation
	err := s.db.WithContext(ctx).
		Select("source_text", "target_lang", "translated_text").
		Find(&recs).Error
	return recs, err
}

// StoreStats summarizes the persisted cache for the stats endpoint.
type StoreStats struct {
	TotalTranslations int64            `json:"totalTranslations"`
	TotalUsage        int64            `json:"totalUsage"`
	ByLanguage        map[string]int64 `json:"byLanguage"`
}

// Stats counts persisted records overall and per target language.
func (s *Store) Stats(ctx context.Context) (*StoreStats, error) {
	stats := &StoreStats{ByLanguage: make(map[string]int64)}
	if s.db == nil {
		return stats, nil
	}

	if err := s.db.WithContext(ctx).Model(&models.Translation{}).Count(&stats.TotalTranslations).Error; err != nil {
		return nil, err
	}

	var usage struct{ TotalUsage int64 }
	if err := s.db.WithContext(ctx).Model(&models.Translation{}).
		Select("COALESCE(SUM(usage_count), 0) as total_usage").
		Scan(&usage).Error; err != nil {
		return nil, err
	}
	stats.TotalUsage = usage.TotalUsage

	type langCount struct {
		TargetLang string
		Count      int64
	}
	var byLang []langCount
	if err := s.db.WithContext(ctx).Model(&models.Translation{}).
		Select("target_lang, COUNT(*) as count").
		Group("target_lang").
		Scan(&byLang).Error; err != nil {
		return nil, err
	}
	for _, lc := range byLang {
		stats.ByLanguage[lc.TargetLang] = lc.Count
	}

	return stats, nil
}
