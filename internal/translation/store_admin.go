package translation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/avrentals/backend/internal/models"
)

// ListQuery is the admin list/search request.
type ListQuery struct {
	Page       int
	Limit      int
	Search     string
	TargetLang string
	Status     string // "" or "all" means any
	Category   string // "" or "all" means any
	SortBy     string
	SortOrder  string // "asc" or "desc"
}

// AdminStats is the aggregate block returned alongside admin listings.
type AdminStats struct {
	Total          int64            `json:"total"`
	ByStatus       map[string]int64 `json:"byStatus"`
	ByCategory     map[string]int64 `json:"byCategory"`
	AverageQuality int              `json:"averageQuality"`
	NeedsReview    int64            `json:"needsReview"`
	AutoTranslated int64            `json:"autoTranslated"`
	TotalUsage     int64            `json:"totalUsage"`
}

// ListResult is one page of admin results plus the aggregate stats.
type ListResult struct {
	Items []models.Translation `json:"translations"`
	Total int64                `json:"total"`
	Pages int                  `json:"pages"`
	Stats AdminStats           `json:"stats"`
}

// sortableColumns whitelists the record fields the admin UI may sort by, so
// user input never reaches the ORDER BY clause directly.
var sortableColumns = map[string]string{
	"sourceText":     "source_text",
	"targetLang":     "target_lang",
	"translatedText": "translated_text",
	"status":         "status",
	"category":       "category",
	"qualityScore":   "quality_score",
	"usageCount":     "usage_count",
	"version":        "version",
	"createdAt":      "created_at",
	"updatedAt":      "updated_at",
	"lastUsedAt":     "last_used_at",
}

// bulkUpdatableFields whitelists the partial-patch fields for BulkUpdate.
var bulkUpdatableFields = map[string]string{
	"translatedText": "translated_text",
	"status":         "status",
	"category":       "category",
	"context":        "context",
	"tags":           "tags",
	"qualityScore":   "quality_score",
	"needsReview":    "needs_review",
}

func (q ListQuery) normalize() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 200 {
		q.Limit = 50
	}
	if _, ok := sortableColumns[q.SortBy]; !ok {
		q.SortBy = "updatedAt"
	}
	if q.SortOrder != "asc" {
		q.SortOrder = "desc"
	}
	return q
}

func (s *Store) filtered(ctx context.Context, lang, status, category string) *gorm.DB {
	tx := s.db.WithContext(ctx).Model(&models.Translation{})
	if lang != "" {
		tx = tx.Where("target_lang = ?", lang)
	}
	if status != "" && status != "all" {
		tx = tx.Where("status = ?", status)
	}
	if category != "" && category != "all" {
		tx = tx.Where("category = ?", category)
	}
	return tx
}

// List returns one page of translations with filtering, search, sorting and
// the aggregate stats block.
func (s *Store) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	if s.db == nil {
		return nil, errors.New("store not available")
	}
	q = q.normalize()

	tx := s.filtered(ctx, q.TargetLang, q.Status, q.Category)
	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		tx = tx.Where(
			"source_text LIKE ? OR translated_text LIKE ? OR context LIKE ? OR tags LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, err
	}

	var items []models.Translation
	order := fmt.Sprintf("%s %s", sortableColumns[q.SortBy], q.SortOrder)
	err := tx.Order(order).
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	stats, err := s.adminStats(ctx, q.TargetLang)
	if err != nil {
		return nil, err
	}

	pages := int((total + int64(q.Limit) - 1) / int64(q.Limit))
	return &ListResult{Items: items, Total: total, Pages: pages, Stats: *stats}, nil
}

func (s *Store) adminStats(ctx context.Context, lang string) (*AdminStats, error) {
	stats := &AdminStats{
		ByStatus:       make(map[string]int64),
		ByCategory:     make(map[string]int64),
		AverageQuality: 100,
	}

	base := func() *gorm.DB { return s.filtered(ctx, lang, "", "") }

	if err := base().Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	type kv struct {
		Key   string
		Count int64
	}
	var rows []kv
	if err := base().Select("status as key, COUNT(*) as count").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		stats.ByStatus[r.Key] = r.Count
	}

	rows = nil
	if err := base().Select("category as key, COUNT(*) as count").Group("category").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		stats.ByCategory[r.Key] = r.Count
	}

	var agg struct {
		AvgQuality     float64
		NeedsReview    int64
		AutoTranslated int64
		TotalUsage     int64
	}
	err := base().Select(
		"COALESCE(AVG(quality_score), 100) as avg_quality, " +
			"COALESCE(SUM(CASE WHEN needs_review THEN 1 ELSE 0 END), 0) as needs_review, " +
			"COALESCE(SUM(CASE WHEN is_auto_translated THEN 1 ELSE 0 END), 0) as auto_translated, " +
			"COALESCE(SUM(usage_count), 0) as total_usage",
	).Scan(&agg).Error
	if err != nil {
		return nil, err
	}

	stats.AverageQuality = int(agg.AvgQuality + 0.5)
	stats.NeedsReview = agg.NeedsReview
	stats.AutoTranslated = agg.AutoTranslated
	stats.TotalUsage = agg.TotalUsage
	return stats, nil
}

// Create inserts a manually authored translation. An existing record for the
// same pair is a caller error (409 at the HTTP layer), unlike the pipeline's
// Upsert where the race is expected.
func (s *Store) Create(ctx context.Context, rec *models.Translation) error {
	if s.db == nil {
		return errors.New("store not available")
	}

	var count int64
	err := s.db.WithContext(ctx).Model(&models.Translation{}).
		Where("source_text = ? AND target_lang = ?", rec.SourceText, rec.TargetLang).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicate
	}

	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		// The uniqueness constraint may still fire on a concurrent insert.
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// BulkUpdate applies a partial field patch to a set of records, bumping each
// record's version. It returns the affected records so the caller can evict
// their memory-cache entries.
func (s *Store) BulkUpdate(ctx context.Context, ids []string, updates map[string]interface{}) ([]models.Translation, error) {
	if s.db == nil {
		return nil, errors.New("store not available")
	}
	if len(ids) == 0 {
		return nil, errors.New("no ids given")
	}

	patch := make(map[string]interface{})
	for field, value := range updates {
		if column, ok := bulkUpdatableFields[field]; ok {
			patch[column] = value
		}
	}
	if len(patch) == 0 {
		return nil, errors.New("no updatable fields in patch")
	}
	patch["version"] = gorm.Expr("version + 1")
	patch["updated_at"] = time.Now()

	err := s.db.WithContext(ctx).Model(&models.Translation{}).
		Where("id IN ?", ids).
		Updates(patch).Error
	if err != nil {
		return nil, err
	}

	var affected []models.Translation
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&affected).Error; err != nil {
		return nil, err
	}
	return affected, nil
}

// DeleteByIDs removes records and returns what was removed, again so the
// caller can evict the corresponding memory-cache entries.
func (s *Store) DeleteByIDs(ctx context.Context, ids []string) ([]models.Translation, error) {
	if s.db == nil {
		return nil, errors.New("store not available")
	}
	if len(ids) == 0 {
		return nil, errors.New("no ids given")
	}

	var affected []models.Translation
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&affected).Error; err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Translation{}).Error; err != nil {
		return nil, err
	}
	return affected, nil
}

// Export returns the full filtered record set sorted by source text, for
// the export endpoint's structured, tabular and key-value renderings.
func (s *Store) Export(ctx context.Context, lang, status, category string) ([]models.Translation, error) {
	if s.db == nil {
		return nil, errors.New("store not available")
	}

	var recs []models.Translation
	err := s.filtered(ctx, lang, status, category).
		Order("source_text asc").
		Find(&recs).Error
	return recs, err
}

// isUniqueViolation matches sqlite's and gorm's duplicate-key surfaces.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "Duplicate entry")
}
