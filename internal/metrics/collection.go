package metrics

import (
	"log"

	"gorm.io/gorm"

	"github.com/avrentals/backend/internal/models"
)

// UpdateTranslationMetrics queries the database and refreshes the
// translation-table gauges. Call this periodically or after admin changes.
func UpdateTranslationMetrics(db *gorm.DB) {
	if db == nil {
		return
	}

	var total int64
	if err := db.Model(&models.Translation{}).Count(&total).Error; err != nil {
		log.Printf("Metrics: failed to count translations: %v", err)
	} else {
		TranslationRecords.Set(float64(total))
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var byStatus []statusCount
	if err := db.Model(&models.Translation{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&byStatus).Error; err != nil {
		log.Printf("Metrics: failed to count translations by status: %v", err)
	} else {
		for _, sc := range byStatus {
			TranslationRecordsByStatus.WithLabelValues(sc.Status).Set(float64(sc.Count))
		}
	}

	type langCount struct {
		TargetLang string
		Count      int64
	}
	var byLang []langCount
	if err := db.Model(&models.Translation{}).
		Select("target_lang, COUNT(*) as count").
		Group("target_lang").
		Scan(&byLang).Error; err != nil {
		log.Printf("Metrics: failed to count translations by language: %v", err)
	} else {
		for _, lc := range byLang {
			TranslationRecordsByLang.WithLabelValues(lc.TargetLang).Set(float64(lc.Count))
		}
	}
}
