package database

import (
	"log"

	"gorm.io/gorm"
)

// RunMigrations runs any custom data migrations after schema changes
func RunMigrations(db *gorm.DB) error {
	if err := migrateProviderModelColumn(db); err != nil {
		return err
	}
	if err := backfillTranslationDefaults(db); err != nil {
		return err
	}
	return nil
}

// migrateProviderModelColumn migrates the legacy "model" column to the new
// provider_model column. Safe to run multiple times: it only copies rows
// where provider_model is still empty.
func migrateProviderModelColumn(db *gorm.DB) error {
	if !db.Migrator().HasColumn("translations", "model") {
		return nil
	}

	log.Println("Migrating translations: model -> provider_model")

	result := db.Exec(`
		UPDATE translations
		SET provider_model = model
		WHERE (provider_model IS NULL OR provider_model = '')
		  AND model IS NOT NULL AND model != ''
	`)
	if result.Error != nil {
		log.Printf("Warning: failed to migrate translations model column: %v", result.Error)
	} else {
		log.Printf("Migrated %d translations rows", result.RowsAffected)
	}

	return nil
}

// backfillTranslationDefaults fills status/category/version for rows created
// before those columns existed
func backfillTranslationDefaults(db *gorm.DB) error {
	db.Exec(`UPDATE translations SET status = 'approved' WHERE status IS NULL OR status = ''`)
	db.Exec(`UPDATE translations SET category = 'general' WHERE category IS NULL OR category = ''`)
	db.Exec(`UPDATE translations SET version = 1 WHERE version IS NULL OR version = 0`)

	log.Println("Translation defaults backfill complete")
	return nil
}
