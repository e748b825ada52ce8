package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Translation statuses. Machine translations default to approved; entries an
// admin wants a human to look at are flagged draft.
const (
	StatusDraft    = "draft"
	StatusApproved = "approved"
)

// Translation is one cached translation of a source string into a target
// language. The composite unique index on (source_text, target_lang) is the
// load-bearing invariant of the whole pipeline: the schema, not application
// logic, guarantees a given pair is ever translated at most once.
type Translation struct {
	ID               string     `gorm:"primaryKey;size:36" json:"id"`
	SourceText       string     `gorm:"uniqueIndex:idx_translations_source_lang;not null" json:"sourceText"`
	TargetLang       string     `gorm:"uniqueIndex:idx_translations_source_lang;not null;size:10" json:"targetLang"`
	TranslatedText   string     `gorm:"not null" json:"translatedText"`
	ProviderModel    string     `gorm:"size:64" json:"providerModel"` // audit only, not part of identity
	UsageCount       int        `gorm:"default:0" json:"usageCount"`
	QualityScore     int        `gorm:"default:100" json:"qualityScore"`
	Status           string     `gorm:"default:'approved';size:16;index" json:"status"`
	IsAutoTranslated bool       `gorm:"default:false" json:"isAutoTranslated"`
	NeedsReview      bool       `gorm:"default:false" json:"needsReview"`
	Category         string     `gorm:"default:'general';size:64;index" json:"category"`
	Context          string     `json:"context"`
	Tags             string     `json:"tags"` // comma-joined, advisory only
	Version          int        `gorm:"default:1" json:"version"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	LastUsedAt       *time.Time `json:"lastUsedAt"`
}

func (Translation) TableName() string {
	return "translations"
}

// BeforeCreate assigns a UUID so the admin bulk operations can address
// records individually.
func (t *Translation) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// TagList splits the comma-joined Tags column, dropping empty entries.
func (t *Translation) TagList() []string {
	if t.Tags == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(t.Tags, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinTags is the inverse of TagList.
func JoinTags(tags []string) string {
	return strings.Join(tags, ",")
}
