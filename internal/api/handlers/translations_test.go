package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/avrentals/backend/internal/models"
)

func seedTranslations(t *testing.T, env *testEnv) []models.Translation {
	t.Helper()
	recs := []models.Translation{
		{SourceText: "Add to cart", TargetLang: "pt", TranslatedText: "Adicionar ao carrinho", Status: models.StatusApproved, Category: "shop"},
		{SourceText: "Checkout", TargetLang: "pt", TranslatedText: "Finalizar compra", Status: models.StatusDraft, Category: "shop"},
		{SourceText: "Daily rate", TargetLang: "pt", TranslatedText: "Tarifa diária", Status: models.StatusApproved, Category: "pricing"},
	}
	for i := range recs {
		if err := env.db.Create(&recs[i]).Error; err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}
	return recs
}

func TestAdminList(t *testing.T) {
	env := newTestEnv(t)
	seedTranslations(t, env)

	w := env.do(t, http.MethodGet, "/api/admin/translations?targetLang=pt&status=approved", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	if body["total"].(float64) != 2 {
		t.Errorf("total = %v", body["total"])
	}
	if _, ok := body["stats"].(map[string]interface{}); !ok {
		t.Error("expected stats block in list response")
	}
}

func TestAdminCreate(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/admin/translations", map[string]interface{}{
		"sourceText":     "Security deposit",
		"targetLang":     "pt",
		"translatedText": "Caução",
		"category":       "pricing",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	if body["status"] != models.StatusApproved {
		t.Errorf("manual entries default to approved, got %v", body["status"])
	}
	if body["isAutoTranslated"] != false {
		t.Errorf("manual entries must not be flagged auto-translated")
	}
}

func TestAdminCreateDuplicateConflicts(t *testing.T) {
	env := newTestEnv(t)
	seedTranslations(t, env)

	w := env.do(t, http.MethodPost, "/api/admin/translations", map[string]interface{}{
		"sourceText":     "Checkout",
		"targetLang":     "pt",
		"translatedText": "Outra tradução",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409; body %s", w.Code, w.Body.String())
	}
}

func TestAdminCreateValidation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/admin/translations", map[string]interface{}{
		"sourceText": "No translation given",
		"targetLang": "pt",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestAdminBulkUpdateEvictsCache(t *testing.T) {
	env := newTestEnv(t)
	recs := seedTranslations(t, env)

	// Simulate a read-through: the stale text sits in memory.
	env.cache.Set("Checkout", "pt", "Finalizar compra")

	w := env.do(t, http.MethodPut, "/api/admin/translations", map[string]interface{}{
		"ids": []string{recs[1].ID},
		"updates": map[string]interface{}{
			"translatedText": "Concluir compra",
			"status":         models.StatusApproved,
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if decodeBody(t, w)["updated"].(float64) != 1 {
		t.Errorf("updated count wrong: %s", w.Body.String())
	}

	// The stale entry is evicted; version moved on.
	if _, ok := env.cache.Get("Checkout", "pt"); ok {
		t.Error("expected cache eviction after bulk update")
	}
	var rec models.Translation
	env.db.First(&rec, "id = ?", recs[1].ID)
	if rec.TranslatedText != "Concluir compra" || rec.Version != 2 {
		t.Errorf("record after update: text=%q version=%d", rec.TranslatedText, rec.Version)
	}
}

func TestAdminDeleteEvictsCache(t *testing.T) {
	env := newTestEnv(t)
	recs := seedTranslations(t, env)
	env.cache.Set("Add to cart", "pt", "Adicionar ao carrinho")

	w := env.do(t, http.MethodDelete, "/api/admin/translations", map[string]interface{}{
		"ids": []string{recs[0].ID},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if decodeBody(t, w)["deleted"].(float64) != 1 {
		t.Errorf("deleted count wrong: %s", w.Body.String())
	}
	if _, ok := env.cache.Get("Add to cart", "pt"); ok {
		t.Error("expected cache eviction after delete")
	}

	var n int64
	env.db.Model(&models.Translation{}).Count(&n)
	if n != 2 {
		t.Errorf("rows = %d, want 2", n)
	}
}

func TestAdminDeleteByQueryParam(t *testing.T) {
	env := newTestEnv(t)
	recs := seedTranslations(t, env)

	w := env.do(t, http.MethodDelete, "/api/admin/translations?ids="+recs[2].ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var n int64
	env.db.Model(&models.Translation{}).Count(&n)
	if n != 2 {
		t.Errorf("rows = %d, want 2", n)
	}
}

func TestAdminDeleteWithoutIDs(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodDelete, "/api/admin/translations", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestAdminExportFormats(t *testing.T) {
	env := newTestEnv(t)
	seedTranslations(t, env)

	t.Run("json", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/admin/translations/export?targetLang=pt", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		if !strings.Contains(w.Header().Get("Content-Disposition"), "translations.json") {
			t.Errorf("disposition = %q", w.Header().Get("Content-Disposition"))
		}
		if decodeBody(t, w)["count"].(float64) != 3 {
			t.Errorf("count wrong: %s", w.Body.String())
		}
	})

	t.Run("csv", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/admin/translations/export?format=csv", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		if !strings.Contains(w.Header().Get("Content-Type"), "text/csv") {
			t.Errorf("content type = %q", w.Header().Get("Content-Type"))
		}
		lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
		if len(lines) != 4 { // header + 3 rows
			t.Errorf("csv lines = %d, want 4:\n%s", len(lines), w.Body.String())
		}
		if !strings.HasPrefix(lines[0], "sourceText,targetLang") {
			t.Errorf("csv header = %q", lines[0])
		}
	})

	t.Run("keyvalue", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/admin/translations/export?format=keyvalue", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		body := decodeBody(t, w)
		if body["Checkout"] != "Finalizar compra" {
			t.Errorf("keyvalue body = %s", w.Body.String())
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/admin/translations/export?format=xml", nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})
}
