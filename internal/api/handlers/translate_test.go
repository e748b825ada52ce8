package handlers

import (
	"net/http"
	"testing"
)

func TestTranslateSingleText(t *testing.T) {
	env := newTestEnv(t)
	env.mock.Translations["Checkout"] = "Finalizar compra"

	w := env.do(t, http.MethodPost, "/api/translate", map[string]interface{}{
		"text":       "Checkout",
		"targetLang": "pt",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["translated"] != "Finalizar compra" {
		t.Errorf("translated = %v", body["translated"])
	}
	if body["original"] != "Checkout" || body["targetLang"] != "pt" {
		t.Errorf("unexpected envelope: %s", w.Body.String())
	}
}

func TestTranslateBatch(t *testing.T) {
	env := newTestEnv(t)
	env.mock.Translations["Cart"] = "Carrinho"
	env.mock.Translations["Checkout"] = "Finalizar compra"

	w := env.do(t, http.MethodPost, "/api/translate", map[string]interface{}{
		"texts":      []string{"Cart", "Checkout"},
		"targetLang": "pt",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	translations, ok := body["translations"].([]interface{})
	if !ok {
		t.Fatalf("missing translations array: %v", body)
	}
	// Positional, matching the input order.
	if len(translations) != 2 || translations[0] != "Carrinho" || translations[1] != "Finalizar compra" {
		t.Errorf("translations = %v", translations)
	}
}

func TestTranslateValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name       string
		body       map[string]interface{}
		wantStatus int
	}{
		{
			name:       "missing targetLang",
			body:       map[string]interface{}{"text": "Checkout"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing text and texts",
			body:       map[string]interface{}{"targetLang": "pt"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "too many texts",
			body: map[string]interface{}{
				"texts":      make([]string, 101),
				"targetLang": "pt",
			},
			wantStatus: http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/translate", tt.body)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d; body %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestTranslateSourceLangPassthrough(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/translate", map[string]interface{}{
		"text":       "Checkout",
		"targetLang": "en",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if decodeBody(t, w)["translated"] != "Checkout" {
		t.Errorf("expected passthrough, got %s", w.Body.String())
	}
	if env.mock.Calls() != 0 {
		t.Errorf("provider called %d times for source language", env.mock.Calls())
	}
}

func TestTranslateInvalidate(t *testing.T) {
	env := newTestEnv(t)
	env.cache.Set("Cart", "pt", "Carrinho")

	w := env.do(t, http.MethodPost, "/api/admin/translate/invalidate", map[string]interface{}{
		"targetLang": "pt",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if env.cache.Len() != 0 {
		t.Errorf("cache len = %d after invalidate", env.cache.Len())
	}
}

func TestTranslateStatsAndPreload(t *testing.T) {
	env := newTestEnv(t)
	env.mock.Translations["Checkout"] = "Finalizar compra"

	// Resolve one pair so both layers have content.
	env.do(t, http.MethodPost, "/api/translate", map[string]interface{}{
		"text": "Checkout", "targetLang": "pt",
	})

	w := env.do(t, http.MethodGet, "/api/translate/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats status = %d", w.Code)
	}
	body := decodeBody(t, w)
	storeStats, ok := body["store"].(map[string]interface{})
	if !ok || storeStats["totalTranslations"].(float64) != 1 {
		t.Errorf("unexpected stats: %s", w.Body.String())
	}

	// Drop the memory cache, then preload it back from the store.
	env.cache.Invalidate("")
	w = env.do(t, http.MethodPost, "/api/translate/preload", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("preload status = %d", w.Code)
	}
	if decodeBody(t, w)["loaded"].(float64) != 1 {
		t.Errorf("preload body = %s", w.Body.String())
	}
	if env.cache.Len() != 1 {
		t.Errorf("cache len = %d after preload", env.cache.Len())
	}
}
