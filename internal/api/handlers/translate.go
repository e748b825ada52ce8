package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avrentals/backend/internal/translation"
)

// maxBatchTexts caps a single translate request. Anything larger is a client
// bug, not a legitimate page render.
const maxBatchTexts = 100

type TranslateHandler struct {
	gateway *translation.Gateway
}

func NewTranslateHandler(gateway *translation.Gateway) *TranslateHandler {
	return &TranslateHandler{gateway: gateway}
}

type translateRequest struct {
	Text        string   `json:"text"`
	Texts       []string `json:"texts"`
	TargetLang  string   `json:"targetLang"`
	Progressive bool     `json:"progressive"`
}

// Translate resolves one text or a batch for a target language. The response
// always carries a usable string per input; untranslatable texts come back
// unchanged.
// POST /api/translate
func (h *TranslateHandler) Translate(c *gin.Context) {
	var req translateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.TargetLang == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "targetLang is required"})
		return
	}

	if len(req.Texts) > 0 {
		if len(req.Texts) > maxBatchTexts {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": "too many texts in one request",
				"max":   maxBatchTexts,
			})
			return
		}
		translations := h.gateway.TranslateMany(c.Request.Context(), req.Texts, req.TargetLang, req.Progressive)
		c.JSON(http.StatusOK, gin.H{
			"translations": translations,
			"targetLang":   req.TargetLang,
		})
		return
	}

	if req.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text or texts is required"})
		return
	}
	translated := h.gateway.TranslateOne(c.Request.Context(), req.Text, req.TargetLang)
	c.JSON(http.StatusOK, gin.H{
		"original":   req.Text,
		"translated": translated,
		"targetLang": req.TargetLang,
	})
}

// Invalidate clears the in-process cache, optionally for one language. The
// durable store is untouched.
// POST /api/translate/invalidate
func (h *TranslateHandler) Invalidate(c *gin.Context) {
	var req struct {
		TargetLang string `json:"targetLang"`
	}
	// An empty body is fine: it means clear everything.
	_ = c.ShouldBindJSON(&req)

	h.gateway.Invalidate(req.TargetLang)
	c.JSON(http.StatusOK, gin.H{
		"message":    "cache invalidated",
		"targetLang": req.TargetLang,
	})
}

// Preload warms the in-process cache from the durable store.
// POST /api/translate/preload
func (h *TranslateHandler) Preload(c *gin.Context) {
	loaded, err := h.gateway.Preload(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"loaded": loaded})
}

// Stats reports cache and store statistics.
// GET /api/translate/stats
func (h *TranslateHandler) Stats(c *gin.Context) {
	cacheStats, storeStats, err := h.gateway.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"cache": cacheStats,
		"store": storeStats,
	})
}
