package handlers

import (
	"encoding/csv"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/avrentals/backend/internal/models"
	"github.com/avrentals/backend/internal/translation"
)

// TranslationAdminHandler serves the management surface: listing, manual
// authoring, bulk edits, deletion and export. Every mutation evicts the
// touched pairs from the in-process cache so reads never serve stale text.
type TranslationAdminHandler struct {
	store   *translation.Store
	gateway *translation.Gateway
}

func NewTranslationAdminHandler(store *translation.Store, gateway *translation.Gateway) *TranslationAdminHandler {
	return &TranslationAdminHandler{store: store, gateway: gateway}
}

// List returns one page of translations with filtering, search and sorting,
// plus aggregate stats for the dashboard.
// GET /api/admin/translations
func (h *TranslationAdminHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	result, err := h.store.List(c.Request.Context(), translation.ListQuery{
		Page:       page,
		Limit:      limit,
		Search:     c.Query("search"),
		TargetLang: c.Query("targetLang"),
		Status:     c.Query("status"),
		Category:   c.Query("category"),
		SortBy:     c.DefaultQuery("sortBy", "updatedAt"),
		SortOrder:  c.DefaultQuery("sortOrder", "desc"),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

type createTranslationRequest struct {
	SourceText     string   `json:"sourceText" binding:"required"`
	TargetLang     string   `json:"targetLang" binding:"required"`
	TranslatedText string   `json:"translatedText" binding:"required"`
	Status         string   `json:"status"`
	Category       string   `json:"category"`
	Context        string   `json:"context"`
	Tags           []string `json:"tags"`
	QualityScore   int      `json:"qualityScore"`
}

// Create inserts a manually authored translation. A record already covering
// the same (sourceText, targetLang) pair is a conflict, never an overwrite.
// POST /api/admin/translations
func (h *TranslationAdminHandler) Create(c *gin.Context) {
	var req createTranslationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec := models.Translation{
		SourceText:     req.SourceText,
		TargetLang:     req.TargetLang,
		TranslatedText: req.TranslatedText,
		Status:         req.Status,
		Category:       req.Category,
		Context:        req.Context,
		Tags:           models.JoinTags(req.Tags),
		QualityScore:   req.QualityScore,
	}
	if rec.Status == "" {
		rec.Status = models.StatusApproved
	}
	if rec.QualityScore <= 0 {
		rec.QualityScore = 100
	}

	if err := h.store.Create(c.Request.Context(), &rec); err != nil {
		if errors.Is(err, translation.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "translation already exists for this source text and language",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.gateway.Evict(rec.SourceText, rec.TargetLang)
	c.JSON(http.StatusCreated, rec)
}

type bulkUpdateRequest struct {
	IDs     []string               `json:"ids" binding:"required"`
	Updates map[string]interface{} `json:"updates" binding:"required"`
}

// BulkUpdate applies a partial patch to a set of records, bumping each
// record's version, and evicts the touched pairs from the cache.
// PUT /api/admin/translations
func (h *TranslationAdminHandler) BulkUpdate(c *gin.Context) {
	var req bulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	affected, err := h.store.BulkUpdate(c.Request.Context(), req.IDs, req.Updates)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	for i := range affected {
		h.gateway.Evict(affected[i].SourceText, affected[i].TargetLang)
	}
	c.JSON(http.StatusOK, gin.H{
		"updated":      len(affected),
		"translations": affected,
	})
}

type deleteRequest struct {
	IDs []string `json:"ids"`
}

// Delete removes records and evicts the corresponding cache entries. IDs come
// either as a JSON body or as a comma-separated ?ids= query parameter.
// DELETE /api/admin/translations
func (h *TranslationAdminHandler) Delete(c *gin.Context) {
	var req deleteRequest
	_ = c.ShouldBindJSON(&req)
	if len(req.IDs) == 0 {
		for _, id := range strings.Split(c.Query("ids"), ",") {
			if id = strings.TrimSpace(id); id != "" {
				req.IDs = append(req.IDs, id)
			}
		}
	}
	if len(req.IDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no ids given"})
		return
	}

	affected, err := h.store.DeleteByIDs(c.Request.Context(), req.IDs)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	for i := range affected {
		h.gateway.Evict(affected[i].SourceText, affected[i].TargetLang)
	}
	c.JSON(http.StatusOK, gin.H{"deleted": len(affected)})
}

// Export streams the filtered record set in one of three formats: the full
// records as JSON, a spreadsheet-friendly CSV, or a flat source->translated
// map for hand-off to i18n tooling.
// GET /api/admin/translations/export?format=json|csv|keyvalue
func (h *TranslationAdminHandler) Export(c *gin.Context) {
	recs, err := h.store.Export(
		c.Request.Context(),
		c.Query("targetLang"),
		c.Query("status"),
		c.Query("category"),
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	switch c.DefaultQuery("format", "json") {
	case "json":
		c.Header("Content-Disposition", `attachment; filename="translations.json"`)
		c.JSON(http.StatusOK, gin.H{
			"count":        len(recs),
			"translations": recs,
		})

	case "csv":
		c.Header("Content-Disposition", `attachment; filename="translations.csv"`)
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Status(http.StatusOK)

		w := csv.NewWriter(c.Writer)
		w.Write([]string{"sourceText", "targetLang", "translatedText", "status", "category", "context", "qualityScore", "usageCount", "version"})
		for i := range recs {
			r := &recs[i]
			w.Write([]string{
				r.SourceText,
				r.TargetLang,
				r.TranslatedText,
				r.Status,
				r.Category,
				r.Context,
				strconv.Itoa(r.QualityScore),
				strconv.Itoa(r.UsageCount),
				strconv.Itoa(r.Version),
			})
		}
		w.Flush()

	case "keyvalue":
		out := make(map[string]string, len(recs))
		for i := range recs {
			out[recs[i].SourceText] = recs[i].TranslatedText
		}
		c.Header("Content-Disposition", `attachment; filename="translations-keyvalue.json"`)
		c.JSON(http.StatusOK, out)

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown format, want json, csv or keyvalue"})
	}
}
