package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/avrentals/backend/internal/models"
	"github.com/avrentals/backend/internal/provider"
	"github.com/avrentals/backend/internal/translation"
)

// testEnv wires a full pipeline over an in-memory database and a mock
// provider, plus a router exposing both handler sets.
type testEnv struct {
	router  *gin.Engine
	db      *gorm.DB
	mock    *provider.Mock
	cache   *translation.MemoryCache
	gateway *translation.Gateway
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.Translation{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	mock := provider.NewMock()
	limiter := translation.NewCredentialRateLimiter(
		[]translation.Credential{{ID: "key-a", APIKey: "secret"}},
		translation.CredentialLimits{MaxCallsPerWindow: 100, WindowDuration: time.Minute},
	)
	store := translation.NewStore(db, nil)
	cache := translation.NewMemoryCache()
	dispatcher := translation.NewBatchDispatcher(mock, limiter, store, cache, translation.DispatcherConfig{
		CallTimeout: time.Second,
		RetryDelay:  time.Millisecond,
	})
	gateway := translation.NewGateway(cache, store, dispatcher, "en")

	th := NewTranslateHandler(gateway)
	ah := NewTranslationAdminHandler(store, gateway)

	r := gin.New()
	r.POST("/api/translate", th.Translate)
	r.GET("/api/translate/stats", th.Stats)
	r.POST("/api/translate/preload", th.Preload)
	r.POST("/api/admin/translate/invalidate", th.Invalidate)
	r.GET("/api/admin/translations", ah.List)
	r.POST("/api/admin/translations", ah.Create)
	r.PUT("/api/admin/translations", ah.BulkUpdate)
	r.DELETE("/api/admin/translations", ah.Delete)
	r.GET("/api/admin/translations/export", ah.Export)

	return &testEnv{router: r, db: db, mock: mock, cache: cache, gateway: gateway}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON response: %v\n%s", err, w.Body.String())
	}
	return out
}
