package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"food-court-api/config"
	"food-court-api/events"
	"food-court-api/handlers"
	"food-court-api/middleware"
	"food-court-api/models"
	"food-court-api/routes"
	"food-court-api/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// a 1x1 PNG header is enough for content sniffing
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type testApp struct {
	t           *testing.T
	db          *gorm.DB
	router      *gin.Engine
	runtime     *config.Runtime
	storageRoot string
	pub         *recordingPublisher
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := config.OpenSQLite("file::memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	root := t.TempDir()
	runtime := config.NewRuntime(config.Policy{})
	pub := &recordingPublisher{}
	tokens := middleware.NewTokens(db, []byte("test-secret"), time.Hour, nil)
	h := handlers.New(db, tokens, storage.NewLocalDisk(root, "/storage"), pub, runtime, zap.NewNop().Sugar(), 2<<20)

	r := gin.New()
	routes.SetupRoutes(r, h, root, "/storage")

	return &testApp{t: t, db: db, router: r, runtime: runtime, storageRoot: root, pub: pub}
}

func (a *testApp) do(method, path string, body io.Reader, contentType, token string) *httptest.ResponseRecorder {
	a.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) doJSON(method, path string, payload interface{}, token string) *httptest.ResponseRecorder {
	a.t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			a.t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(b)
	}
	return a.do(method, path, body, "application/json", token)
}

func (a *testApp) doMultipart(method, path string, fields map[string]string, file []byte, token string) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			a.t.Fatalf("write field: %v", err)
		}
	}
	if file != nil {
		fw, err := mw.CreateFormFile("img", "dish.png")
		if err != nil {
			a.t.Fatalf("create form file: %v", err)
		}
		fw.Write(file)
	}
	mw.Close()
	return a.do(method, path, &buf, mw.FormDataContentType(), token)
}

// signup registers an admin account and returns its token.
func (a *testApp) signup(email, password string) string {
	a.t.Helper()
	w := a.doJSON(http.MethodPost, "/api/signup", map[string]string{"email": email, "password": password}, "")
	if w.Code != http.StatusCreated {
		a.t.Fatalf("signup status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	decode(a.t, w, &resp)
	return resp.Token
}

func (a *testApp) seedItem(name string, price int) models.MenuItem {
	a.t.Helper()
	item := models.MenuItem{Name: name, Price: price, IsAvailable: true}
	if err := a.db.Create(&item).Error; err != nil {
		a.t.Fatalf("seed item: %v", err)
	}
	return item
}

func (a *testApp) count(model interface{}) int64 {
	a.t.Helper()
	var n int64
	if err := a.db.Model(model).Count(&n).Error; err != nil {
		a.t.Fatalf("count: %v", err)
	}
	return n
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

type validationBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

func expectValidation(t *testing.T, w *httptest.ResponseRecorder, fields ...string) validationBody {
	t.Helper()
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422; body = %s", w.Code, w.Body.String())
	}
	var body validationBody
	decode(t, w, &body)
	for _, f := range fields {
		if len(body.Errors[f]) == 0 {
			t.Errorf("expected error for %q, got %v", f, body.Errors)
		}
	}
	return body
}
