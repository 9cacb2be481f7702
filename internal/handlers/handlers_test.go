package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/snapreward/apiserver/internal/notify"
	"github.com/snapreward/apiserver/internal/services"
	"github.com/snapreward/apiserver/internal/storage"
	"github.com/snapreward/apiserver/internal/store"
)

const testJWTSecret = "test-secret"

// testAPI wires the full route tree against in-memory collaborators.
type testAPI struct {
	router  chi.Router
	store   *store.MemStore
	storage *stubObjectStorage
	broker  *stubBackend
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	ms := store.NewMemStore()
	objects := &stubObjectStorage{objects: make(map[string][]byte)}
	broker := &stubBackend{}

	userService := services.NewUserService(ms.Users())
	campaignService := services.NewCampaignService(ms.Campaigns())
	customerService := services.NewCustomerService(ms.Customers())
	submissionService := services.NewSubmissionService(ms.Submissions(), ms.Campaigns(), storage.NewStorage(objects))
	dashboardService := services.NewDashboardService(ms.Campaigns(), ms.Submissions(), ms.Customers())
	notifier := notify.New(broker, "notifications", nil)

	auth := RequireAuth(testJWTSecret)

	router := chi.NewRouter()
	router.Get("/healthz", Healthz)
	router.Route("/api/auth", func(r chi.Router) {
		AuthRouter(r, userService, testJWTSecret)
	})
	router.Route("/api/campaigns", func(r chi.Router) {
		CampaignRouter(r, campaignService, auth)
	})
	router.Route("/api/submissions", func(r chi.Router) {
		SubmissionRouter(r, submissionService, auth)
	})
	router.Route("/api/customers", func(r chi.Router) {
		CustomerRouter(r, customerService, auth)
	})
	router.Route("/api/dashboard", func(r chi.Router) {
		DashboardRouter(r, dashboardService, auth)
	})
	router.Route("/api/notify", func(r chi.Router) {
		NotifyRouter(r, notifier, campaignService, auth)
	})
	router.Route("/uploads", func(r chi.Router) {
		UploadsRouter(r, storage.NewStorage(objects), nil)
	})

	return &testAPI{
		router:  router,
		store:   ms,
		storage: objects,
		broker:  broker,
	}
}

// token issues a JWT accepted by the API's auth middleware.
func (api *testAPI) token(t *testing.T) string {
	t.Helper()
	token, err := issueToken(1, []byte(testJWTSecret), time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

// doJSON performs a JSON request and decodes the response into out when
// out is non-nil.
func (api *testAPI) doJSON(t *testing.T, method, path, bearer string, body, out any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	recorder := httptest.NewRecorder()
	api.router.ServeHTTP(recorder, req)

	if out != nil && recorder.Code < 300 {
		if err := json.NewDecoder(recorder.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return recorder
}

// doMultipart posts a multipart form with the given fields and an
// optional file part named "image".
func (api *testAPI) doMultipart(t *testing.T, path string, fields map[string]string, filename, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field %s: %v", key, err)
		}
	}
	if filename != "" {
		header := make(map[string][]string)
		header["Content-Disposition"] = []string{`form-data; name="image"; filename="` + filename + `"`}
		header["Content-Type"] = []string{contentType}
		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	recorder := httptest.NewRecorder()
	api.router.ServeHTTP(recorder, req)
	return recorder
}

func errorMessage(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp.Message
}

// stubObjectStorage records stored objects for assertions.
type stubObjectStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (s *stubObjectStorage) EnsureBucket(context.Context) error { return nil }

func (s *stubObjectStorage) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return nil
}

func (s *stubObjectStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *stubObjectStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *stubObjectStorage) Bucket() string { return "test" }

func (s *stubObjectStorage) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// stubBackend records published envelopes; recipients listed in fail
// are rejected.
type stubBackend struct {
	mu        sync.Mutex
	published []notify.Envelope
	fail      map[string]bool
}

func (b *stubBackend) Publish(_ context.Context, _ string, data []byte, attrs map[string]string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail[attrs["recipient"]] {
		return "", errors.New("publish refused")
	}
	var envelope notify.Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return "", err
	}
	b.published = append(b.published, envelope)
	return "msg-id", nil
}

func (b *stubBackend) Close() error { return nil }

func (b *stubBackend) envelopes() []notify.Envelope {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]notify.Envelope(nil), b.published...)
}
