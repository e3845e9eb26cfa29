package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// newTestStore opens a fresh SQLite file under t.TempDir().
func newTestStore(t *testing.T) *localStore {
	t.Helper()
	s, err := openLocalStore(context.Background(), filepath.Join(t.TempDir(), "wellness.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// fakeCloud is an in-memory cloudMirror. fetchErr/pushErr force failures.
type fakeCloud struct {
	mu       sync.Mutex
	profiles map[string]profileDocument
	doctors  map[string]doctorDocument // keyed by uid + "/" + doctor id
	accounts map[string][2]string      // username -> {password, uid}
	fetchErr error
	pushErr  error
	fetches  int
	pushed   chan string
}

func newFakeCloud() *fakeCloud {
	return &fakeCloud{
		profiles: map[string]profileDocument{},
		doctors:  map[string]doctorDocument{},
		accounts: map[string][2]string{},
		pushed:   make(chan string, 32),
	}
}

func (f *fakeCloud) fetchProfile(_ context.Context, uid string) (*profileDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	doc, ok := f.profiles[uid]
	if !ok {
		return nil, nil
	}
	return &doc, nil
}

func (f *fakeCloud) pushProfile(_ context.Context, uid string, doc profileDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	defer f.notify("profile:" + uid)
	if f.pushErr != nil {
		return f.pushErr
	}
	doc.UpdatedAt = time.Now()
	f.profiles[uid] = doc
	return nil
}

func (f *fakeCloud) pushDoctor(_ context.Context, uid string, d doctor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	defer f.notify("doctor:" + d.ID)
	if f.pushErr != nil {
		return f.pushErr
	}
	f.doctors[uid+"/"+d.ID] = documentFromDoctor(d)
	return nil
}

func (f *fakeCloud) deleteDoctor(_ context.Context, uid, doctorID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	defer f.notify("delete:" + doctorID)
	if f.pushErr != nil {
		return f.pushErr
	}
	delete(f.doctors, uid+"/"+doctorID)
	return nil
}

func (f *fakeCloud) authenticate(_ context.Context, username, password string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acct, ok := f.accounts[username]
	if !ok || acct[0] != password {
		return "", errInvalidCredentials
	}
	return acct[1], nil
}

func (f *fakeCloud) notify(ev string) {
	select {
	case f.pushed <- ev:
	default:
	}
}

func (f *fakeCloud) profile(uid string) (profileDocument, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.profiles[uid]
	return doc, ok
}

func (f *fakeCloud) doctorCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.doctors)
}

/* ─── HTTP helpers ───────────────────────────────────────────────────── */

const testUID = "uid-123"

// setupRouter builds a Handler over a fresh store and fake cloud with the
// real routes. signedIn stores a session so bearer "test-token" passes auth.
func setupRouter(t *testing.T, signedIn bool) (*gin.Engine, *Handler, *fakeCloud) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := newTestStore(t)
	cloud := newFakeCloud()
	h := newHandler(store, cloud, time.Second)
	t.Cleanup(h.reconciler.wait)
	if signedIn {
		require.NoError(t, store.setSession(context.Background(), testUID, "test-token"))
	}
	router := gin.New()
	router.ContextWithFallback = true
	h.registerRoutes(router)
	return router, h, cloud
}

// doRequest sends method/path with an optional JSON body and the test token.
func doRequest(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer test-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

// waitPushed waits for the fake cloud to record a push event.
func waitPushed(t *testing.T, f *fakeCloud) string {
	t.Helper()
	select {
	case ev := <-f.pushed:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for cloud push")
		return ""
	}
}
