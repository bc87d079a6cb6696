package httpapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/mandaditos/internal/client/models"
	"github.com/dmitrijs2005/mandaditos/internal/client/remote"
	"github.com/dmitrijs2005/mandaditos/internal/common"
	"github.com/dmitrijs2005/mandaditos/internal/logging"
	sm "github.com/dmitrijs2005/mandaditos/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, docs *fakeDocuments, auth *fakeAuth) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(New(docs, auth, []string{"https://app.example.com"}, logging.NewNop()))
	t.Cleanup(ts.Close)
	return ts
}

func TestPing_IsPublicAndNotCached(t *testing.T) {
	ts := newTestServer(t, newFakeDocuments(), &fakeAuth{})

	resp, err := http.Get(ts.URL + "/api/v1/ping")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
}

func TestCollections_RequireToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		authErr error
		want    string
	}{
		{name: "missing", want: "missing token"},
		{name: "not bearer", header: "Basic abc", want: "missing token"},
		{name: "wrong", header: "Bearer nope", want: "invalid token"},
		{name: "expired", header: "Bearer tok", authErr: common.ErrTokenExpired, want: "token expired"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, newFakeDocuments(), &fakeAuth{token: "tok", err: tt.authErr})

			req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/collections/errands", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.want, strings.TrimSpace(string(body)))
		})
	}
}

func TestCreate_Errors(t *testing.T) {
	ts := newTestServer(t, newFakeDocuments(), &fakeAuth{token: "tok"})

	post := func(path, body string) int {
		req, _ := http.NewRequest(http.MethodPost, ts.URL+path, strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer tok")
		req.Header.Set("Content-Type", "application/json")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusBadRequest, post("/api/v1/collections/errands", `{"payload":{}}`))
	assert.Equal(t, http.StatusBadRequest, post("/api/v1/collections/errands", `{`))
	assert.Equal(t, http.StatusBadRequest, post("/api/v1/collections/users", `{"originId":"o","payload":{}}`))
	assert.Equal(t, http.StatusCreated, post("/api/v1/collections/errands", `{"originId":"o","payload":{"total":1}}`))
}

func TestCORS_Preflight(t *testing.T) {
	ts := newTestServer(t, newFakeDocuments(), &fakeAuth{})

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/api/v1/collections/errands", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "https://app.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRoundTrip_ThroughClient(t *testing.T) {
	docs := newFakeDocuments()
	ts := newTestServer(t, docs, &fakeAuth{key: "secret", token: "tok"})
	ctx := context.Background()

	c := remote.NewHTTPClient(ts.URL, remote.Credentials{Device: "phone", AccessKey: "secret"})
	require.NoError(t, c.Ping(ctx))
	require.NoError(t, c.Login(ctx, remote.Credentials{Device: "phone", AccessKey: "secret"}))

	id, err := c.Create(ctx, models.KindErrand, "o1", models.Payload{"date": "2024-05-01", "deliveryFee": 3})
	require.NoError(t, err)

	again, err := c.Create(ctx, models.KindErrand, "o1", models.Payload{"date": "2024-05-01", "deliveryFee": 4})
	require.NoError(t, err)
	assert.Equal(t, id, again)

	require.NoError(t, c.Update(ctx, models.KindErrand, id, models.Payload{"paid": true}))
	assert.ErrorIs(t, c.Update(ctx, models.KindErrand, "missing", models.Payload{}), remote.ErrNotFound)

	list, err := c.List(ctx, models.KindErrand, remote.Filter{Field: "date", Value: "2024-05-01"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].RemoteID)
	assert.Equal(t, true, list[0].Payload["paid"])

	key, n, err := c.Export(ctx, models.KindErrand)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, key, "errands")

	require.NoError(t, c.Delete(ctx, models.KindErrand, id))
	assert.ErrorIs(t, c.Delete(ctx, models.KindErrand, id), remote.ErrNotFound)
}

func TestLogin_WrongKey(t *testing.T) {
	ts := newTestServer(t, newFakeDocuments(), &fakeAuth{key: "secret", token: "tok"})
	err := remote.NewHTTPClient(ts.URL, remote.Credentials{}).Login(context.Background(), remote.Credentials{Device: "phone", AccessKey: "bad"})
	assert.ErrorIs(t, err, remote.ErrUnauthorized)
}

type recordingLogger struct {
	logging.Logger

	mu     sync.Mutex
	errors []string
}

func (l *recordingLogger) Error(_ context.Context, msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

func (l *recordingLogger) With(...any) logging.Logger { return l }

func (l *recordingLogger) messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.errors...)
}

func TestList_EncodeFailureIsLogged(t *testing.T) {
	docs := newFakeDocuments()
	docs.docs["d1"] = &sm.Document{ID: "d1", Collection: common.CollectionErrands, OriginID: "o1", Payload: map[string]any{"bad": make(chan int)}}
	logger := &recordingLogger{Logger: logging.NewNop()}

	ts := httptest.NewServer(New(docs, &fakeAuth{token: "tok"}, []string{"*"}, logger))
	t.Cleanup(ts.Close)

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/collections/errands", nil)
	req.Header.Set("Authorization", "Bearer tok")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Contains(t, logger.messages(), "failed to encode response")
}
