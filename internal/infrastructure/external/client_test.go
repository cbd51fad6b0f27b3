package external

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domainErrors "github.com/dariemcarlosdev/secure-clean-api/internal/domain/errors"
	pkgerrors "github.com/dariemcarlosdev/secure-clean-api/pkg/errors"
)

func TestClient_Forward(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/items/7", r.URL.Path)
		assert.Equal(t, "lang=en", r.URL.RawQuery)
		assert.Equal(t, "req-1", r.Header.Get("X-Request-ID"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"id":7}`))
	}))
	defer upstream.Close()

	client, err := NewClient(map[string]string{"Catalog": upstream.URL + "/v2/"}, time.Second, zap.NewNop())
	require.NoError(t, err)

	header := http.Header{}
	header.Set("X-Request-ID", "req-1")
	resp, err := client.Forward(context.Background(), "catalog", "/items/7", "lang=en", header)

	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "application/json", resp.ContentType)
	assert.JSONEq(t, `{"id":7}`, string(resp.Body))
}

func TestClient_UnknownUpstream(t *testing.T) {
	client, err := NewClient(nil, 0, zap.NewNop())
	require.NoError(t, err)

	_, err = client.Forward(context.Background(), "missing", "/", "", nil)

	assert.ErrorIs(t, err, domainErrors.ErrUpstreamNotFound)
}

func TestClient_Timeout(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer upstream.Close()

	client, err := NewClient(map[string]string{"slow": upstream.URL}, 20*time.Millisecond, zap.NewNop())
	require.NoError(t, err)

	_, err = client.Forward(context.Background(), "slow", "/", "", nil)

	var appErr *pkgerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.ErrTimeout, appErr.Code())
}

func TestNewClient_RejectsBadURL(t *testing.T) {
	_, err := NewClient(map[string]string{"bad": "not a url"}, 0, zap.NewNop())

	assert.Error(t, err)
}
