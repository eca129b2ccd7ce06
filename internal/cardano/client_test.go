package cardano

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/likhilliki/EcoPulse/internal/config"
	"github.com/likhilliki/EcoPulse/pkg/errors"
	"github.com/likhilliki/EcoPulse/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	_ = logger.Init("error", "text", "stderr")
}

func newTestClient(url string) *Client {
	return NewClient(&config.BlockfrostConfig{
		BaseURL:        url,
		ProjectID:      "test-project",
		TimeoutSeconds: 5,
	})
}

func TestSubmitTransaction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/tx/submit", r.URL.Path)
		assert.Equal(t, "application/cbor", r.Header.Get("Content-Type"))
		assert.Equal(t, "test-project", r.Header.Get("project_id"))

		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, body)

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`"abc123hash"`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	txHash, err := client.SubmitTransaction(context.Background(), "deadbeef")
	require.NoError(t, err)
	assert.Equal(t, "abc123hash", txHash)
}

func TestSubmitTransactionRejectsBadHex(t *testing.T) {
	client := newTestClient("http://unused")

	_, err := client.SubmitTransaction(context.Background(), "not-hex")
	require.Error(t, err)
	assert.Equal(t, errors.ErrInvalidInput, errors.Code(err))
}

func TestSubmitTransactionSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"invalid transaction"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.SubmitTransaction(context.Background(), "deadbeef")
	require.Error(t, err)
	assert.Equal(t, errors.ErrTxSubmit, errors.Code(err))
	assert.Contains(t, err.Error(), "invalid transaction")
}
