package cardano

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/likhilliki/EcoPulse/internal/config"
	"github.com/likhilliki/EcoPulse/pkg/errors"
	"github.com/likhilliki/EcoPulse/pkg/logger"
)

// Client relays already-signed transactions to the Blockfrost API.
// Transaction building and signing happen in the user's browser
// wallet; the server never touches key material.
type Client struct {
	baseURL   string
	projectID string
	http      *http.Client
}

func NewClient(cfg *config.BlockfrostConfig) *Client {
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		projectID: cfg.ProjectID,
		http: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// SubmitTransaction posts hex-encoded signed CBOR to /tx/submit and
// returns the transaction hash reported by Blockfrost.
func (c *Client) SubmitTransaction(ctx context.Context, signedTxCBOR string) (string, error) {
	raw, err := hex.DecodeString(signedTxCBOR)
	if err != nil {
		return "", errors.New(errors.ErrInvalidInput, "signed transaction is not valid hex", err)
	}

	url := c.baseURL + "/tx/submit"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return "", errors.New(errors.ErrTxSubmit, "failed to build submit request", err)
	}
	req.Header.Set("Content-Type", "application/cbor")
	req.Header.Set("project_id", c.projectID)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.New(errors.ErrTxSubmit, "failed to reach Blockfrost", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.New(errors.ErrTxSubmit, "failed to read Blockfrost response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", errors.New(errors.ErrTxSubmit,
			fmt.Sprintf("Blockfrost returned %d: %s", resp.StatusCode, string(body)), nil)
	}

	// Blockfrost answers with the bare transaction hash, sometimes
	// wrapped in quotes.
	txHash := strings.Trim(strings.TrimSpace(string(body)), `"`)

	logger.WithFields(map[string]interface{}{
		"tx_hash": txHash,
	}).Info("Transaction submitted")

	return txHash, nil
}
