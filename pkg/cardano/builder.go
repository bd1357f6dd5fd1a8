package cardano

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tokenraffle/backend/config"
)

// Builder talks to the operating wallet's transaction service. The service
// holds the signing key; this client only moves serialized transactions back
// and forth.
type Builder struct {
	endpoint string
	sender   string
	client   *http.Client
}

func NewBuilder(cfg config.AppWalletConfigs) *Builder {
	return &Builder{
		endpoint: cfg.TxEndpoint,
		sender:   cfg.Address,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

type buildRequest struct {
	Sender   string    `json:"sender"`
	Payments []Payment `json:"payments"`
}

type txResponse struct {
	Tx     string `json:"tx"`
	TxHash string `json:"tx_hash"`
	Error  string `json:"error"`
}

func (b *Builder) Build(ctx context.Context, payments []Payment) (UnsignedTx, error) {
	resp, err := b.post(ctx, "/build", buildRequest{Sender: b.sender, Payments: payments})
	if err != nil {
		return nil, err
	}

	return UnsignedTx(resp.Tx), nil
}

func (b *Builder) Sign(ctx context.Context, tx UnsignedTx) (SignedTx, error) {
	resp, err := b.post(ctx, "/sign", map[string]string{"tx": string(tx)})
	if err != nil {
		return nil, err
	}

	return SignedTx(resp.Tx), nil
}

func (b *Builder) Submit(ctx context.Context, tx SignedTx) (string, error) {
	resp, err := b.post(ctx, "/submit", map[string]string{"tx": string(tx)})
	if err != nil {
		return "", err
	}

	return resp.TxHash, nil
}

func (b *Builder) post(ctx context.Context, path string, body any) (*txResponse, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, b.endpoint+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	result := txResponse{}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("invalid response from %s: %s", path, raw)
	}

	// Error messages pass through verbatim so size-exceeded reports keep
	// their max/actual figures for the payout batcher.
	if result.Error != "" {
		return nil, fmt.Errorf("%s", result.Error)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", httpResp.StatusCode, path)
	}

	return &result, nil
}
