package blockfrost

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tokenraffle/backend/config"
)

// IEndpoint is the chain indexer consumed by the scoring, snapshot, and payout
// flows. Wallet identifiers accepted by GetWalletData may be a handle, an
// address, or a stake key; the response always carries the canonical stake key.
type IEndpoint interface {
	GetWalletData(ctx context.Context, identifier string, opts GetWalletDataOptions) (*WalletData, error)
	GetPolicyData(ctx context.Context, policyID string, withRanks bool) (*PolicyData, error)
	GetTokenData(ctx context.Context, tokenID string) (*TokenData, error)

	// GetTokenOwners is paginated with a fixed page size; a page holding fewer
	// owners than the page size is the last one.
	GetTokenOwners(ctx context.Context, tokenID string, page int) (*TokenOwners, error)

	// GetStakePool fails with ErrNotFound for an unknown pool id.
	GetStakePool(ctx context.Context, poolID string) (*StakePool, error)

	GetTransactionData(ctx context.Context, txHash string) (*TransactionData, error)
}

// ErrNotFound reports a missing component (pool, transaction, wallet).
type ErrNotFound struct {
	Component string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("the requested component has not been found: %s", e.Component)
}

type Endpoint struct {
	endpoint   string
	projectKey string
	client     *http.Client
}

func New(cfg config.BlockfrostConfigs) *Endpoint {
	return &Endpoint{
		endpoint:   cfg.Endpoint,
		projectKey: cfg.ProjectKey,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
}

func (e *Endpoint) GetWalletData(
	ctx context.Context, identifier string, opts GetWalletDataOptions,
) (*WalletData, error) {
	query := url.Values{}
	if opts.WithStakePool {
		query.Set("with_stake_pool", "true")
	}
	if opts.WithTokens {
		query.Set("with_tokens", "true")
	}

	result := WalletData{}
	if err := e.get(ctx, "/wallet/"+identifier, query, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (e *Endpoint) GetPolicyData(ctx context.Context, policyID string, withRanks bool) (*PolicyData, error) {
	query := url.Values{}
	if withRanks {
		query.Set("with_ranks", "true")
	}

	result := PolicyData{}
	if err := e.get(ctx, "/policy/"+policyID, query, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (e *Endpoint) GetTokenData(ctx context.Context, tokenID string) (*TokenData, error) {
	result := TokenData{}
	if err := e.get(ctx, "/token/"+tokenID, nil, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (e *Endpoint) GetTokenOwners(ctx context.Context, tokenID string, page int) (*TokenOwners, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))

	result := TokenOwners{}
	if err := e.get(ctx, "/token/"+tokenID+"/owners", query, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (e *Endpoint) GetStakePool(ctx context.Context, poolID string) (*StakePool, error) {
	result := StakePool{}
	if err := e.get(ctx, "/pool/"+poolID, nil, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (e *Endpoint) GetTransactionData(ctx context.Context, txHash string) (*TransactionData, error) {
	result := TransactionData{}
	if err := e.get(ctx, "/transaction/"+txHash, nil, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (e *Endpoint) get(ctx context.Context, path string, query url.Values, result any) error {
	u := e.endpoint + path
	if len(query) > 0 {
		u = u + "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("project_id", e.projectKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound{Component: path}
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d from %s: %s", resp.StatusCode, path, body)
	}

	return json.NewDecoder(resp.Body).Decode(result)
}
