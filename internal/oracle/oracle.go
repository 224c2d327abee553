package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"launchpad/internal/catalog"
	"launchpad/internal/models"
	"launchpad/internal/telemetry"
)

const (
	DefaultRPCURL  = "https://api.mainnet-beta.solana.com"
	DefaultTimeout = 10 * time.Second

	tokenProgram     = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	token2022Program = "TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb"
)

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

// RPCError is an error object returned by the node
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Client resolves token mints through a Solana JSON-RPC node.
// Every lookup is a single attempt.
type Client struct {
	httpClient *http.Client
	rpcURL     string
	requestID  atomic.Int64
	logger     logrus.FieldLogger
}

var _ catalog.Oracle = (*Client)(nil)

// NewClient creates a new oracle client
func NewClient(rpcURL string, timeout time.Duration, logger logrus.FieldLogger) *Client {
	if rpcURL == "" {
		rpcURL = DefaultRPCURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		rpcURL:     rpcURL,
		logger:     logger,
	}
}

// MintInfo fetches the decimals, supply and authorities of a token mint
func (c *Client) MintInfo(ctx context.Context, mint string) (*models.TokenInfo, error) {
	start := time.Now()
	info, err := c.mintInfo(ctx, mint)
	telemetry.OracleLatency.Observe(time.Since(start).Seconds())

	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, catalog.ErrUnknownMint):
		result = "not_mint"
	default:
		result = "error"
	}
	telemetry.OracleLookups.WithLabelValues(result).Inc()
	return info, err
}

func (c *Client) mintInfo(ctx context.Context, mint string) (*models.TokenInfo, error) {
	if err := ValidateAddress(mint); err != nil {
		return nil, fmt.Errorf("%w: %v", catalog.ErrUnknownMint, err)
	}

	result, err := c.call(ctx, "getAccountInfo", []any{
		mint,
		map[string]string{"encoding": "jsonParsed", "commitment": "confirmed"},
	})
	if err != nil {
		return nil, err
	}

	value := gjson.GetBytes(result, "value")
	if !value.Exists() || value.Type == gjson.Null {
		return nil, fmt.Errorf("%w: account %s not found", catalog.ErrUnknownMint, mint)
	}

	owner := value.Get("owner").String()
	if owner != tokenProgram && owner != token2022Program {
		return nil, fmt.Errorf("%w: account %s is owned by %s", catalog.ErrUnknownMint, mint, owner)
	}

	parsed := value.Get("data.parsed")
	if parsed.Get("type").String() != "mint" {
		return nil, fmt.Errorf("%w: account %s is a %q account", catalog.ErrUnknownMint, mint, parsed.Get("type").String())
	}

	fields := parsed.Get("info")
	supply := fields.Get("supply")
	if !supply.Exists() || !fields.Get("decimals").Exists() {
		return nil, fmt.Errorf("mint %s response is missing decimals or supply", mint)
	}

	info := &models.TokenInfo{
		Mint:     mint,
		Decimals: int(fields.Get("decimals").Int()),
		Supply:   supply.String(),
	}
	if v := fields.Get("mintAuthority"); v.Type == gjson.String {
		s := v.String()
		info.MintAuthority = &s
	}
	if v := fields.Get("freezeAuthority"); v.Type == gjson.String {
		s := v.String()
		info.FreezeAuthority = &s
	}

	c.logger.WithFields(logrus.Fields{
		"mint":     mint,
		"decimals": info.Decimals,
	}).Debug("Resolved token mint")
	return info, nil
}

func (c *Client) call(ctx context.Context, method string, params []any) ([]byte, error) {
	body, err := json.Marshal(request{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http status %d: %s", resp.StatusCode, string(respBody))
	}
	if !gjson.ValidBytes(respBody) {
		return nil, fmt.Errorf("invalid JSON response from %s", method)
	}

	if rpcErr := gjson.GetBytes(respBody, "error"); rpcErr.Exists() && rpcErr.Type != gjson.Null {
		return nil, &RPCError{
			Code:    int(rpcErr.Get("code").Int()),
			Message: rpcErr.Get("message").String(),
		}
	}
	return []byte(gjson.GetBytes(respBody, "result").Raw), nil
}

// ValidateAddress checks that s is a base58 encoded 32 byte public key
func ValidateAddress(s string) error {
	raw, err := base58.Decode(s)
	if err != nil {
		return fmt.Errorf("invalid base58 address: %w", err)
	}
	if len(raw) != 32 {
		return fmt.Errorf("address decodes to %d bytes, expected 32", len(raw))
	}
	return nil
}
