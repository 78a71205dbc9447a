package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

const tokenProgramID = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"

// Client talks JSON-RPC to a Solana node.
type Client struct {
	rpcURL     string
	commitment string
	httpClient *http.Client
	limiter    *RateLimiter
}

// NewClient creates a new RPC client.
func NewClient(rpcURL, commitment string) *Client {
	if commitment == "" {
		commitment = "confirmed"
	}
	return &Client{
		rpcURL:     rpcURL,
		commitment: commitment,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    NewRateLimiter(40, time.Second),
	}
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error,omitempty"`
}

// call issues one JSON-RPC request and returns the raw result.
func (c *Client) call(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("error encoding rpc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error calling %s: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("RPC error: %s", string(body))
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return nil, fmt.Errorf("error parsing rpc response: %w", err)
	}
	if rpcResp.Error != nil {
		return nil, fmt.Errorf("RPC error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}

	return rpcResp.Result, nil
}

// GetSignaturesForAddress returns up to limit signatures, newest first.
func (c *Client) GetSignaturesForAddress(ctx context.Context, address string, limit int) ([]SignatureInfo, error) {
	if limit <= 0 {
		limit = 1000
	}
	result, err := c.call(ctx, "getSignaturesForAddress", address, map[string]interface{}{
		"limit":      limit,
		"commitment": c.commitment,
	})
	if err != nil {
		return nil, err
	}

	var sigs []SignatureInfo
	if err := json.Unmarshal(result, &sigs); err != nil {
		return nil, fmt.Errorf("error parsing signatures: %w", err)
	}
	return sigs, nil
}

// GetTransaction fetches a confirmed transaction by signature.
func (c *Client) GetTransaction(ctx context.Context, signature string) (*TransactionDetail, error) {
	result, err := c.call(ctx, "getTransaction", signature, map[string]interface{}{
		"commitment":                     c.commitment,
		"maxSupportedTransactionVersion": 0,
	})
	if err != nil {
		return nil, err
	}
	if string(result) == "null" {
		return nil, fmt.Errorf("transaction %s not found", signature)
	}

	var raw struct {
		Slot      int64           `json:"slot"`
		BlockTime int64           `json:"blockTime"`
		Meta      TransactionMeta `json:"meta"`
	}
	if err := json.Unmarshal(result, &raw); err != nil {
		return nil, fmt.Errorf("error parsing transaction: %w", err)
	}

	return &TransactionDetail{
		Signature: signature,
		Slot:      raw.Slot,
		BlockTime: raw.BlockTime,
		Meta:      raw.Meta,
	}, nil
}

// GetTokenAccountsByOwner returns the wallet's SPL token holdings.
func (c *Client) GetTokenAccountsByOwner(ctx context.Context, address string) ([]TokenAccount, error) {
	result, err := c.call(ctx, "getTokenAccountsByOwner", address,
		map[string]interface{}{"programId": tokenProgramID},
		map[string]interface{}{"encoding": "jsonParsed", "commitment": c.commitment},
	)
	if err != nil {
		return nil, err
	}

	var raw struct {
		Value []struct {
			Account struct {
				Data struct {
					Parsed struct {
						Info struct {
							Mint        string `json:"mint"`
							TokenAmount struct {
								Amount   string  `json:"amount"`
								Decimals int     `json:"decimals"`
								UIAmount float64 `json:"uiAmount"`
							} `json:"tokenAmount"`
						} `json:"info"`
					} `json:"parsed"`
				} `json:"data"`
			} `json:"account"`
		} `json:"value"`
	}
	if err := json.Unmarshal(result, &raw); err != nil {
		return nil, fmt.Errorf("error parsing token accounts: %w", err)
	}

	accounts := make([]TokenAccount, 0, len(raw.Value))
	for _, v := range raw.Value {
		info := v.Account.Data.Parsed.Info
		amount, _ := strconv.ParseUint(info.TokenAmount.Amount, 10, 64)
		accounts = append(accounts, TokenAccount{
			Mint:     info.Mint,
			Decimals: info.TokenAmount.Decimals,
			Amount:   amount,
			UIAmount: info.TokenAmount.UIAmount,
		})
	}
	return accounts, nil
}

// GetAccountInfo fetches basic account state.
func (c *Client) GetAccountInfo(ctx context.Context, address string) (*AccountInfo, error) {
	result, err := c.call(ctx, "getAccountInfo", address, map[string]interface{}{
		"commitment": c.commitment,
	})
	if err != nil {
		return nil, err
	}

	var raw struct {
		Value *AccountInfo `json:"value"`
	}
	if err := json.Unmarshal(result, &raw); err != nil {
		return nil, fmt.Errorf("error parsing account info: %w", err)
	}
	if raw.Value == nil {
		return nil, fmt.Errorf("account %s not found", address)
	}
	return raw.Value, nil
}

// SendTransaction submits a signed, base64-encoded transaction.
func (c *Client) SendTransaction(ctx context.Context, signedTxBase64 string) (string, error) {
	result, err := c.call(ctx, "sendTransaction", signedTxBase64, map[string]interface{}{
		"encoding":   "base64",
		"commitment": c.commitment,
	})
	if err != nil {
		return "", err
	}

	var txid string
	if err := json.Unmarshal(result, &txid); err != nil {
		return "", fmt.Errorf("error parsing transaction signature: %w", err)
	}
	return txid, nil
}

// ConfirmTransaction polls signature status until the transaction reaches the
// configured commitment or ctx is done. The caller bounds the wait via ctx.
func (c *Client) ConfirmTransaction(ctx context.Context, txid string) (*ConfirmResult, error) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		result, err := c.call(ctx, "getSignatureStatuses", []string{txid})
		if err != nil {
			return nil, err
		}

		var raw struct {
			Value []*struct {
				ConfirmationStatus string  `json:"confirmationStatus"`
				Err                *string `json:"err,omitempty"`
			} `json:"value"`
		}
		if err := json.Unmarshal(result, &raw); err != nil {
			return nil, fmt.Errorf("error parsing signature status: %w", err)
		}

		if len(raw.Value) > 0 && raw.Value[0] != nil {
			status := raw.Value[0]
			if status.Err != nil {
				return &ConfirmResult{Err: status.Err}, nil
			}
			if status.ConfirmationStatus == c.commitment || status.ConfirmationStatus == "finalized" {
				return &ConfirmResult{}, nil
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
