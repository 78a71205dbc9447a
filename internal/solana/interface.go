package solana

import "context"

// Provider is the blockchain data provider consumed by the trading pipeline.
// Implemented by Client (live JSON-RPC) and MockClient (simulated chain).
type Provider interface {
	// GetSignaturesForAddress returns up to limit signatures for an address,
	// newest first.
	GetSignaturesForAddress(ctx context.Context, address string, limit int) ([]SignatureInfo, error)

	// GetTransaction fetches a confirmed transaction by signature.
	GetTransaction(ctx context.Context, signature string) (*TransactionDetail, error)

	// GetTokenAccountsByOwner returns the SPL token holdings of a wallet.
	GetTokenAccountsByOwner(ctx context.Context, address string) ([]TokenAccount, error)

	// GetAccountInfo fetches basic account state.
	GetAccountInfo(ctx context.Context, address string) (*AccountInfo, error)

	// SendTransaction submits a signed, base64-encoded transaction and
	// returns its signature.
	SendTransaction(ctx context.Context, signedTxBase64 string) (string, error)

	// ConfirmTransaction blocks until the transaction reaches a terminal
	// status or ctx is done.
	ConfirmTransaction(ctx context.Context, txid string) (*ConfirmResult, error)
}
