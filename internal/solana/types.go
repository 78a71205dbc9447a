package solana

// LamportsPerSol is the number of base units in one SOL.
const LamportsPerSol = 1e9

// SignatureInfo is one entry from getSignaturesForAddress, newest first.
type SignatureInfo struct {
	Signature string  `json:"signature"`
	Slot      int64   `json:"slot"`
	BlockTime int64   `json:"blockTime"` // Unix seconds; 0 when the node has no timestamp
	Err       *string `json:"err,omitempty"`
}

// TransactionMeta holds the balance-level metadata of a confirmed transaction.
type TransactionMeta struct {
	Fee          uint64   `json:"fee"` // Lamports
	PreBalances  []uint64 `json:"preBalances"`
	PostBalances []uint64 `json:"postBalances"`
	Err          *string  `json:"err,omitempty"`
}

// TransactionDetail is a confirmed transaction as returned by getTransaction.
type TransactionDetail struct {
	Signature string          `json:"signature"`
	Slot      int64           `json:"slot"`
	BlockTime int64           `json:"blockTime"`
	Meta      TransactionMeta `json:"meta"`
}

// TokenAccount is one SPL token holding of a wallet.
type TokenAccount struct {
	Mint     string  `json:"mint"`
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	Decimals int     `json:"decimals"`
	Amount   uint64  `json:"amount"`   // Raw base units
	UIAmount float64 `json:"uiAmount"` // Amount / 10^decimals
}

// AccountInfo is the subset of getAccountInfo the pipeline needs.
type AccountInfo struct {
	Lamports   uint64 `json:"lamports"`
	Owner      string `json:"owner"`
	Executable bool   `json:"executable"`
}

// ConfirmResult is the terminal status of a submitted transaction.
// Err is nil on success and carries the chain error detail otherwise.
type ConfirmResult struct {
	Err *string `json:"err,omitempty"`
}
