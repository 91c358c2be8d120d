package postgres

// PostgreSQL Error Codes
const (
	// PgErrorCodeUniqueViolation is the PostgreSQL error code for unique constraint violations
	PgErrorCodeUniqueViolation = "23505"
)

// Constraint Names
const (
	// ConstraintWalletTxReference backs ledger idempotency on reference ids
	ConstraintWalletTxReference = "uq_wallet_tx_reference"
)

// Error Messages - Transaction Operations
const (
	ErrMsgFailedToBeginTransaction  = "failed to begin transaction"
	ErrMsgFailedToCommitTransaction = "failed to commit transaction"
)

// Error Messages - Event Operations
const (
	ErrMsgFailedToInsertEvent      = "failed to insert event"
	ErrMsgFailedToGetEvent         = "failed to get event"
	ErrMsgFailedToQueryEvents      = "failed to query events"
	ErrMsgFailedToMarshalEventData = "failed to marshal event attributes"
)

// Error Messages - User State Operations
const (
	ErrMsgFailedToGetUserState     = "failed to get user state"
	ErrMsgFailedToSaveUserState    = "failed to save user state"
	ErrMsgFailedToQueryStateCounts = "failed to query achievement counts"
	ErrMsgFailedToMarshalUserState = "failed to marshal user state"
	ErrMsgFailedToDecodeUserState  = "failed to decode user state"
)

// Error Messages - Rule Operations
const (
	ErrMsgFailedToInsertRule  = "failed to insert rule"
	ErrMsgFailedToUpdateRule  = "failed to update rule"
	ErrMsgFailedToDeleteRule  = "failed to delete rule"
	ErrMsgFailedToGetRule     = "failed to get rule"
	ErrMsgFailedToQueryRules  = "failed to query rules"
	ErrMsgFailedToDecodeRule  = "failed to decode rule"
	ErrMsgFailedToMarshalRule = "failed to marshal rule"
)

// Error Messages - Entity Operations
const (
	ErrMsgFailedToInsertEntity  = "failed to insert %s"
	ErrMsgFailedToUpdateEntity  = "failed to update %s"
	ErrMsgFailedToDeleteEntity  = "failed to delete %s"
	ErrMsgFailedToGetEntity     = "failed to get %s"
	ErrMsgFailedToQueryEntities = "failed to query %s rows"
)

// Error Messages - Wallet Operations
const (
	ErrMsgFailedToInsertLedgerEntry = "failed to insert ledger entry"
	ErrMsgFailedToUpdateBalance     = "failed to update balance"
	ErrMsgFailedToGetBalance        = "failed to get balance"
	ErrMsgFailedToQueryTransactions = "failed to query transactions"
	ErrMsgFailedToQueryBalances     = "failed to query balances"
	ErrMsgFailedToSumLedgerWindow   = "failed to sum ledger window"
)

// Error Messages - Reward History Operations
const (
	ErrMsgFailedToAppendHistory = "failed to append reward history"
	ErrMsgFailedToCheckHistory  = "failed to check reward history"
	ErrMsgFailedToQueryHistory  = "failed to query reward history"
	ErrMsgFailedToCountHistory  = "failed to count reward history"
)

// Error Messages - Webhook Operations
const (
	ErrMsgFailedToInsertWebhook = "failed to insert webhook"
	ErrMsgFailedToUpdateWebhook = "failed to update webhook"
	ErrMsgFailedToDeleteWebhook = "failed to delete webhook"
	ErrMsgFailedToGetWebhook    = "failed to get webhook"
	ErrMsgFailedToQueryWebhooks = "failed to query webhooks"
)
