package billing

import "errors"

var (
	ErrPaymentNotFound = errors.New("payment record not found")
	// ErrLedgerConflict reports that a record for the transaction already exists.
	ErrLedgerConflict = errors.New("payment record already exists for transaction")
)
