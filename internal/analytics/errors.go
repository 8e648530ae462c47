package analytics

import "fmt"

// ValidationError reports a malformed transaction in a batch. The whole batch
// is rejected when one is returned.
type ValidationError struct {
	TransactionID string
	Field         string
	Reason        string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.TransactionID == "" {
		return fmt.Sprintf("invalid transaction: %s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid transaction %q: %s %s", e.TransactionID, e.Field, e.Reason)
}

func invalid(id, field, reason string) *ValidationError {
	return &ValidationError{TransactionID: id, Field: field, Reason: reason}
}
