package ledger

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by a Recorder after Close.
var ErrClosed = errors.New("ledger: recorder closed")

// StorageError represents an error from the storage backend.
type StorageError struct {
	Driver    string // database/sql driver name
	Operation string // operation that failed ("open", "store", "query", ...)
	Cause     error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("ledger storage error [driver=%s, operation=%s]: %v", e.Driver, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

func storageError(driver, operation string, cause error) *StorageError {
	return &StorageError{Driver: driver, Operation: operation, Cause: cause}
}
