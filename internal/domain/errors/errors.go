package errors

import (
	"errors"
)

var (
	ErrNoSuchProduct       = errors.New("no product registered for barcode")
	ErrProductNotAvailable = errors.New("product not available in requested amount")

	ErrInsufficientCash = errors.New("cash amount does not cover the running total")

	ErrUnknownStore    = errors.New("store not known to the enterprise")
	ErrUnknownCheckout = errors.New("checkout not registered at this store")

	ErrBankUnavailable = errors.New("bank not reachable")

	ErrBusClosed = errors.New("event bus closed")
)
