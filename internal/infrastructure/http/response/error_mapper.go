package response

import (
	"errors"
	"net/http"

	"github.com/yuzvak/retail-coordination-service/internal/domain/checkout"
	domainErrors "github.com/yuzvak/retail-coordination-service/internal/domain/errors"
)

type ErrorMapping struct {
	HTTPStatus int
	Status     Status
	Message    string
}

var errorMappings = map[error]ErrorMapping{
	domainErrors.ErrUnknownCheckout: {
		HTTPStatus: http.StatusNotFound,
		Status:     StatusNotFound,
		Message:    "Checkout not found",
	},
	domainErrors.ErrNoSuchProduct: {
		HTTPStatus: http.StatusNotFound,
		Status:     StatusNotFound,
		Message:    "No product for barcode",
	},
	domainErrors.ErrInsufficientCash: {
		HTTPStatus: http.StatusBadRequest,
		Status:     StatusError,
		Message:    "Cash amount does not cover the total",
	},
	domainErrors.ErrProductNotAvailable: {
		HTTPStatus: http.StatusConflict,
		Status:     StatusConflict,
		Message:    "Product not available in requested amount",
	},
	domainErrors.ErrUnknownStore: {
		HTTPStatus: http.StatusNotFound,
		Status:     StatusNotFound,
		Message:    "Store not known to the enterprise",
	},
	domainErrors.ErrBankUnavailable: {
		HTTPStatus: http.StatusBadGateway,
		Status:     StatusError,
		Message:    "Bank not reachable",
	},
}

// WriteMappedError translates domain errors to HTTP responses. Invalid
// state-machine transitions map to 409 with the legal-state set in the
// message.
func WriteMappedError(w http.ResponseWriter, err error) {
	var transitionErr *checkout.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		WriteError(w, http.StatusConflict, StatusConflict, transitionErr.Error())
		return
	}

	for domainErr, mapping := range errorMappings {
		if errors.Is(err, domainErr) {
			WriteError(w, mapping.HTTPStatus, mapping.Status, mapping.Message)
			return
		}
	}

	WriteError(w, http.StatusInternalServerError, StatusInternalError, "Internal server error")
}
