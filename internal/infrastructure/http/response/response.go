package response

import (
	"encoding/json"
	"net/http"
)

type Status string

const (
	StatusSuccess       Status = "success"
	StatusError         Status = "error"
	StatusNotFound      Status = "not_found"
	StatusConflict      Status = "conflict"
	StatusInternalError Status = "internal_error"
)

type BaseResponse struct {
	Message string `json:"message,omitempty"`
}

type DataResponse[T any] struct {
	BaseResponse
	Data T `json:"data,omitempty"`
}

type ErrorResponse struct {
	BaseResponse
	Status Status `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

type ValidationErrorResponse struct {
	BaseResponse
	Errors map[string]string `json:"errors,omitempty"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

func WriteSuccess[T any](w http.ResponseWriter, data T) {
	WriteJSON(w, http.StatusOK, DataResponse[T]{Data: data})
}

func WriteError(w http.ResponseWriter, statusCode int, status Status, message string) {
	WriteJSON(w, statusCode, ErrorResponse{
		BaseResponse: BaseResponse{Message: message},
		Status:       status,
	})
}

func WriteValidationError(w http.ResponseWriter, message string, errors map[string]string) {
	WriteJSON(w, http.StatusBadRequest, ValidationErrorResponse{
		BaseResponse: BaseResponse{Message: message},
		Errors:       errors,
	})
}
