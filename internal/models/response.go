package models

import "time"

// Response envelopes for the HTTP API. Every endpoint answers with either a
// SuccessResponse carrying the payload or an ErrorResponse carrying a stable
// machine-readable code. Clients branch on Error.Code; Message wording is
// free to change.

type SuccessResponse struct {
	Success bool          `json:"success"`
	Data    any           `json:"data"`
	Meta    *ResponseMeta `json:"meta,omitempty"`
}

type ErrorResponse struct {
	Success bool     `json:"success"`
	Error   APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ResponseMeta struct {
	Timestamp time.Time `json:"timestamp"`
}

func CreateSuccessResponse(data any) SuccessResponse {
	return SuccessResponse{
		Success: true,
		Data:    data,
		Meta:    &ResponseMeta{Timestamp: time.Now().UTC()},
	}
}

func CreateErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Success: false,
		Error:   APIError{Code: code, Message: message},
	}
}
