// Package httpx holds the JSON envelope shared by every API response.
package httpx

import (
	"encoding/json"
	"net/http"
)

// Envelope statuses.
const (
	StatusSuccess = "success"
	StatusFail    = "fail"  // client fault, 4xx
	StatusError   = "error" // server fault, 5xx
)

// Envelope is the body of every JSON API response.
type Envelope struct {
	Status     string `json:"status"`
	Data       any    `json:"data"`
	Pagination any    `json:"pagination,omitempty"`
}

// ErrorResponse is written for failed requests; it never carries data.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			// best-effort error response; avoid writing partial JSON
			http.Error(w, `{"status":"error","message":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		// nothing we can do at this point
		_ = err
	}
}

// Success writes data wrapped in a success envelope.
func Success(w http.ResponseWriter, status int, data any) {
	JSON(w, status, Envelope{Status: StatusSuccess, Data: data})
}

// Page writes a list with its pagination block.
func Page(w http.ResponseWriter, data, pagination any) {
	JSON(w, http.StatusOK, Envelope{Status: StatusSuccess, Data: data, Pagination: pagination})
}

func JSONError(w http.ResponseWriter, status int, msg string, details any) {
	st := StatusFail
	if status >= http.StatusInternalServerError {
		st = StatusError
	}
	JSON(w, status, ErrorResponse{Status: st, Message: msg, Details: details})
}
