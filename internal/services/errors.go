package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/diewo77/go-pos/validation"
)

// Kind classifies an AppError for the transport layer.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindStock
	KindUnexpected
)

// AppError is a domain error that carries enough to answer the caller.
// Code is a stable identifier that can be translated; Message, when set,
// is already specific to the request (e.g. names the product).
type AppError struct {
	Kind    Kind
	Code    string
	Message string
	Details any
	Err     error
}

func (e *AppError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Code
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *AppError) Unwrap() error { return e.Err }

// Status is the HTTP status for the error kind.
func (e *AppError) Status() int {
	switch e.Kind {
	case KindValidation, KindStock:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ValidationError reports malformed input; v holds field → code.
func ValidationError(code string, v validation.Violations) *AppError {
	e := &AppError{Kind: KindValidation, Code: code}
	if !v.Empty() {
		e.Details = v
	}
	return e
}

// NotFoundError reports an unknown product or invoice.
func NotFoundError(code, message string) *AppError {
	return &AppError{Kind: KindNotFound, Code: code, Message: message}
}

// StockDetails describes an insufficient stock failure.
type StockDetails struct {
	ProductID uint   `json:"productId"`
	Product   string `json:"product"`
	Remaining int    `json:"remaining"`
	Requested int    `json:"requested"`
}

// StockError reports that a product cannot cover the requested quantity.
func StockError(d StockDetails) *AppError {
	return &AppError{
		Kind:    KindStock,
		Code:    "insufficient_stock",
		Message: fmt.Sprintf("Insufficient stock for %q. Only %d items available, %d requested", d.Product, d.Remaining, d.Requested),
		Details: d,
	}
}

// Unexpected wraps an infrastructure failure; its details never reach the caller.
func Unexpected(err error) *AppError {
	return &AppError{Kind: KindUnexpected, Code: "internal_error", Err: err}
}

// KindOf returns the kind of err, KindUnexpected for foreign errors.
func KindOf(err error) Kind {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnexpected
}
