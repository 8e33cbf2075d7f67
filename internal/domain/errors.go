package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSignature signals a webhook whose signature does not match the channel secret.
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrMalformedRequest signals a webhook body that could not be parsed.
	ErrMalformedRequest = errors.New("malformed request")
	// ErrSearchBackend signals a failed call to the reply index.
	ErrSearchBackend = errors.New("search backend error")
	// ErrDispatch signals a failed reply delivery.
	ErrDispatch = errors.New("dispatch failed")
	// ErrImageLookup signals a failed image crawl. Never leaves the fallback selector.
	ErrImageLookup = errors.New("image lookup failed")
)

// DispatchError records which reply token failed delivery.
type DispatchError struct {
	ReplyToken string
	Err        error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("%s: reply token %s: %v", ErrDispatch.Error(), e.ReplyToken, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *DispatchError) Unwrap() []error { return []error{ErrDispatch, e.Err} }
