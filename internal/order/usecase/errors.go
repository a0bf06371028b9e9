package usecase

import "errors"

var (
	// ErrInvalidRequest is matched when contact or order is missing or empty.
	ErrInvalidRequest = errors.New("order: invalid notification request")
	// ErrDispatchFailed is matched when at least one email could not be sent.
	ErrDispatchFailed = errors.New("order: email dispatch failed")
	// ErrDuplicateSubmission is matched when the order is already being or has been notified.
	ErrDuplicateSubmission = errors.New("order: duplicate submission")
)
