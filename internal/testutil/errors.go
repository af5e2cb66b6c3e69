// Package testutil provides testing utilities for cardmark.
//
// This package contains mock errors and fixture helpers used across test files.
// It should only be imported by test files (*_test.go).
package testutil

import "errors"

// Mock errors for testing purposes.
var (
	// ErrMockWrite indicates a mock writer failed (used in tests).
	ErrMockWrite = errors.New("write failed")

	// ErrMockRead indicates a mock reader failed (used in tests).
	ErrMockRead = errors.New("read failed")

	// ErrMockForm indicates a mock confirmation form failed (used in tests).
	ErrMockForm = errors.New("form failed")
)
