// internal/extract/errors.go
package extract

import (
	"errors"
	"fmt"
)

// ErrorCode classifies extraction failures for callers that branch on cause.
type ErrorCode string

const (
	ErrCodeCapacity         ErrorCode = "CAPACITY"
	ErrCodeNavigation       ErrorCode = "NAVIGATION"
	ErrCodeSelectorNotFound ErrorCode = "SELECTOR_NOT_FOUND"
	ErrCodeAssetFetch       ErrorCode = "ASSET_FETCH"
	ErrCodeEngineBinding    ErrorCode = "ENGINE_BINDING"
	ErrCodeValidation       ErrorCode = "VALIDATION"
)

// ExtractError wraps a pipeline failure with its classification.
type ExtractError struct {
	Code       ErrorCode
	Message    string
	Underlying error
}

func (e *ExtractError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ExtractError) Unwrap() error {
	return e.Underlying
}

// Is matches other ExtractErrors by code, so callers can compare against a
// sentinel like &ExtractError{Code: ErrCodeSelectorNotFound}.
func (e *ExtractError) Is(target error) bool {
	if t, ok := target.(*ExtractError); ok {
		return e.Code == t.Code
	}
	return errors.Is(e.Underlying, target)
}

// NewExtractError creates a classified extraction error.
func NewExtractError(code ErrorCode, message string, err error) *ExtractError {
	return &ExtractError{Code: code, Message: message, Underlying: err}
}
