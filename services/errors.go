package services

import (
	"errors"
	"fmt"
)

// Document-level failures abort an import.
var (
	ErrMalformedDocument   = errors.New("malformed document")
	ErrMissingPlanMetadata = errors.New("missing plan metadata")
)

// Feature-level failures skip one feature and let the import continue.
var (
	ErrMissingFeatureProperties = errors.New("missing feature properties")
	ErrGeometryConversion       = errors.New("geometry conversion failed")
)

// ErrPersistence is fatal when the plan write fails and recoverable for a plot.
var ErrPersistence = errors.New("persistence error")

var (
	ErrUnknownOperation = errors.New("unknown operation")
	ErrPlanNotFound     = errors.New("plan not found")
)

// FeatureError records why the feature at Index was not imported.
type FeatureError struct {
	Index int
	Err   error
}

func (e *FeatureError) Error() string {
	return fmt.Sprintf("feature %d: %v", e.Index, e.Err)
}

func (e *FeatureError) Unwrap() error { return e.Err }

// UnknownOperationError reports a role that references an operation with no templates.
type UnknownOperationError struct {
	Role      string
	Operation Operation
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("role %s references unknown operation %q", e.Role, e.Operation)
}

func (e *UnknownOperationError) Unwrap() error { return ErrUnknownOperation }
