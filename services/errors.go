package services

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDuplicateCode is returned by entitlement stores when an insert hits the
// unique index on the redemption code. The issuance workflow retries on it.
var ErrDuplicateCode = errors.New("duplicate unique code")

// NotFoundError reports an unknown campaign, entitlement or code.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

// ValidationError reports malformed input, such as an unparseable QR payload.
// Never retried automatically.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IneligibleError reports a business-rule failure with the full set of
// reasons the evaluator collected. Surfaced verbatim, not retried.
type IneligibleError struct {
	Reasons []string
}

func (e *IneligibleError) Error() string {
	return "not eligible: " + strings.Join(e.Reasons, "; ")
}

// ConflictKind distinguishes why a redemption lost its race: the corrective
// action for a consumed code differs from a sold-out campaign.
type ConflictKind string

const (
	ConflictAlreadyUsed  ConflictKind = "ALREADY_USED"
	ConflictCancelled    ConflictKind = "CANCELLED"
	ConflictLimitReached ConflictKind = "LIMIT_REACHED"
)

// ConflictError reports that a conditional update lost the race. It is a
// definitive failure; whether to try again is the caller's decision.
type ConflictError struct {
	Kind    ConflictKind
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// InternalError reports an exceptional failure such as code-generation retry
// exhaustion or a compensated partial mint in the referral cascade.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}
