package errors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Message string
	Details []ValidationDetail
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string, details ...ValidationDetail) *ValidationError {
	return &ValidationError{
		Message: message,
		Details: details,
	}
}

func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

func IsNotFoundError(err error) (*NotFoundError, bool) {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf, true
	}
	return nil, false
}

// InsufficientStockError carries enough context for the caller to act:
// which product was short, how much was requested and how much was there.
type InsufficientStockError struct {
	ProductID int
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Shortfall() int {
	return e.Requested - e.Available
}

func NewInsufficientStockError(productID, requested, available int) *InsufficientStockError {
	return &InsufficientStockError{
		ProductID: productID,
		Requested: requested,
		Available: available,
	}
}

func IsInsufficientStockError(err error) (*InsufficientStockError, bool) {
	var ise *InsufficientStockError
	if errors.As(err, &ise) {
		return ise, true
	}
	return nil, false
}

type DrawerNotOpenError struct {
	Owner string
}

func (e *DrawerNotOpenError) Error() string {
	return fmt.Sprintf("no open cash drawer for operator %s", e.Owner)
}

func NewDrawerNotOpenError(owner string) *DrawerNotOpenError {
	return &DrawerNotOpenError{Owner: owner}
}

func IsDrawerNotOpenError(err error) (*DrawerNotOpenError, bool) {
	var de *DrawerNotOpenError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

type DrawerAlreadyOpenError struct {
	Owner    string
	DrawerID string
}

func (e *DrawerAlreadyOpenError) Error() string {
	return fmt.Sprintf("operator %s already has an open cash drawer (%s)", e.Owner, e.DrawerID)
}

func NewDrawerAlreadyOpenError(owner, drawerID string) *DrawerAlreadyOpenError {
	return &DrawerAlreadyOpenError{Owner: owner, DrawerID: drawerID}
}

func IsDrawerAlreadyOpenError(err error) (*DrawerAlreadyOpenError, bool) {
	var de *DrawerAlreadyOpenError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// NoOpenDrawerError is the close-side counterpart of DrawerNotOpenError:
// the operator asked to close or inspect a drawer but has none open.
type NoOpenDrawerError struct {
	Owner string
}

func (e *NoOpenDrawerError) Error() string {
	return fmt.Sprintf("operator %s has no open cash drawer", e.Owner)
}

func NewNoOpenDrawerError(owner string) *NoOpenDrawerError {
	return &NoOpenDrawerError{Owner: owner}
}

func IsNoOpenDrawerError(err error) (*NoOpenDrawerError, bool) {
	var de *NoOpenDrawerError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

type CancellationWindowExpiredError struct {
	SaleID     uint
	AgeHours   decimal.Decimal
	LimitHours int
}

func (e *CancellationWindowExpiredError) Error() string {
	return fmt.Sprintf("sale %d is %s hours old, cancellation window is %d hours",
		e.SaleID, e.AgeHours.StringFixed(1), e.LimitHours)
}

func NewCancellationWindowExpiredError(saleID uint, ageHours decimal.Decimal, limitHours int) *CancellationWindowExpiredError {
	return &CancellationWindowExpiredError{SaleID: saleID, AgeHours: ageHours, LimitHours: limitHours}
}

func IsCancellationWindowExpiredError(err error) (*CancellationWindowExpiredError, bool) {
	var ce *CancellationWindowExpiredError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// ConflictError covers state conflicts (e.g. cancelling an already cancelled
// sale) and concurrency conflicts surfaced after retries were exhausted.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}

func IsConflictError(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{
		Message: message,
		Cause:   cause,
	}
}

func IsInternalError(err error) (*InternalError, bool) {
	var ie *InternalError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}
