package domain

import "errors"

var (
	ErrEmptySelection      = errors.New("no items selected for cancellation")
	ErrInvalidSelection    = errors.New("selected item does not belong to order")
	ErrInvalidContext      = errors.New("invalid cancellation context")
	ErrPolicyViolation     = errors.New("pricing policy violation")
	ErrOrderNotFound       = errors.New("order not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrOrderNotCancellable = errors.New("order can no longer be cancelled")
	ErrQuoteNotFound       = errors.New("cancellation quote not found or expired")
	ErrRequestNotFound     = errors.New("cancellation request not found")
	ErrRequestNotPending   = errors.New("cancellation request is not pending")
	ErrRequestExists       = errors.New("order already has a pending cancellation request")
	ErrInvalidFilter       = errors.New("invalid list filter")
	ErrRefundExecution     = errors.New("refund execution failed")
)
