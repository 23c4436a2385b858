package checkout

import "errors"

var (
	ErrShippingIncomplete = errors.New("full name and email are required")
	ErrInvalidTransition  = errors.New("invalid checkout transition")
	ErrCheckoutBusy       = errors.New("checkout is already creating a payment order")
	ErrEmptyCart          = errors.New("cart is empty, nothing to checkout")
	ErrFlowNotFound       = errors.New("checkout not found")
)
