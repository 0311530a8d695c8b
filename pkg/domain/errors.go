package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrEmptySessionID is returned when an operation is attempted without a session ID.
var ErrEmptySessionID = errors.New("session id is required")

// ErrItemNotFound is returned when an item key is not present in the catalog.
var ErrItemNotFound = errors.New("item not found")

// ErrEmptyCart is returned when confirming a cart that has no lines.
var ErrEmptyCart = errors.New("cart is empty")

// ErrInvalidQuantity is returned when a cart mutation carries a non-positive quantity.
var ErrInvalidQuantity = errors.New("quantity must be positive")

// ErrUnknownMutation is returned when a cart mutation has an unrecognized operation.
var ErrUnknownMutation = errors.New("unknown cart mutation")

// ErrInvalidPrice is returned when a catalog item carries a negative price.
var ErrInvalidPrice = errors.New("price must not be negative")
