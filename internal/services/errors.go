package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrEmptyOrder        = errors.New("no items provided")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrInvalidOrderType  = errors.New("invalid order type")
	ErrInvalidPriority   = errors.New("invalid priority")
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderItemNotFound = errors.New("order item not found")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrStatusConflict    = errors.New("order status changed concurrently")

	ErrInventoryNotFound = errors.New("inventory record not found")
	ErrMenuItemNotFound  = errors.New("menu item not found")

	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("user already exists")
	ErrInvalidRole      = errors.New("invalid role")
	ErrCannotDeleteSelf = errors.New("cannot delete your own account")
	ErrLastManager      = errors.New("cannot delete the last manager")

	ErrClientNotFound = errors.New("client not found")

	ErrInvalidItemReference = errors.New("invalid item reference")
)

// InvalidItemReferenceError reports an item_id that is not a positive integer.
type InvalidItemReferenceError struct {
	Line  int
	Value interface{}
}

func (e *InvalidItemReferenceError) Error() string {
	return fmt.Sprintf("invalid item_id %v on line %d", e.Value, e.Line+1)
}

func (e *InvalidItemReferenceError) Unwrap() error {
	return ErrInvalidItemReference
}

// ItemNotFoundError names every item id that could not be resolved.
type ItemNotFoundError struct {
	Missing []uint
}

func (e *ItemNotFoundError) Error() string {
	ids := make([]string, len(e.Missing))
	for i, id := range e.Missing {
		ids[i] = strconv.FormatUint(uint64(id), 10)
	}
	return "items not found: " + strings.Join(ids, ", ")
}
