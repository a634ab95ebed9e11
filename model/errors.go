package model

import "errors"

var (
	ErrInvalidAmount      = errors.New("amount must be positive with at most 2 decimal places")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInvalidAccountType = errors.New("invalid account type")
)
