// file: model/request.go

package model

// AmountRequest is the payload for deposit and withdraw calls.
// Amount travels as a string so no precision is lost before it reaches decimal.
type AmountRequest struct {
	Amount string `json:"amount" validate:"required,numeric"`
}

// OperationResult is what a mutating operation reports back to a boundary
// for rendering. Transaction is nil when nothing was appended.
type OperationResult struct {
	Account     AccountView  `json:"account"`
	Transaction *Transaction `json:"transaction,omitempty"`
	Applied     bool         `json:"applied"`
}
