package engine

import "errors"

// Erros de precondição do engine. Toda falha de precondição é rejeitada de
// forma síncrona, sem alteração de estado e sem movimentação de fundos.
var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidState     = errors.New("invalid state")
	ErrExpired          = errors.New("expired")
	ErrNotYetMatured    = errors.New("not yet matured")
	ErrValueMismatch    = errors.New("value mismatch")
	ErrLimitExceeded    = errors.New("limit exceeded")
	ErrTransferFailed   = errors.New("transfer failed")
	ErrNotFound         = errors.New("not found")
)
