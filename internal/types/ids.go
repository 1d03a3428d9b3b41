// internal/types/ids.go
package types

import (
	"github.com/google/uuid"
)

type RequestID string
type BatchID string

func NewRequestID() RequestID {
	return RequestID(uuid.New().String())
}

func NewBatchID() BatchID {
	return BatchID(uuid.New().String())
}
