package contract

import "errors"

var (
	ErrConfiguration   = errors.New("workspace configuration missing")
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrSchemaViolation = errors.New("model response violates schema")
	ErrChannelSend     = errors.New("channel send failed")
	ErrValidation      = errors.New("validation failed")
)
