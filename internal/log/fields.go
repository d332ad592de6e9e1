package log

import (
	"go.uber.org/zap"
)

type Field = zap.Field

var (
	String   = zap.String
	Strings  = zap.Strings
	Int      = zap.Int
	Int64    = zap.Int64
	Float    = zap.Float64
	Bool     = zap.Bool
	Duration = zap.Duration
	Time     = zap.Time
	Any      = zap.Any
)

// Cause records err under the "cause" key.
func Cause(err error) Field {
	return zap.NamedError("cause", err)
}
