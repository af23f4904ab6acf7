// Package archive defines the outbound ports for the write-behind expense
// archive. Adapters live in subpackages; the sync worker talks only to these
// interfaces.
package archive

import (
	"context"

	"finsmart/internal/core"
)

// Appender delivers one expense record to a durable archive target and
// returns an adapter-specific reference (sheet row, file offset, memory
// index) for logging.
type Appender interface {
	Append(ctx context.Context, rec core.ExpenseRecord) (ref string, err error)
}
