package record

import (
	"context"
	"log"

	"github.com/nmburu/supportprobe/internal/service/convo"
)

// LogRecorder is the fallback when no spreadsheet is configured; the
// transcript row only reaches the process log.
type LogRecorder struct{}

// Append logs the row instead of persisting it.
func (LogRecorder) Append(_ context.Context, row convo.Row) error {
	log.Printf("[recorder] %s %s agent=%q assessment=%q transcript:\n%s",
		row.Date, row.Time, row.Agent, row.Assessment, row.Transcript)
	return nil
}
