package memory

import (
	"context"
	"sync"

	"housebudget/internal/analytics"
	ports "housebudget/internal/sheets"
)

// Writer keeps the last report in memory. It stands in for a spreadsheet
// when none is configured.
type Writer struct {
	mu     sync.Mutex
	last   analytics.Report
	writes int
}

var _ ports.ReportWriter = (*Writer)(nil)

func New() *Writer {
	return &Writer{}
}

func (w *Writer) WriteReport(ctx context.Context, r analytics.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.last = r
	w.writes++
	return nil
}

// Last returns the most recent report and whether one was written.
func (w *Writer) Last() (analytics.Report, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last, w.writes > 0
}

// Writes counts successful writes.
func (w *Writer) Writes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writes
}
