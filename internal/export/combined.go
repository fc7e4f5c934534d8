package export

import (
	"archive/zip"
	"fmt"
	"io"
	"time"

	"housebudget/internal/analytics"
	"housebudget/internal/core"
)

// CombinedInput carries the records and the report for a combined export.
// The report span selects the transactions.
type CombinedInput struct {
	Expenses []core.Expense
	Incomes  []core.Income
	Report   analytics.Report
	Now      time.Time
}

// WriteCombined writes a zip archive holding the transactions export and the
// analytics report for the same span.
func WriteCombined(w io.Writer, in CombinedInput) error {
	zw := zip.NewWriter(w)
	span := in.Report.Span

	entries := []struct {
		name  string
		write func(io.Writer) error
	}{
		{TransactionsFilename(span), func(f io.Writer) error {
			return WriteTransactions(f, in.Expenses, in.Incomes, span)
		}},
		{ReportFilename(span), func(f io.Writer) error {
			return WriteReport(f, in.Report)
		}},
	}
	for _, e := range entries {
		f, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: zip.Deflate, Modified: in.Now})
		if err != nil {
			return fmt.Errorf("create %s: %w", e.name, err)
		}
		if err := e.write(f); err != nil {
			return fmt.Errorf("write %s: %w", e.name, err)
		}
	}
	return zw.Close()
}
