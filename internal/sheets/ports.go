package sheets

import (
	"context"

	"housebudget/internal/analytics"
)

// Ports for outbound adapters.
type (
	// ReportWriter mirrors an analytics report to an external sheet,
	// replacing whatever the previous write left there.
	ReportWriter interface {
		WriteReport(ctx context.Context, r analytics.Report) error
	}
)
