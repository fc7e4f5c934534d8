package http

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"housebudget/internal/analytics"
	"housebudget/internal/cache"
	"housebudget/internal/export"
	"housebudget/internal/ledger"
	"housebudget/internal/log"
	"housebudget/internal/month"
)

const headerCache = "X-Cache"

// view computes a read-only response from one ledger snapshot.
type view func(r *http.Request, snap ledger.Ledger) (any, error)

// cached serves v through the response cache. Entries are keyed by the
// snapshot revision, so any ledger change misses. Presets resolve against
// the clock, so the clock month is part of the key too.
func (s *Server) cached(v view) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := s.svc.Fresh(r.Context())
		key := cache.ResponseKey(snap.Revision, r.URL.Path, r.URL.RawQuery) + "|" + month.Current(s.now())

		if hit, ok := s.responses.Get(key); ok {
			NewJSONResponse().Header(headerCache, "HIT").Raw(hit.ContentType, hit.Body).Write(w)
			return
		}

		data, err := v(r, snap)
		if err != nil {
			writeError(w, r, err)
			return
		}
		resp := NewJSONResponse().Header(headerCache, "MISS").Body(data)
		body, err := resp.Bytes()
		if err != nil {
			writeError(w, r, fmt.Errorf("encode response: %w", err))
			return
		}
		s.responses.Set(key, cache.Response{ContentType: contentTypeJSON, Body: body})
		resp.Write(w)
	}
}

func (s *Server) monthData(r *http.Request, snap ledger.Ledger) (any, error) {
	m, err := urlMonth(r)
	if err != nil {
		return nil, err
	}
	d := snap.MonthData(m)
	d.IsCurrent = month.IsCurrent(m, s.now())
	d.IsFuture = month.IsFuture(m, s.now())
	return d, nil
}

func (s *Server) monthSummary(r *http.Request, snap ledger.Ledger) (any, error) {
	m, err := urlMonth(r)
	if err != nil {
		return nil, err
	}
	return snap.Summary(m), nil
}

func (s *Server) monthSpending(r *http.Request, snap ledger.Ledger) (any, error) {
	m, err := urlMonth(r)
	if err != nil {
		return nil, err
	}
	return snap.Spending(m), nil
}

func (s *Server) monthIncomeBreakdown(r *http.Request, snap ledger.Ledger) (any, error) {
	m, err := urlMonth(r)
	if err != nil {
		return nil, err
	}
	return snap.IncomeBreakdown(m), nil
}

func (s *Server) monthCarryOver(r *http.Request, snap ledger.Ledger) (any, error) {
	m, err := urlMonth(r)
	if err != nil {
		return nil, err
	}
	return snap.CarryOvers(m), nil
}

// spanInfo describes the requested range so clients can warn about slow
// or too-short ranges before charting.
type spanInfo struct {
	Display         string `json:"display"`
	Months          int    `json:"months"`
	Large           bool   `json:"large"`
	EnoughForTrends bool   `json:"enoughForTrends"`
}

type spanResult[T any] struct {
	Span  month.Span `json:"span"`
	Range spanInfo   `json:"range"`
	Data  T          `json:"data"`
}

func describe(span month.Span) spanInfo {
	return spanInfo{
		Display:         span.Display(),
		Months:          span.Count(),
		Large:           span.IsLarge(),
		EnoughForTrends: span.HasEnoughDataForTrends(),
	}
}

func within[T any](span month.Span, data T) spanResult[T] {
	return spanResult[T]{Span: span, Range: describe(span), Data: data}
}

// analyticsView answers /api/analytics/{view} over the requested span.
func (s *Server) analyticsView(r *http.Request, snap ledger.Ledger) (any, error) {
	q := r.URL.Query()
	span, err := ParseSpan(q, s.now())
	if err != nil {
		return nil, err
	}

	switch name := chi.URLParam(r, "view"); name {
	case "trends":
		return within(span, analytics.SpendingTrends(snap.Expenses, span)), nil
	case "income-trends":
		return within(span, analytics.IncomeTrends(snap.Incomes, span)), nil
	case "category-trends":
		return within(span, analytics.CategoryTrends(snap.Expenses, snap.Categories, span)), nil
	case "comparison":
		return within(span, analytics.MonthOverMonth(snap.Expenses, snap.Incomes, span.List())), nil
	case "health":
		return within(span, snap.Health(span.End)), nil
	case "by-member":
		return within(span, analytics.SpendingByMember(snap.Expenses, snap.Members, span)), nil
	case "needs-wants":
		return within(span, analytics.NeedsVsWants(snap.Expenses, span)), nil
	case "top-categories":
		limit, err := ParseLimit(q)
		if err != nil {
			return nil, err
		}
		return within(span, analytics.TopCategories(snap.Expenses, limit, span)), nil
	case "averages":
		return within(span, analytics.CategoryAverages(snap.Expenses, span.List())), nil
	case "report":
		return snap.Report(span), nil
	default:
		return nil, fmt.Errorf("analytics view %q: %w", name, ledger.ErrNotFound)
	}
}

// handleExport renders a CSV or zip download. category and member narrow
// the exported transactions; the report always covers the whole household.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	span, err := ParseSpan(q, s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	snap := s.svc.Fresh(r.Context())
	incomes, expenses := snap.ExportData(ParseExportFilter(q))
	now := s.now()

	var (
		filename    string
		contentType = export.ContentTypeCSV
		render      func(out io.Writer) error
	)
	switch kind := chi.URLParam(r, "kind"); kind {
	case "transactions":
		filename = export.TransactionsFilename(span)
		render = func(out io.Writer) error { return export.WriteTransactions(out, expenses, incomes, span) }
	case "report":
		filename = export.ReportFilename(span)
		render = func(out io.Writer) error { return export.WriteReport(out, snap.Report(span)) }
	case "summary":
		filename = export.QuickSummaryFilename(now)
		withCategories := parseBool(q, "categories")
		render = func(out io.Writer) error {
			return export.WriteQuickSummary(out, incomes, expenses, span.List(), withCategories)
		}
	case "all":
		filename = export.CombinedFilename(span)
		contentType = export.ContentTypeZip
		render = func(out io.Writer) error {
			return export.WriteCombined(out, export.CombinedInput{
				Expenses: expenses,
				Incomes:  incomes,
				Report:   snap.Report(span),
				Now:      now,
			})
		}
	default:
		writeError(w, r, fmt.Errorf("export %q: %w", kind, ledger.ErrNotFound))
		return
	}

	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		writeError(w, r, fmt.Errorf("render %s: %w", filename, err))
		return
	}

	fields := log.NewFields().WithOperation(log.OpExport).WithRevision(snap.Revision)
	fields["file"] = filename
	fields["bytes"] = buf.Len()
	log.FromContext(r.Context()).InfoContext(r.Context(), "Export generated", fields.ToSlice()...)
	NewJSONResponse().Attachment(contentType, filename, buf.Bytes()).Write(w)
}
