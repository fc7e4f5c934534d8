package http

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"housebudget/internal/core"
	"housebudget/internal/ledger"
	"housebudget/internal/month"
	"housebudget/internal/transactions"
)

// DefaultPreset is the range used when a request names no months.
const DefaultPreset = month.Preset6Months

const maxTopLimit = 50

func queryValue(q url.Values, key string) string {
	return sanitizeInput(q.Get(key))
}

// queryList splits a comma separated parameter, dropping empty items.
// Repeated parameters are merged.
func queryList(q url.Values, key string) []string {
	var out []string
	for _, raw := range q[key] {
		for _, item := range strings.Split(raw, ",") {
			if item = sanitizeInput(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}

// ParseSpan reads start/end months, falling back to a preset. A lone start
// or end covers that single month; a reversed pair is swapped.
func ParseSpan(q url.Values, now time.Time) (month.Span, error) {
	start, end := queryValue(q, "start"), queryValue(q, "end")
	if start == "" && end == "" {
		preset := queryValue(q, "preset")
		if preset == "" {
			preset = DefaultPreset
		}
		span, err := month.Preset(preset, now)
		if err != nil {
			return month.Span{}, badRequest("%v", err)
		}
		return span, nil
	}
	if start == "" {
		start = end
	}
	if end == "" {
		end = start
	}
	span, err := month.NewSpan(start, end)
	if err != nil {
		return month.Span{}, badRequest("invalid range: %v", err)
	}
	return span, nil
}

// ParseLimit reads a positive limit capped at maxTopLimit. Absent means 0,
// which callers treat as their default.
func ParseLimit(q url.Values) (int, error) {
	v := queryValue(q, "limit")
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, badRequest("invalid limit %q: must be a positive integer", v)
	}
	return min(n, maxTopLimit), nil
}

func parseBool(q url.Values, key string) bool {
	b, _ := strconv.ParseBool(queryValue(q, key))
	return b
}

func parseDateParam(q url.Values, key string) (core.Date, error) {
	v := queryValue(q, key)
	if v == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return core.Date{}, badRequest("invalid %s: %v", key, err)
	}
	return d, nil
}

// parseAmountParam reads an inclusive amount bound. Zero is a valid bound.
func parseAmountParam(q url.Values, key string) (*core.Money, error) {
	v := queryValue(q, key)
	if v == "" {
		return nil, nil
	}
	m, err := core.ParseBound(v)
	if err != nil {
		return nil, badRequest("invalid %s %q: %v", key, v, err)
	}
	return &m, nil
}

// ParseTransactionQuery builds the filter and sort of a transaction listing.
func ParseTransactionQuery(q url.Values) (transactions.Filter, transactions.Sort, error) {
	var f transactions.Filter
	var err error

	if f.Type, err = transactions.ParseType(queryValue(q, "type")); err != nil {
		return f, transactions.Sort{}, badRequest("%v", err)
	}
	if f.From, err = parseDateParam(q, "from"); err != nil {
		return f, transactions.Sort{}, err
	}
	if f.To, err = parseDateParam(q, "to"); err != nil {
		return f, transactions.Sort{}, err
	}
	f.CategoryOrSourceIDs = queryList(q, "ids")
	f.MemberIDs = queryList(q, "members")
	if f.MinAmount, err = parseAmountParam(q, "min"); err != nil {
		return f, transactions.Sort{}, err
	}
	if f.MaxAmount, err = parseAmountParam(q, "max"); err != nil {
		return f, transactions.Sort{}, err
	}
	if nw := core.NeedsOrWants(queryValue(q, "nw")); nw != "" && nw != "all" {
		if !nw.Valid() {
			return f, transactions.Sort{}, badRequest("invalid nw %q: want needs, wants or all", nw)
		}
		f.NeedsOrWants = nw
	}
	f.Search = queryValue(q, "q")

	var s transactions.Sort
	if s.Field, err = transactions.ParseSortField(queryValue(q, "sort")); err != nil {
		return f, s, badRequest("%v", err)
	}
	if s.Direction, err = transactions.ParseDirection(queryValue(q, "dir")); err != nil {
		return f, s, badRequest("%v", err)
	}
	return f, s, nil
}

// ParseExportFilter narrows the records of an export by category or member.
func ParseExportFilter(q url.Values) ledger.ExportFilter {
	return ledger.ExportFilter{
		CategoryID: queryValue(q, "category"),
		MemberID:   queryValue(q, "member"),
	}
}
