package http

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"housebudget/internal/budget"
	"housebudget/internal/ledger"
	"housebudget/internal/storage"
	"housebudget/internal/transactions"
)

var march = time.Date(2025, 3, 15, 9, 30, 0, 0, time.UTC)

const onboardingBody = `{
	"household": {"name": "Home", "currency": "EUR"},
	"users": [{"name": "Ada", "email": "ada@example.com"}, {"name": "Bob", "email": "bob@example.com", "role": "member"}],
	"incomeSources": [{"name": "Salary"}],
	"categories": [
		{"name": "Groceries", "monthlyBudget": 100, "carryOverEnabled": true},
		{"name": "Fun", "monthlyBudget": 50}
	]
}`

type testServer struct {
	t   *testing.T
	srv *Server
	svc *ledger.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	var n atomic.Int64
	svc := ledger.NewService(storage.NewMemoryStore(), ledger.Options{
		Clock: func() time.Time { return march },
		NewID: func() string { return fmt.Sprintf("id-%d", n.Add(1)) },
	})
	if err := svc.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	srv := NewServer(":0", svc, Options{
		CacheSize:    32,
		RateLimitRPM: 1000,
		Clock:        func() time.Time { return march },
	})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return &testServer{t: t, srv: srv, svc: svc}
}

func (ts *testServer) do(method, target, body string) *httptest.ResponseRecorder {
	ts.t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.srv.Handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) onboard() ledger.Ledger {
	ts.t.Helper()
	rec := ts.do(http.MethodPost, "/api/onboarding", onboardingBody)
	if rec.Code != http.StatusCreated {
		ts.t.Fatalf("onboarding status = %d: %s", rec.Code, rec.Body)
	}
	return ts.svc.Snapshot()
}

func (ts *testServer) addExpense(l ledger.Ledger, categoryName, amount string) {
	ts.t.Helper()
	var catID string
	for _, c := range l.Categories {
		if c.Name == categoryName {
			catID = c.ID
		}
	}
	body := fmt.Sprintf(`{"amount": %s, "categoryId": %q, "needsOrWants": "needs", "userId": %q, "date": "2025-03-10"}`,
		amount, catID, l.Members[0].ID)
	if rec := ts.do(http.MethodPost, "/api/expenses", body); rec.Code != http.StatusCreated {
		ts.t.Fatalf("add expense status = %d: %s", rec.Code, rec.Body)
	}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body, err)
	}
	return v
}

func TestHealthAndReady(t *testing.T) {
	ts := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rec := ts.do(http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, rec.Code)
		}
		if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
			t.Errorf("%s missing security headers", path)
		}
		if rec.Header().Get("X-Request-ID") == "" {
			t.Errorf("%s missing request id", path)
		}
	}
}

func TestOnboardingFlow(t *testing.T) {
	ts := newTestServer(t)

	if rec := ts.do(http.MethodGet, "/api/household", ""); rec.Code != http.StatusConflict {
		t.Fatalf("household before onboarding = %d, want 409", rec.Code)
	}

	l := ts.onboard()
	if !l.OnboardingCompleted || l.CurrentMonth != "2025-03" {
		t.Fatalf("onboarding not applied: %+v", l)
	}

	if rec := ts.do(http.MethodPost, "/api/onboarding", onboardingBody); rec.Code != http.StatusConflict {
		t.Errorf("second onboarding = %d, want 409", rec.Code)
	}

	rec := ts.do(http.MethodGet, "/api/ledger", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("ledger status = %d", rec.Code)
	}
	got := decode[ledger.Ledger](t, rec)
	if len(got.Members) != 2 || len(got.MonthlyCategories) != 2 {
		t.Errorf("ledger members=%d monthly=%d", len(got.Members), len(got.MonthlyCategories))
	}
}

func TestErrorMapping(t *testing.T) {
	ts := newTestServer(t)
	l := ts.onboard()
	primary := l.Members[0].ID

	tests := []struct {
		name     string
		method   string
		target   string
		body     string
		wantCode int
		wantType string
	}{
		{"malformed json", http.MethodPost, "/api/members", `{"name":`, http.StatusBadRequest, "validation_error"},
		{"overflowing amount", http.MethodPost, "/api/expenses", `{"amount": 200000000000000000, "categoryId": "c", "needsOrWants": "needs", "userId": "` + primary + `", "date": "2025-03-10"}`, http.StatusBadRequest, "validation_error"},
		{"unknown field", http.MethodPost, "/api/members", `{"nickname":"x"}`, http.StatusBadRequest, "validation_error"},
		{"empty body", http.MethodPost, "/api/members", "", http.StatusBadRequest, "validation_error"},
		{"invalid member", http.MethodPost, "/api/members", `{"name":"", "email":"x@example.com"}`, http.StatusUnprocessableEntity, "validation_error"},
		{"duplicate category", http.MethodPost, "/api/categories", `{"name":"groceries","monthlyBudget":10}`, http.StatusConflict, "conflict_error"},
		{"primary member delete", http.MethodDelete, "/api/members/" + primary, "", http.StatusConflict, "conflict_error"},
		{"missing expense", http.MethodDelete, "/api/expenses/nope", "", http.StatusNotFound, "not_found_error"},
		{"bad month", http.MethodGet, "/api/months/2025-13/summary", "", http.StatusBadRequest, "validation_error"},
		{"unknown analytics view", http.MethodGet, "/api/analytics/forecast", "", http.StatusNotFound, "not_found_error"},
		{"unknown export", http.MethodGet, "/api/export/pdf", "", http.StatusNotFound, "not_found_error"},
		{"bad preset", http.MethodGet, "/api/analytics/trends?preset=2years", "", http.StatusBadRequest, "validation_error"},
		{"bad sort", http.MethodGet, "/api/transactions?sort=color", "", http.StatusBadRequest, "validation_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(tt.method, tt.target, tt.body)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantCode, rec.Body)
			}
			body := decode[map[string]string](t, rec)
			if body["type"] != tt.wantType {
				t.Errorf("type = %q, want %q", body["type"], tt.wantType)
			}
			if body["error"] == "" {
				t.Error("missing error message")
			}
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)
	if rec := ts.do(http.MethodGet, "/api/nothing", ""); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if rec := ts.do(http.MethodPatch, "/api/ledger", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestMemberLifecycle(t *testing.T) {
	ts := newTestServer(t)
	ts.onboard()

	rec := ts.do(http.MethodPost, "/api/members", `{"name":"Cy","email":"cy@example.com","role":"member"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add member = %d: %s", rec.Code, rec.Body)
	}
	id := decode[map[string]any](t, rec)["id"].(string)

	rec = ts.do(http.MethodPut, "/api/members/"+id, `{"name":"Cyrus"}`)
	if rec.Code != http.StatusOK || decode[map[string]any](t, rec)["name"] != "Cyrus" {
		t.Fatalf("update member = %d: %s", rec.Code, rec.Body)
	}

	if rec = ts.do(http.MethodDelete, "/api/members/"+id, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete member = %d", rec.Code)
	}
	if n := len(ts.svc.Snapshot().Members); n != 2 {
		t.Errorf("members = %d, want 2", n)
	}
}

func TestMonthSpendingAndAlerts(t *testing.T) {
	ts := newTestServer(t)
	l := ts.onboard()
	ts.addExpense(l, "Groceries", "85")

	rec := ts.do(http.MethodGet, "/api/months/2025-03/spending", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("spending = %d", rec.Code)
	}
	spending := decode[[]budget.CategorySpend](t, rec)
	var groceries budget.CategorySpend
	for _, c := range spending {
		if c.CategoryName == "Groceries" {
			groceries = c
		}
	}
	if groceries.Percentage != 85 || groceries.Status != budget.StatusWarning {
		t.Errorf("groceries = %+v, want 85%% warning", groceries)
	}

	ts.addExpense(l, "Groceries", "35")
	rec = ts.do(http.MethodGet, "/api/alerts", "")
	alerts := decode[[]map[string]any](t, rec)
	exceeded := 0
	for _, a := range alerts {
		if a["type"] == "category_exceeded" {
			exceeded++
		}
	}
	if exceeded != 1 {
		t.Fatalf("category_exceeded alerts = %d, want 1: %s", exceeded, rec.Body)
	}

	id := alerts[0]["id"].(string)
	if rec = ts.do(http.MethodPost, "/api/alerts/"+id+"/dismiss", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("dismiss = %d", rec.Code)
	}
	after := decode[[]map[string]any](t, ts.do(http.MethodGet, "/api/alerts", ""))
	all := decode[[]map[string]any](t, ts.do(http.MethodGet, "/api/alerts?all=true", ""))
	if len(after) != len(alerts)-1 || len(all) != len(alerts) {
		t.Errorf("active=%d all=%d, started with %d", len(after), len(all), len(alerts))
	}
}

func TestAnalyticsCache(t *testing.T) {
	ts := newTestServer(t)
	l := ts.onboard()
	ts.addExpense(l, "Groceries", "40")

	first := ts.do(http.MethodGet, "/api/analytics/trends?preset=3months", "")
	second := ts.do(http.MethodGet, "/api/analytics/trends?preset=3months", "")
	if first.Header().Get("X-Cache") != "MISS" || second.Header().Get("X-Cache") != "HIT" {
		t.Fatalf("cache headers = %q, %q", first.Header().Get("X-Cache"), second.Header().Get("X-Cache"))
	}
	if first.Body.String() != second.Body.String() {
		t.Error("cached body differs")
	}

	ts.addExpense(l, "Fun", "10")
	third := ts.do(http.MethodGet, "/api/analytics/trends?preset=3months", "")
	if third.Header().Get("X-Cache") != "MISS" {
		t.Error("a new revision must miss the cache")
	}

	res := decode[struct {
		Span struct {
			Start string `json:"startMonth"`
			End   string `json:"endMonth"`
		} `json:"span"`
		Range struct {
			Display         string `json:"display"`
			Months          int    `json:"months"`
			Large           bool   `json:"large"`
			EnoughForTrends bool   `json:"enoughForTrends"`
		} `json:"range"`
		Data []struct {
			Month      string  `json:"month"`
			TotalSpent float64 `json:"totalSpent"`
		} `json:"data"`
	}](t, third)
	if res.Span.Start != "2025-01" || res.Span.End != "2025-03" || len(res.Data) != 3 {
		t.Fatalf("trends = %+v", res)
	}
	if res.Range.Display != "January 2025 - March 2025" || res.Range.Months != 3 || res.Range.Large || !res.Range.EnoughForTrends {
		t.Errorf("range = %+v", res.Range)
	}
	if last := res.Data[2]; last.Month != "2025-03" || last.TotalSpent != 50 {
		t.Errorf("march trend = %+v", last)
	}
}

func TestAnalyticsViews(t *testing.T) {
	ts := newTestServer(t)
	l := ts.onboard()
	ts.addExpense(l, "Groceries", "40")

	views := []string{
		"trends", "income-trends", "category-trends", "comparison", "health",
		"by-member", "needs-wants", "top-categories?limit=3", "averages", "report",
	}
	for _, v := range views {
		t.Run(v, func(t *testing.T) {
			rec := ts.do(http.MethodGet, "/api/analytics/"+v, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body)
			}
			if !json.Valid(rec.Body.Bytes()) {
				t.Error("invalid JSON body")
			}
		})
	}
}

func TestAnalyticsRangeFlags(t *testing.T) {
	ts := newTestServer(t)
	ts.onboard()

	tests := []struct {
		query      string
		wantMonths int
		wantLarge  bool
		wantEnough bool
	}{
		{"start=2025-03&end=2025-03", 1, false, false},
		{"preset=12months", 12, false, true},
		{"start=2023-12&end=2025-03", 16, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := ts.do(http.MethodGet, "/api/analytics/trends?"+tt.query, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body)
			}
			res := decode[struct {
				Range struct {
					Months          int  `json:"months"`
					Large           bool `json:"large"`
					EnoughForTrends bool `json:"enoughForTrends"`
				} `json:"range"`
			}](t, rec)
			if res.Range.Months != tt.wantMonths || res.Range.Large != tt.wantLarge || res.Range.EnoughForTrends != tt.wantEnough {
				t.Errorf("range = %+v", res.Range)
			}
		})
	}
}

func TestMonthDataClockFlags(t *testing.T) {
	ts := newTestServer(t)
	ts.onboard()

	tests := []struct {
		month       string
		wantCurrent bool
		wantFuture  bool
	}{
		{"2025-02", false, false},
		{"2025-03", true, false},
		{"2025-04", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.month, func(t *testing.T) {
			rec := ts.do(http.MethodGet, "/api/months/"+tt.month, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body)
			}
			d := decode[ledger.MonthData](t, rec)
			if d.IsCurrent != tt.wantCurrent || d.IsFuture != tt.wantFuture {
				t.Errorf("isCurrent=%v isFuture=%v", d.IsCurrent, d.IsFuture)
			}
		})
	}
}

func TestTransactions(t *testing.T) {
	ts := newTestServer(t)
	l := ts.onboard()
	ts.addExpense(l, "Groceries", "40")
	ts.addExpense(l, "Fun", "15")
	income := fmt.Sprintf(`{"amount": 2000, "sourceId": %q, "userId": %q, "date": "2025-03-01"}`,
		l.IncomeSources[0].ID, l.Members[0].ID)
	if rec := ts.do(http.MethodPost, "/api/incomes", income); rec.Code != http.StatusCreated {
		t.Fatalf("add income = %d: %s", rec.Code, rec.Body)
	}

	tests := []struct {
		name      string
		query     string
		wantCount int
		wantFirst string
	}{
		{"everything newest first", "", 3, "Groceries"},
		{"expenses by amount", "?type=expense&sort=amount&dir=asc", 2, "Fun"},
		{"incomes only", "?type=income", 1, "Salary"},
		{"minimum amount", "?min=20", 2, "Groceries"},
		{"text search", "?q=fun", 1, "Fun"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(http.MethodGet, "/api/transactions"+tt.query, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body)
			}
			got := decode[struct {
				Transactions []transactions.Transaction `json:"transactions"`
				Stats        transactions.Stats         `json:"stats"`
			}](t, rec)
			if len(got.Transactions) != tt.wantCount || got.Stats.TotalCount != tt.wantCount {
				t.Fatalf("count = %d (stats %d), want %d", len(got.Transactions), got.Stats.TotalCount, tt.wantCount)
			}
			if first := got.Transactions[0].CategoryOrSource; first != tt.wantFirst {
				t.Errorf("first = %q, want %q", first, tt.wantFirst)
			}
		})
	}

	opts := decode[transactions.Options](t, ts.do(http.MethodGet, "/api/transactions/options", ""))
	if len(opts.Categories) != 2 || opts.DateRange.Start.String() != "2025-03-01" {
		t.Errorf("options = %+v", opts)
	}
}

func TestExport(t *testing.T) {
	ts := newTestServer(t)
	l := ts.onboard()
	ts.addExpense(l, "Groceries", "40")
	ts.addExpense(l, "Fun", "15")

	rec := ts.do(http.MethodGet, "/api/export/transactions?start=2025-03", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("content disposition = %q", cd)
	}
	rows, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("rows = %d, want header plus two expenses", len(rows))
	}

	var funID string
	for _, c := range l.Categories {
		if c.Name == "Fun" {
			funID = c.ID
		}
	}
	rec = ts.do(http.MethodGet, "/api/export/transactions?start=2025-03&category="+funID, "")
	rows, _ = csv.NewReader(rec.Body).ReadAll()
	if len(rows) != 2 {
		t.Errorf("filtered rows = %d, want 2", len(rows))
	}

	rec = ts.do(http.MethodGet, "/api/export/all?start=2025-01&end=2025-03", "")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "application/zip" {
		t.Fatalf("zip export = %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	if len(zr.File) != 2 {
		t.Errorf("zip entries = %d, want 2", len(zr.File))
	}

	for _, kind := range []string{"report", "summary?categories=true"} {
		if rec := ts.do(http.MethodGet, "/api/export/"+kind, ""); rec.Code != http.StatusOK || rec.Body.Len() == 0 {
			t.Errorf("%s export = %d", kind, rec.Code)
		}
	}
}

func TestMaterializeAndMonthEdits(t *testing.T) {
	ts := newTestServer(t)
	l := ts.onboard()
	ts.addExpense(l, "Groceries", "60")

	rec := ts.do(http.MethodGet, "/api/months/2025-04/carry-over", "")
	carry := decode[map[string]float64](t, rec)
	var groceriesID string
	for _, c := range l.Categories {
		if c.Name == "Groceries" {
			groceriesID = c.ID
		}
	}
	if carry[groceriesID] != 40 {
		t.Fatalf("carry-over = %v, want 40 for groceries", carry)
	}

	rec = ts.do(http.MethodPost, "/api/months/2025-04", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("materialize = %d: %s", rec.Code, rec.Body)
	}
	if rec = ts.do(http.MethodPost, "/api/months/2025-04", ""); rec.Code != http.StatusConflict {
		t.Errorf("second materialize = %d, want 409", rec.Code)
	}

	var april string
	for _, mc := range ts.svc.Snapshot().MonthlyCategories {
		if mc.Month == "2025-04" && mc.CategoryID == groceriesID {
			april = mc.ID
		}
	}
	rec = ts.do(http.MethodPut, "/api/monthly-categories/"+april, `{"monthlyBudget": 120}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update monthly category = %d: %s", rec.Code, rec.Body)
	}

	summary := decode[budget.Summary](t, ts.do(http.MethodGet, "/api/months/2025-04/summary", ""))
	// 120 own budget plus 40 carried for groceries, 50 for fun
	if summary.TotalBudgeted.Cents != 21000 {
		t.Errorf("april budgeted = %v, want 210.00", summary.TotalBudgeted)
	}
}

func TestSavingsGoals(t *testing.T) {
	ts := newTestServer(t)
	l := ts.onboard()

	rec := ts.do(http.MethodPost, "/api/savings-goals", `{"name":"Holiday","targetAmount":1000}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add goal = %d: %s", rec.Code, rec.Body)
	}
	id := decode[map[string]any](t, rec)["id"].(string)

	body := fmt.Sprintf(`{"amount": 250, "userId": %q, "date": "2025-03-05"}`, l.Members[0].ID)
	rec = ts.do(http.MethodPost, "/api/savings-goals/"+id+"/contributions", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("contribute = %d: %s", rec.Code, rec.Body)
	}
	goal := decode[map[string]any](t, rec)
	if goal["currentAmount"] != 250.0 || goal["progress"] != 25.0 || goal["remaining"] != 750.0 || goal["completed"] != false {
		t.Errorf("goal after contribution = %v", goal)
	}

	rec = ts.do(http.MethodGet, "/api/savings-goals", "")
	goals := decode[[]map[string]any](t, rec)
	if len(goals) != 1 || goals[0]["id"] != id || goals[0]["progress"] != 25.0 {
		t.Errorf("goals = %v", goals)
	}

	if rec = ts.do(http.MethodPost, "/api/savings-goals/nope/contributions", body); rec.Code != http.StatusNotFound {
		t.Errorf("unknown goal = %d, want 404", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	svc := ledger.NewService(storage.NewMemoryStore(), ledger.Options{NewID: func() string { return "x" }})
	srv := NewServer(":0", svc, Options{RateLimitRPM: 2})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	codes := make([]int, 3)
	for i := range codes {
		rec := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ledger", nil))
		codes[i] = rec.Code
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v", codes)
	}

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Error("health checks are not rate limited")
	}
}
