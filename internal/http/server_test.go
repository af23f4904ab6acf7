package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"finsmart/internal/log"
	"finsmart/internal/services"
	"finsmart/internal/session"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := log.New(log.DefaultConfig())
	sessions := session.NewManager(time.Hour, logger)
	svc := services.NewExpenseService(nil, nil, logger)

	s, err := NewServer(Options{
		Addr:     ":0",
		Sessions: sessions,
		Service:  svc,
		CacheTTL: time.Minute,
		Logger:   logger,
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	ts := httptest.NewServer(s.Handler)
	t.Cleanup(ts.Close)
	return ts
}

// newClient returns a client with a cookie jar so the session survives
// across requests.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &http.Client{Jar: jar}
}

func postForm(t *testing.T, client *http.Client, url string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := client.PostForm(url, form)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	return resp, string(body)
}

func get(t *testing.T, client *http.Client, url string) (*http.Response, string) {
	t.Helper()
	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	return resp, string(body)
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)
	client := newClient(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, _ := get(t, client, ts.URL+path)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, resp.StatusCode)
		}
	}
}

func TestIndexServesDashboard(t *testing.T) {
	ts := newTestServer(t)
	client := newClient(t)

	resp, body := get(t, client, ts.URL+"/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Record expense") {
		t.Error("dashboard should render the expense form")
	}
	if !strings.Contains(body, "Groceries") {
		t.Error("dashboard should list the default categories")
	}
}

func TestCreateAndListExpense(t *testing.T) {
	ts := newTestServer(t)
	client := newClient(t)

	resp, body := postForm(t, client, ts.URL+"/expenses", url.Values{
		"date":        {"2025-03-01"},
		"amount":      {"12.50"},
		"category":    {"Groceries"},
		"description": {"weekly shop"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	if trigger := resp.Header.Get("HX-Trigger"); !strings.Contains(trigger, "expense:created") {
		t.Errorf("expected expense:created trigger, got %q", trigger)
	}

	resp, body = get(t, client, ts.URL+"/expenses")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "weekly shop") || !strings.Contains(body, "€12.50") {
		t.Errorf("history should show the recorded expense, got: %s", body)
	}
}

func TestCreateExpenseValidation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		form url.Values
	}{
		{"bad amount", url.Values{"amount": {"abc"}, "category": {"Groceries"}}},
		{"negative amount", url.Values{"amount": {"-5"}, "category": {"Groceries"}}},
		{"unknown category", url.Values{"amount": {"5.00"}, "category": {"Yachts"}}},
		{"bad date", url.Values{"date": {"03/01/2025"}, "amount": {"5.00"}, "category": {"Groceries"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newClient(t)
			resp, _ := postForm(t, client, ts.URL+"/expenses", tt.form)
			if resp.StatusCode != http.StatusUnprocessableEntity {
				t.Errorf("expected 422, got %d", resp.StatusCode)
			}
		})
	}
}

func TestSetBudgetAndStatus(t *testing.T) {
	ts := newTestServer(t)
	client := newClient(t)

	resp, body := postForm(t, client, ts.URL+"/budgets", url.Values{
		"category": {"Groceries"},
		"amount":   {"100.00"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}

	// Spend into the warning band.
	postForm(t, client, ts.URL+"/expenses", url.Values{
		"amount":   {"65.00"},
		"category": {"Groceries"},
	})

	resp, body = get(t, client, ts.URL+"/ui/budget-status")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Groceries") || !strings.Contains(body, "severity-warning") {
		t.Errorf("status partial should show Groceries in warning, got: %s", body)
	}
}

func TestSetBudgetRegistersCustomCategory(t *testing.T) {
	ts := newTestServer(t)
	client := newClient(t)

	resp, _ := postForm(t, client, ts.URL+"/budgets", url.Values{
		"category": {"Pets"},
		"amount":   {"50.00"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp, _ = postForm(t, client, ts.URL+"/expenses", url.Values{
		"amount":   {"10.00"},
		"category": {"Pets"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expense against the new category should succeed, got %d", resp.StatusCode)
	}
}

func TestExportCSV(t *testing.T) {
	ts := newTestServer(t)
	client := newClient(t)

	postForm(t, client, ts.URL+"/expenses", url.Values{
		"date":     {"2025-03-01"},
		"amount":   {"12.50"},
		"category": {"Groceries"},
	})

	resp, body := get(t, client, ts.URL+"/expenses/export")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("expected csv content type, got %q", ct)
	}
	want := "date,amount,category,description\n2025-03-01,12.50,Groceries,\n"
	if body != want {
		t.Errorf("export mismatch:\n got %q\nwant %q", body, want)
	}
}

func TestCategoryBreakdownJSON(t *testing.T) {
	ts := newTestServer(t)
	client := newClient(t)

	postForm(t, client, ts.URL+"/expenses", url.Values{
		"date": {"2025-03-01"}, "amount": {"10.00"}, "category": {"Groceries"},
	})
	postForm(t, client, ts.URL+"/expenses", url.Values{
		"date": {"2025-03-02"}, "amount": {"5.50"}, "category": {"Other"},
	})

	resp, body := get(t, client, ts.URL+"/ui/category-breakdown")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var breakdown map[string]float64
	if err := json.Unmarshal([]byte(body), &breakdown); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if breakdown["Groceries"] != 10.0 || breakdown["Other"] != 5.5 {
		t.Errorf("unexpected breakdown: %v", breakdown)
	}
}

func TestSpendingTrendJSON(t *testing.T) {
	ts := newTestServer(t)
	client := newClient(t)

	postForm(t, client, ts.URL+"/expenses", url.Values{
		"date": {"2025-01-15"}, "amount": {"10.00"}, "category": {"Groceries"},
	})
	postForm(t, client, ts.URL+"/expenses", url.Values{
		"date": {"2025-02-15"}, "amount": {"20.00"}, "category": {"Groceries"},
	})

	resp, body := get(t, client, ts.URL+"/ui/spending-trend?granularity=month")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var points []trendPoint
	if err := json.Unmarshal([]byte(body), &points); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(points) != 2 || points[0].Label != "2025-01" || points[1].Value != 20.0 {
		t.Errorf("unexpected trend: %+v", points)
	}

	resp, _ = get(t, client, ts.URL+"/ui/spending-trend?granularity=quarter")
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("unknown granularity should be 422, got %d", resp.StatusCode)
	}
}

func TestProjectionSIPEndpoint(t *testing.T) {
	ts := newTestServer(t)
	client := newClient(t)

	resp, body := get(t, client, ts.URL+"/api/projections/sip?monthly=1000&rate=12&years=1&inflation=5")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	var out projectionResponse
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(out.Points) != 12 {
		t.Errorf("expected 12 points, got %d", len(out.Points))
	}
	if out.Summary.TotalInvested != 12000 {
		t.Errorf("expected 12000 invested, got %v", out.Summary.TotalInvested)
	}
	if len(out.AdjustedPoints) != 12 || out.AdjustedFinal == nil {
		t.Error("inflation parameter should produce the adjusted series")
	}

	resp, _ = get(t, client, ts.URL+"/api/projections/sip?monthly=-1&rate=12&years=1")
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("negative amount should be 422, got %d", resp.StatusCode)
	}
}

func TestPlannerEndpoint(t *testing.T) {
	ts := newTestServer(t)
	client := newClient(t)

	resp, body := get(t, client, ts.URL+"/api/planner/weekly?budget=700")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	var plan struct {
		Days []struct {
			Day    string  `json:"day"`
			Amount float64 `json:"amount"`
		} `json:"days"`
	}
	if err := json.Unmarshal([]byte(body), &plan); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(plan.Days) != 7 || plan.Days[0].Day != "Monday" {
		t.Fatalf("unexpected plan: %+v", plan)
	}
	if plan.Days[0].Amount < 99.9 || plan.Days[0].Amount > 100.1 {
		t.Errorf("equal split of 700 should give ~100/day, got %v", plan.Days[0].Amount)
	}

	resp, _ = get(t, client, ts.URL+"/api/planner/weekly?budget=700&shares=50,10,10,10,10,5,5")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("valid custom shares should be 200, got %d", resp.StatusCode)
	}

	resp, _ = get(t, client, ts.URL+"/api/planner/weekly?budget=700&shares=50,50,50,0,0,0,0")
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("shares not summing to 100 should be 422, got %d", resp.StatusCode)
	}
}

func TestSessionIsolation(t *testing.T) {
	ts := newTestServer(t)
	alice := newClient(t)
	bob := newClient(t)

	postForm(t, alice, ts.URL+"/expenses", url.Values{
		"amount": {"42.00"}, "category": {"Groceries"}, "description": {"alice only"},
	})

	_, body := get(t, bob, ts.URL+"/expenses")
	if strings.Contains(body, "alice only") {
		t.Error("sessions must not share ledgers")
	}
}

func TestSecurityHeaders(t *testing.T) {
	ts := newTestServer(t)
	client := newClient(t)

	resp, _ := get(t, client, ts.URL+"/")
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing X-Content-Type-Options header")
	}
	if resp.Header.Get("Content-Security-Policy") == "" {
		t.Error("missing Content-Security-Policy header")
	}
}
