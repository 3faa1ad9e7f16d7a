package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fintrack/internal/auth"
	applog "fintrack/internal/log"
	"fintrack/internal/render"
	"fintrack/internal/reports"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	repo, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	tokens := auth.NewManager("test-secret", time.Hour)
	srv := NewServer(":0", Deps{
		Accounts:     services.NewAccountService(repo, tokens, 4),
		Categories:   services.NewCategoryService(repo),
		Transactions: services.NewTransactionService(repo, nil),
		Engine:       reports.NewEngine(repo),
		PDF:          render.NewPDF(),
		Tokens:       tokens,
	})
	t.Cleanup(func() { srv.rateLimiter.stop() })

	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp, data
}

func register(t *testing.T, ts *httptest.Server, username string) string {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "hunter22",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d: %s", resp.StatusCode, body)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &out); err != nil || out.Token == "" {
		t.Fatalf("register response %s: %v", body, err)
	}
	return out.Token
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/api/transactions", "/api/categories", "/api/reports/summary"} {
		resp, _ := doJSON(t, http.MethodGet, ts.URL+path, "", nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("GET %s without token = %d, want 401", path, resp.StatusCode)
		}
	}

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/api/transactions", "bogus-token", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bogus token = %d, want 401", resp.StatusCode)
	}
}

func TestRegisterLoginFlow(t *testing.T) {
	ts := newTestServer(t)
	register(t, ts, "alice")

	// Duplicate registration conflicts.
	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/auth/register", "", map[string]string{
		"username": "alice", "email": "alice@example.com", "password": "hunter22",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate register = %d: %s", resp.StatusCode, body)
	}

	resp, body = doJSON(t, http.MethodPost, ts.URL+"/api/auth/login", "", map[string]string{
		"username": "alice", "password": "wrong",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad login = %d: %s", resp.StatusCode, body)
	}

	resp, body = doJSON(t, http.MethodPost, ts.URL+"/api/auth/login", "", map[string]string{
		"username": "alice", "password": "hunter22",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login = %d: %s", resp.StatusCode, body)
	}

	var login struct {
		Token string `json:"token"`
		User  struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	if err := json.Unmarshal(body, &login); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	if login.User.Username != "alice" || login.Token == "" {
		t.Errorf("login response = %s", body)
	}

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/auth/profile", login.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("profile = %d: %s", resp.StatusCode, body)
	}
}

func TestTransactionFlow(t *testing.T) {
	ts := newTestServer(t)
	token := register(t, ts, "alice")

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/transactions", token, map[string]any{
		"amount": 12.50, "description": "Lunch", "date": "2024-01-05", "type": "expense",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create = %d: %s", resp.StatusCode, body)
	}
	var created struct {
		ID     int64   `json:"id"`
		Amount float64 `json:"amount"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.Amount != 12.50 {
		t.Errorf("created amount = %v", created.Amount)
	}

	// Validation failures carry the message payload.
	resp, body = doJSON(t, http.MethodPost, ts.URL+"/api/transactions", token, map[string]any{
		"amount": -1, "date": "2024-01-05", "type": "expense",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("negative amount = %d: %s", resp.StatusCode, body)
	}
	if !strings.Contains(string(body), "Amount must be positive") {
		t.Errorf("validation message missing: %s", body)
	}

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/transactions?page=1&limit=10", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list = %d: %s", resp.StatusCode, body)
	}
	var list struct {
		Transactions []json.RawMessage `json:"transactions"`
		Pagination   struct {
			Page  int   `json:"page"`
			Total int64 `json:"total"`
			Pages int64 `json:"pages"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Transactions) != 1 || list.Pagination.Total != 1 || list.Pagination.Pages != 1 {
		t.Errorf("list = %s", body)
	}

	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/transactions/%d", ts.URL, created.ID), token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("delete = %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/transactions/%d", ts.URL, created.ID), token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", resp.StatusCode)
	}
}

func TestUserIsolation(t *testing.T) {
	ts := newTestServer(t)
	alice := register(t, ts, "alice")
	bob := register(t, ts, "bob")

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/transactions", alice, map[string]any{
		"amount": 10.00, "date": "2024-01-05", "type": "expense",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create = %d: %s", resp.StatusCode, body)
	}
	var created struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	resp, _ = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/transactions/%d", ts.URL, created.ID), bob, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("cross-user read = %d, want 404", resp.StatusCode)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	ts := newTestServer(t)
	token := register(t, ts, "alice")

	for _, tx := range []map[string]any{
		{"amount": 3000.00, "date": "2024-01-01", "type": "income", "description": "Salary"},
		{"amount": 12.50, "date": "2024-01-05", "type": "expense", "description": "Lunch"},
	} {
		resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/transactions", token, tx)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("seed = %d: %s", resp.StatusCode, body)
		}
	}

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/reports/summary?year=2024&month=1", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("summary = %d: %s", resp.StatusCode, body)
	}

	var report struct {
		Summary struct {
			Income  float64 `json:"income"`
			Expense float64 `json:"expense"`
			Net     float64 `json:"net"`
		} `json:"summary"`
		CategoryBreakdown []json.RawMessage `json:"categoryBreakdown"`
		DailySpending     []json.RawMessage `json:"dailySpending"`
		Period            struct {
			Year  int `json:"year"`
			Month int `json:"month"`
		} `json:"period"`
	}
	if err := json.Unmarshal(body, &report); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if report.Summary.Income != 3000.00 || report.Summary.Expense != 12.50 {
		t.Errorf("summary = %+v", report.Summary)
	}
	if report.Summary.Net != report.Summary.Income-report.Summary.Expense {
		t.Errorf("net = %v", report.Summary.Net)
	}
	if report.Period.Year != 2024 || report.Period.Month != 1 {
		t.Errorf("period = %+v", report.Period)
	}
	if len(report.DailySpending) != 2 {
		t.Errorf("daily points = %d, want 2", len(report.DailySpending))
	}

	// Out-of-range month is a client fault.
	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/reports/summary?year=2024&month=13", token, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("month 13 = %d, want 400", resp.StatusCode)
	}
}

func TestCategoryDeleteConflict(t *testing.T) {
	ts := newTestServer(t)
	token := register(t, ts, "alice")

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/categories", token, map[string]string{
		"name": "Coffee", "type": "expense",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create category = %d: %s", resp.StatusCode, body)
	}
	var cat struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(body, &cat); err != nil {
		t.Fatalf("decode category: %v", err)
	}

	resp, body = doJSON(t, http.MethodPost, ts.URL+"/api/transactions", token, map[string]any{
		"amount": 4.50, "date": "2024-01-05", "type": "expense", "category_id": cat.ID,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create transaction = %d: %s", resp.StatusCode, body)
	}

	resp, body = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/categories/%d", ts.URL, cat.ID), token, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("delete in-use category = %d: %s", resp.StatusCode, body)
	}
	if !strings.Contains(string(body), "being used by transactions") {
		t.Errorf("conflict message missing: %s", body)
	}
}

func TestExportEndpoints(t *testing.T) {
	ts := newTestServer(t)
	token := register(t, ts, "alice")

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/transactions", token, map[string]any{
		"amount": 12.50, "description": "Lunch", "date": "2024-01-05", "type": "expense",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("seed = %d: %s", resp.StatusCode, body)
	}

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/reports/export/csv", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("csv export = %d: %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/csv" {
		t.Errorf("csv content type = %q", ct)
	}
	if !strings.HasPrefix(string(body), "Date,Type,Amount,Description,Category") {
		t.Errorf("csv body = %q", body)
	}
	if !strings.Contains(string(body), `"2024-01-05","expense","12.50","Lunch",""`) {
		t.Errorf("csv row missing: %q", body)
	}

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/reports/export/pdf", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("pdf export = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("pdf content type = %q", ct)
	}
	if !bytes.HasPrefix(body, []byte("%PDF")) {
		t.Errorf("pdf body does not start with PDF header")
	}
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		resp, _ := doJSON(t, http.MethodGet, ts.URL+path, "", nil)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s = %d", path, resp.StatusCode)
		}
	}
}

func TestTransactionStringAmount(t *testing.T) {
	ts := newTestServer(t)
	token := register(t, ts, "alice")

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/transactions", token, map[string]any{
		"amount": "12.50", "description": "Lunch", "date": "2024-01-05", "type": "expense",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create with string amount = %d: %s", resp.StatusCode, body)
	}
	var created struct {
		ID     int64   `json:"id"`
		Amount float64 `json:"amount"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.Amount != 12.5 {
		t.Errorf("created amount = %v, want 12.5", created.Amount)
	}

	// Comma separator works too.
	resp, body = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/transactions/%d", ts.URL, created.ID), token, map[string]any{
		"amount": "20,25",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update with string amount = %d: %s", resp.StatusCode, body)
	}
	var updated struct {
		Amount float64 `json:"amount"`
	}
	if err := json.Unmarshal(body, &updated); err != nil {
		t.Fatalf("decode updated: %v", err)
	}
	if updated.Amount != 20.25 {
		t.Errorf("updated amount = %v, want 20.25", updated.Amount)
	}

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/transactions", token, map[string]any{
		"amount": "nope", "description": "Bad", "date": "2024-01-05", "type": "expense",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("non-decimal string amount = %d, want 400", resp.StatusCode)
	}
}

func TestRequestLogFields(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	ts := newTestServer(t)
	register(t, ts, "alice")

	logged := buf.String()
	if !strings.Contains(logged, "Request completed") {
		t.Fatalf("no request completion record logged:\n%s", logged)
	}
	for _, key := range []string{
		applog.FieldRequestID,
		applog.FieldMethod,
		applog.FieldPath,
		applog.FieldStatusCode,
		applog.FieldDuration,
		applog.FieldClientIP,
	} {
		if !strings.Contains(logged, `"`+key+`"`) {
			t.Errorf("request log missing field %q:\n%s", key, logged)
		}
	}
}
