package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"cuotas/internal/core"
	"cuotas/internal/rates"
	"cuotas/internal/service"
	"cuotas/internal/store/memory"

	"github.com/shopspring/decimal"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	svc := service.NewLedgerService(memory.New(), nil)
	srv := NewServer(":0", svc, rates.Static{Rate: decimal.NewFromFloat(0.05)}, "default")
	t.Cleanup(func() {
		if srv.rateLimiter != nil {
			srv.rateLimiter.stop()
		}
	})
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeSnapshot(t *testing.T, rec *httptest.ResponseRecorder) core.Snapshot {
	t.Helper()
	var snap core.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode snapshot: %v (body %s)", err, rec.Body.String())
	}
	return snap
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doJSON(t, srv, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, rec.Code)
		}
	}
}

func TestAddAccountAndSnapshot(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/accounts", map[string]any{
		"name":        "Visa",
		"creditLimit": "100000",
		"showBalance": true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	snap := decodeSnapshot(t, rec)
	if snap.Card("Visa") == nil {
		t.Fatalf("created card missing from response")
	}

	// duplicates are rejected at the API edge
	rec = doJSON(t, srv, http.MethodPost, "/accounts", map[string]any{
		"name":        "Visa",
		"creditLimit": "50000",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/snapshot", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("snapshot status = %d", rec.Code)
	}
	snap = decodeSnapshot(t, rec)
	if len(snap.Cards) != 1 {
		t.Fatalf("expected one card, got %d", len(snap.Cards))
	}
}

func TestAddAccountValidation(t *testing.T) {
	srv := newTestServer(t)

	cases := []map[string]any{
		{"name": "", "creditLimit": "100"},
		{"name": "Visa", "creditLimit": "0"},
		{"name": "Visa", "creditLimit": "-5"},
	}
	for i, body := range cases {
		rec := doJSON(t, srv, http.MethodPost, "/accounts", body)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("case %d status = %d", i, rec.Code)
		}
	}
}

func TestItemLifecycle(t *testing.T) {
	srv := newTestServer(t)
	doJSON(t, srv, http.MethodPost, "/accounts", map[string]any{"name": "Visa", "creditLimit": "100000"})

	rec := doJSON(t, srv, http.MethodPost, "/items", map[string]any{
		"scope": "card",
		"card":  "Visa",
		"item": map[string]any{
			"description":      "TV",
			"totalAmount":      "60000",
			"installmentCount": 3,
			"category":         "Entretenimiento",
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	snap := decodeSnapshot(t, rec)
	card := snap.Card("Visa")
	if len(card.Items) != 1 || !card.AvailableBalance.Equal(decimal.NewFromInt(40000)) {
		t.Fatalf("unexpected card state: %+v", card)
	}

	rec = doJSON(t, srv, http.MethodPost, "/payments/installment", map[string]any{
		"scope": "card",
		"card":  "Visa",
		"index": 0,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("pay status = %d", rec.Code)
	}
	snap = decodeSnapshot(t, rec)
	if snap.Card("Visa").Items[0].InstallmentsRemaining != 2 {
		t.Fatalf("remaining = %d, want 2", snap.Card("Visa").Items[0].InstallmentsRemaining)
	}

	rec = doJSON(t, srv, http.MethodPost, "/payments/period", map[string]any{
		"scope": "card",
		"card":  "Visa",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("period status = %d", rec.Code)
	}
	snap = decodeSnapshot(t, rec)
	if snap.Card("Visa").Items[0].InstallmentsRemaining != 1 {
		t.Fatalf("remaining after period = %d, want 1", snap.Card("Visa").Items[0].InstallmentsRemaining)
	}

	rec = doJSON(t, srv, http.MethodPost, "/items/delete", map[string]any{
		"scope": "card",
		"card":  "Visa",
		"index": 0,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	snap = decodeSnapshot(t, rec)
	if len(snap.Card("Visa").Items) != 0 {
		t.Fatalf("item not deleted")
	}
}

func TestItemValidation(t *testing.T) {
	srv := newTestServer(t)
	doJSON(t, srv, http.MethodPost, "/accounts", map[string]any{"name": "Visa", "creditLimit": "100000"})

	rec := doJSON(t, srv, http.MethodPost, "/items", map[string]any{
		"scope": "card",
		"card":  "Visa",
		"item":  map[string]any{"description": "", "totalAmount": "100"},
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("empty description status = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/items", map[string]any{
		"scope": "card",
		"item":  map[string]any{"description": "TV", "totalAmount": "100"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing card name status = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/items", map[string]any{
		"scope": "wallet",
		"item":  map[string]any{"description": "TV", "totalAmount": "100"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown scope status = %d", rec.Code)
	}
}

func TestLedgerPartitionIsolation(t *testing.T) {
	srv := newTestServer(t)

	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(map[string]any{"name": "Visa", "creditLimit": "1000"})
	req := httptest.NewRequest(http.MethodPost, "/accounts", &buf)
	req.Header.Set("X-Ledger-ID", "familia")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}

	// the default partition stays empty
	rec2 := doJSON(t, srv, http.MethodGet, "/snapshot", nil)
	snap := decodeSnapshot(t, rec2)
	if len(snap.Cards) != 0 {
		t.Fatalf("default partition should be empty, got %d cards", len(snap.Cards))
	}

	// the named partition has the card, selectable by query parameter too
	rec3 := doJSON(t, srv, http.MethodGet, "/snapshot?ledger=familia", nil)
	snap = decodeSnapshot(t, rec3)
	if snap.Card("Visa") == nil {
		t.Fatalf("familia partition lost the card")
	}
}

func TestSummary(t *testing.T) {
	srv := newTestServer(t)
	doJSON(t, srv, http.MethodPost, "/accounts", map[string]any{"name": "Visa", "creditLimit": "100000"})
	doJSON(t, srv, http.MethodPost, "/items", map[string]any{
		"scope": "card", "card": "Visa",
		"item": map[string]any{"description": "TV", "totalAmount": "60000", "installmentCount": 3, "category": "Entretenimiento"},
	})
	doJSON(t, srv, http.MethodPost, "/items", map[string]any{
		"scope": "dailyLog",
		"item":  map[string]any{"description": "café", "totalAmount": "3500", "category": "Alimentos"},
	})

	rec := doJSON(t, srv, http.MethodGet, "/summary", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary status = %d", rec.Code)
	}
	var got summaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if got.LedgerID != "default" || got.View != "pending" {
		t.Fatalf("summary header: %+v", got)
	}
	if len(got.CardDues) != 1 || !got.CardDues[0].Due.Equal(decimal.NewFromInt(20000)) {
		t.Fatalf("card dues = %+v", got.CardDues)
	}
	if !got.TotalMonthlyDue.Equal(decimal.NewFromInt(20000)) {
		t.Fatalf("total due = %s", got.TotalMonthlyDue)
	}
	if len(got.CategoryBreakdown) != 1 || got.CategoryBreakdown[0].Category != core.CategoryEntertainment {
		t.Fatalf("breakdown = %+v", got.CategoryBreakdown)
	}
	if len(got.ForwardProjection) != 3 {
		t.Fatalf("projection = %+v", got.ForwardProjection)
	}
	if len(got.DailyLog) != 1 || got.DailyLog[0].Description != "café" {
		t.Fatalf("daily log = %+v", got.DailyLog)
	}
}

func TestAdvisorEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/advisor", map[string]any{
		"cashPrice":        "11000",
		"financedTotal":    "12000",
		"installmentCount": 3,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var got advisorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// the static provider's 5% per period rate is applied
	if !got.MonthlyInflationRate.Equal(decimal.NewFromFloat(0.05)) {
		t.Fatalf("rate = %s, want 0.05", got.MonthlyInflationRate)
	}
	if got.Verdict == "" {
		t.Fatalf("missing verdict")
	}
	if !got.InstallmentAmount.Equal(decimal.NewFromInt(4000)) {
		t.Fatalf("installment = %s, want 4000", got.InstallmentAmount)
	}

	rec = doJSON(t, srv, http.MethodPost, "/advisor", map[string]any{
		"cashPrice":     "0",
		"financedTotal": "100",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid input status = %d", rec.Code)
	}
}

func TestMethodEnforcement(t *testing.T) {
	srv := newTestServer(t)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/snapshot"},
		{http.MethodPost, "/summary"},
		{http.MethodGet, "/items"},
		{http.MethodGet, "/payments/period"},
		{http.MethodPut, "/accounts"},
	}
	for i, tc := range cases {
		rec := doJSON(t, srv, tc.method, tc.path, nil)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("case %d %s %s status = %d", i, tc.method, tc.path, rec.Code)
		}
	}
}
