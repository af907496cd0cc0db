package http

import (
	"log/slog"
	"net/http"
	"time"

	"cuotas/internal/advisor"
	"cuotas/internal/core"
	"cuotas/internal/ledger"
	"cuotas/internal/report"

	"github.com/shopspring/decimal"
)

type (
	itemPayload struct {
		Description      string          `json:"description"`
		TotalAmount      decimal.Decimal `json:"totalAmount"`
		InstallmentCount int             `json:"installmentCount"`
		AlreadyPaid      int             `json:"alreadyPaid"`
		Category         string          `json:"category"`
		Deferred         bool            `json:"deferred"`
		Date             string          `json:"date,omitempty"`
	}

	accountRequest struct {
		Name        string          `json:"name"`
		CreditLimit decimal.Decimal `json:"creditLimit"`
		ShowBalance bool            `json:"showBalance"`
	}

	itemRequest struct {
		Scope string      `json:"scope"`
		Card  string      `json:"card,omitempty"`
		Item  itemPayload `json:"item"`
		// EditIndex replaces the item at that position; absent means create.
		EditIndex *int `json:"editIndex,omitempty"`
	}

	indexRequest struct {
		Scope string `json:"scope"`
		Card  string `json:"card,omitempty"`
		Index int    `json:"index"`
	}

	scopeRequest struct {
		Scope string `json:"scope"`
		Card  string `json:"card,omitempty"`
	}
)

func (p itemPayload) draft() core.ItemDraft {
	return core.ItemDraft{
		Description:      sanitizeInput(p.Description),
		TotalAmount:      p.TotalAmount,
		InstallmentCount: p.InstallmentCount,
		AlreadyPaid:      p.AlreadyPaid,
		Category:         core.Category(sanitizeInput(p.Category)),
		Deferred:         p.Deferred,
		Date:             sanitizeInput(p.Date),
	}
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	snap, err := s.svc.Snapshot(r.Context(), s.ledgerID(r))
	if err != nil {
		slog.ErrorContext(r.Context(), "Snapshot load error", "error", err, "ledger_id", s.ledgerID(r))
		writeError(w, http.StatusInternalServerError, "failed to load snapshot")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type (
	cardDue struct {
		Card string          `json:"card"`
		Due  decimal.Decimal `json:"due"`
	}

	summaryResponse struct {
		LedgerID          string                  `json:"ledgerId"`
		View              report.View             `json:"view"`
		CardDues          []cardDue               `json:"cardDues"`
		DebtsDue          decimal.Decimal         `json:"debtsDue"`
		TotalMonthlyDue   decimal.Decimal         `json:"totalMonthlyDue"`
		CategoryBreakdown []report.CategoryAmount `json:"categoryBreakdown"`
		ForwardProjection []report.PeriodTotal    `json:"forwardProjection"`
		DailyLog          []core.Item             `json:"dailyLog"`
		DailyMonthToDate  []report.DayAmount      `json:"dailyMonthToDate"`
		DailyByMonth      []report.MonthAmount    `json:"dailyByMonth"`
	}
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	view := report.ViewPending
	if r.URL.Query().Get("view") == string(report.ViewSettled) {
		view = report.ViewSettled
	}

	ledgerID := s.ledgerID(r)
	snap, err := s.svc.Snapshot(r.Context(), ledgerID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Snapshot load error", "error", err, "ledger_id", ledgerID)
		writeError(w, http.StatusInternalServerError, "failed to load snapshot")
		return
	}

	resp := summaryResponse{
		LedgerID: ledgerID,
		View:     view,
		CardDues: []cardDue{},
		DebtsDue: report.TotalOutstandingDebts(snap),
	}

	var installmentItems []core.Item
	for _, card := range snap.Cards {
		resp.CardDues = append(resp.CardDues, cardDue{
			Card: card.Name,
			Due:  report.MonthlyDue(card.Items),
		})
		installmentItems = append(installmentItems, card.Items...)
	}
	installmentItems = append(installmentItems, snap.Debts...)

	// The pending/settled toggle scopes the breakdown and the projection.
	visible := report.Visible(installmentItems, view)
	resp.TotalMonthlyDue = report.TotalOutstandingAcrossCards(snap).Add(resp.DebtsDue)
	resp.CategoryBreakdown = report.CategoryBreakdown(visible)
	resp.ForwardProjection = report.ForwardProjection(visible)

	now := time.Now()
	resp.DailyLog = report.SortedDailyLog(snap.DailyLog)
	resp.DailyMonthToDate = report.DailyLogMonthToDate(snap.DailyLog, now)
	resp.DailyByMonth = report.DailyLogByMonthOfYear(snap.DailyLog, now)

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleAddAccount(w, r)
	case http.MethodDelete:
		s.handleDeleteAccount(w, r)
	default:
		w.Header().Set("Allow", "POST, DELETE")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleAddAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := sanitizeInput(req.Name)
	if name == "" {
		writeError(w, http.StatusUnprocessableEntity, "account name is required")
		return
	}
	if !req.CreditLimit.IsPositive() {
		writeError(w, http.StatusUnprocessableEntity, "credit limit must be positive")
		return
	}

	ledgerID := s.ledgerID(r)
	current, err := s.svc.Snapshot(r.Context(), ledgerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load snapshot")
		return
	}
	if current.Card(name) != nil {
		writeError(w, http.StatusConflict, "account already exists")
		return
	}

	snap, err := s.svc.AddAccount(r.Context(), ledgerID, name, req.CreditLimit, req.ShowBalance)
	if err != nil {
		slog.ErrorContext(r.Context(), "Add account error", "error", err, "ledger_id", ledgerID, "account", name)
		writeError(w, http.StatusInternalServerError, "failed to save snapshot")
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ledgerID := s.ledgerID(r)
	snap, err := s.svc.DeleteAccount(r.Context(), ledgerID, sanitizeInput(req.Name))
	if err != nil {
		slog.ErrorContext(r.Context(), "Delete account error", "error", err, "ledger_id", ledgerID, "account", req.Name)
		writeError(w, http.StatusInternalServerError, "failed to save snapshot")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req itemRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ref, err := accountRef(req.Scope, req.Card)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	draft := req.Item.draft()
	if err := draft.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	editIndex := ledger.NoEdit
	if req.EditIndex != nil {
		editIndex = *req.EditIndex
	}

	ledgerID := s.ledgerID(r)
	snap, err := s.svc.CreateOrUpdateItem(r.Context(), ledgerID, ref, draft, editIndex)
	if err != nil {
		slog.ErrorContext(r.Context(), "Create item error", "error", err, "ledger_id", ledgerID, "account", ref.String())
		writeError(w, http.StatusInternalServerError, "failed to save snapshot")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req indexRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ref, err := accountRef(req.Scope, req.Card)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ledgerID := s.ledgerID(r)
	snap, err := s.svc.DeleteItem(r.Context(), ledgerID, ref, req.Index)
	if err != nil {
		slog.ErrorContext(r.Context(), "Delete item error", "error", err, "ledger_id", ledgerID, "account", ref.String(), "index", req.Index)
		writeError(w, http.StatusInternalServerError, "failed to save snapshot")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handlePayInstallment(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req indexRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ref, err := accountRef(req.Scope, req.Card)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ledgerID := s.ledgerID(r)
	snap, err := s.svc.PayInstallment(r.Context(), ledgerID, ref, req.Index)
	if err != nil {
		slog.ErrorContext(r.Context(), "Pay installment error", "error", err, "ledger_id", ledgerID, "account", ref.String(), "index", req.Index)
		writeError(w, http.StatusInternalServerError, "failed to save snapshot")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handlePayPeriod(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req scopeRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ref, err := accountRef(req.Scope, req.Card)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ledgerID := s.ledgerID(r)
	snap, err := s.svc.PayPeriod(r.Context(), ledgerID, ref)
	if err != nil {
		slog.ErrorContext(r.Context(), "Pay period error", "error", err, "ledger_id", ledgerID, "account", ref.String())
		writeError(w, http.StatusInternalServerError, "failed to save snapshot")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleRecalculate(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req scopeRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ref, err := accountRef(req.Scope, req.Card)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ledgerID := s.ledgerID(r)
	snap, err := s.svc.RecalculateBalance(r.Context(), ledgerID, ref)
	if err != nil {
		slog.ErrorContext(r.Context(), "Recalculate balance error", "error", err, "ledger_id", ledgerID, "account", ref.String())
		writeError(w, http.StatusInternalServerError, "failed to save snapshot")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type (
	advisorRequest struct {
		CashPrice        decimal.Decimal `json:"cashPrice"`
		FinancedTotal    decimal.Decimal `json:"financedTotal"`
		InstallmentCount int             `json:"installmentCount"`
		// Absent rate means "use the current market rate".
		MonthlyInflationRate *decimal.Decimal       `json:"monthlyInflationRate,omitempty"`
		Profile              *advisor.IncomeProfile `json:"profile,omitempty"`
	}

	advisorResponse struct {
		advisor.Result
		MonthlyInflationRate decimal.Decimal `json:"monthlyInflationRate"`
		ExistingMonthlyDue   decimal.Decimal `json:"existingMonthlyDue"`
	}
)

func (s *Server) handleAdvisor(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req advisorRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.FinancedTotal.IsPositive() || !req.CashPrice.IsPositive() {
		writeError(w, http.StatusUnprocessableEntity, "cash price and financed total must be positive")
		return
	}

	ledgerID := s.ledgerID(r)
	snap, err := s.svc.Snapshot(r.Context(), ledgerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load snapshot")
		return
	}
	existingDue := report.TotalOutstandingAcrossCards(snap).Add(report.TotalOutstandingDebts(snap))

	var rate decimal.Decimal
	if req.MonthlyInflationRate != nil {
		rate = *req.MonthlyInflationRate
	} else {
		// The provider falls back to the configured rate on fetch failure.
		rate, err = s.rateProvider.CurrentMonthlyRate(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "Rate lookup error", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to resolve inflation rate")
			return
		}
	}

	result := advisor.Evaluate(advisor.Input{
		CashPrice:            req.CashPrice,
		FinancedTotal:        req.FinancedTotal,
		InstallmentCount:     req.InstallmentCount,
		MonthlyInflationRate: rate,
		ExistingMonthlyDue:   existingDue,
		Profile:              req.Profile,
	})

	writeJSON(w, http.StatusOK, advisorResponse{
		Result:               result,
		MonthlyInflationRate: rate,
		ExistingMonthlyDue:   existingDue,
	})
}
