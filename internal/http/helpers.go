package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"cuotas/internal/core"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// ledgerID resolves the partition for a request: X-Ledger-ID header first,
// then the ledger query parameter, then the configured default.
func (s *Server) ledgerID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get("X-Ledger-ID")); id != "" {
		return id
	}
	if id := strings.TrimSpace(r.URL.Query().Get("ledger")); id != "" {
		return id
	}
	return s.defaultLedgerID
}

// accountRef builds a typed account reference from the scope/card pair every
// command request carries.
func accountRef(scope, card string) (core.AccountRef, error) {
	switch core.AccountKind(strings.TrimSpace(scope)) {
	case core.KindAllCards:
		return core.AllCardsRef(), nil
	case core.KindCard:
		card = strings.TrimSpace(card)
		if card == "" {
			return core.AccountRef{}, errors.New("card scope requires a card name")
		}
		return core.CardRef(card), nil
	case core.KindDebts:
		return core.DebtsRef(), nil
	case core.KindDailyLog:
		return core.DailyLogRef(), nil
	default:
		return core.AccountRef{}, fmt.Errorf("unknown scope %q", scope)
	}
}

// sanitizeInput removes control characters and trims whitespace
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}
