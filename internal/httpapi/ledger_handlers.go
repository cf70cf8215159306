package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dongmun.org/internal/audit"
	"dongmun.org/internal/ledger"
	"dongmun.org/internal/member"
)

type appendTransactionRequest struct {
	Date        string `json:"date"`
	Type        string `json:"type"`
	Amount      int64  `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

type listTransactionsResponse struct {
	Items   []ledger.Transaction `json:"items"`
	Balance int64                `json:"balance"`
	AsOf    time.Time            `json:"as_of"`
}

func (a *API) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listTransactions(w, r)
	case http.MethodPost:
		a.appendTransaction(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	balance, err := a.ledger.CurrentBalance(r.Context())
	if err != nil {
		handleLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"balance": balance,
		"as_of":   time.Now().UTC(),
	})
}

// listTransactions returns the full ledger, newest first, with the current
// balance alongside so the treasury page renders from one response.
func (a *API) listTransactions(w http.ResponseWriter, r *http.Request) {
	items, err := a.ledger.List(r.Context())
	if err != nil {
		handleLedgerError(w, r, err)
		return
	}
	var balance int64
	if len(items) > 0 {
		balance = items[0].Balance
	}
	if items == nil {
		items = []ledger.Transaction{}
	}
	writeJSON(w, http.StatusOK, listTransactionsResponse{
		Items:   items,
		Balance: balance,
		AsOf:    time.Now().UTC(),
	})
}

func (a *API) appendTransaction(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.requireCapability(w, r, member.CapRecordTransaction)
	if !ok {
		return
	}

	var req appendTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	date, err := time.Parse("2006-01-02", strings.TrimSpace(req.Date))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	entryType, ok := ledger.ParseEntryType(strings.TrimSpace(req.Type))
	if !ok {
		writeError(w, r, http.StatusBadRequest, "type must be deposit or withdrawal")
		return
	}

	tx, err := a.ledger.Append(r.Context(), ledger.AppendInput{
		Date:        date,
		Type:        entryType,
		Amount:      req.Amount,
		Category:    strings.TrimSpace(req.Category),
		Description: strings.TrimSpace(req.Description),
		CreatedBy:   actor.ID,
	})
	if err != nil {
		handleLedgerError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "treasury.transaction.append", map[string]any{
		"transaction_id": tx.ID,
		"type":           string(tx.Type),
		"amount":         strconv.FormatInt(tx.Amount, 10),
		"balance":        strconv.FormatInt(tx.Balance, 10),
		"category":       tx.Category,
	})

	writeJSON(w, http.StatusCreated, tx)
}

func handleLedgerError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidType),
		errors.Is(err, ledger.ErrInvalidDate),
		errors.Is(err, ledger.ErrInvalidCategory):
		writeError(w, r, http.StatusBadRequest, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
