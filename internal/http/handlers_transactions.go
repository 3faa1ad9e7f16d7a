package http

import (
	"encoding/json"
	"net/http"

	"fintrack/internal/reports"
	"fintrack/internal/services"
)

type transactionRequest struct {
	Amount      moneyAmount `json:"amount"`
	Description string      `json:"description"`
	Date        string      `json:"date"`
	Type        string      `json:"type"`
	CategoryID  *int64      `json:"category_id"`
}

type transactionUpdateRequest struct {
	Amount      *moneyAmount `json:"amount"`
	Description *string      `json:"description"`
	Date        *string      `json:"date"`
	Type        *string      `json:"type"`
	CategoryID  *int64       `json:"category_id"`
}

type transactionListResponse struct {
	Transactions []transactionDTO   `json:"transactions"`
	Pagination   reports.Pagination `json:"pagination"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := transactionFilter(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", reports.DefaultPageLimit)

	result, err := s.engine.ListTransactions(r.Context(), callerID(r), filter, page, limit)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusOK, transactionListResponse{
		Transactions: toTransactionDTOs(result.Transactions),
		Pagination:   result.Pagination,
	})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Message: "Invalid request body"})
		return
	}

	created, err := s.transactions.Create(r.Context(), callerID(r), services.TransactionInput{
		Amount:      float64(req.Amount),
		Description: req.Description,
		Date:        req.Date,
		Type:        req.Type,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toTransactionDTO(created))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	tx, err := s.transactions.Get(r.Context(), callerID(r), id)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusOK, toTransactionDTO(tx))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	var req transactionUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Message: "Invalid request body"})
		return
	}

	var amount *float64
	if req.Amount != nil {
		f := float64(*req.Amount)
		amount = &f
	}

	updated, err := s.transactions.Update(r.Context(), callerID(r), id, services.TransactionUpdate{
		Amount:      amount,
		Description: req.Description,
		Date:        req.Date,
		Type:        req.Type,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusOK, toTransactionDTO(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	if err := s.transactions.Delete(r.Context(), callerID(r), id); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Transaction deleted successfully"})
}
