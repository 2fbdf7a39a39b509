package api

import (
	"net/http"

	"cloud.google.com/go/civil"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/microfinance-ledger/internal/models"
)

type originateRequest struct {
	ClientID string `json:"client_id"`
	models.LoanTerms
}

type paymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	PaidOn civil.Date      `json:"paid_on"` // defaults to today
}

type paymentResponse struct {
	Loan    models.Loan    `json:"loan"`
	Payment models.Payment `json:"payment"`
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	var terms models.LoanTerms
	if err := decodeBody(r, &terms); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	fin, err := s.loans.Quote(r.Context(), terms)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fin)
}

func (s *Server) handleOriginate(w http.ResponseWriter, r *http.Request) {
	var req originateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	loan, err := s.loans.Originate(r.Context(), req.ClientID, req.LoanTerms)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, loan)
}

func (s *Server) handleGetLoan(w http.ResponseWriter, r *http.Request) {
	loan, err := s.loans.GetLoan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loan)
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := s.loans.Payments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if payments == nil {
		payments = []models.Payment{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"payments": payments})
}

func (s *Server) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.PaidOn == (civil.Date{}) {
		req.PaidOn = s.today()
	}
	loan, payment, err := s.loans.RecordPayment(r.Context(), chi.URLParam(r, "id"), req.Amount, req.PaidOn)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, paymentResponse{Loan: loan, Payment: payment})
}
