package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"loan-underwriter/internal/api/handler/dto"
	"loan-underwriter/internal/domain/loan"
	"loan-underwriter/internal/export"
	"loan-underwriter/internal/pkg/apperrors"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type LoanHandler struct {
	service       loan.LoanService
	maxTermMonths int
	logger        *slog.Logger
}

// NewLoanHandler builds the loan endpoints. Terms above maxTermMonths are
// rejected before reaching the service; zero disables the check.
func NewLoanHandler(s loan.LoanService, maxTermMonths int, l *slog.Logger) *LoanHandler {
	if s == nil {
		panic("loan service cannot be nil")
	}
	return &LoanHandler{
		service:       s,
		maxTermMonths: maxTermMonths,
		logger:        l.With("component", "LoanHandler"),
	}
}

// SubmitApplication scores an application and stores the decision.
//
// @Summary Submit a loan application
// @Description Scores the applicant, stores the request and, unless rejected, its amortization schedule.
// @Tags Loans
// @Accept json
// @Produce json
// @Param request body dto.SubmitApplicationRequest true "Loan application"
// @Success 201 {object} dto.SubmitApplicationResponse "Application decided"
// @Failure 400 {object} dto.ErrorResponse "Invalid application"
// @Failure 503 {object} dto.ErrorResponse "Request stored without schedule"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/applications [post]
// @Security BearerAuth
func (h *LoanHandler) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitApplicationRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(h.maxTermMonths); err != nil {
		h.logger.WarnContext(r.Context(), "Application validation failed", slog.Any("error", err))
		respondError(w, err)
		return
	}

	result, err := h.service.Submit(r.Context(), req.ToInput())
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to submit application", slog.Any("error", err))
		respondError(w, err)
		return
	}

	resp := dto.NewSubmitApplicationResponse(result)
	h.logger.InfoContext(r.Context(), "Application decided", slog.String("requestID", resp.RequestID), slog.String("status", resp.Status))
	respondJSON(w, http.StatusCreated, resp)
}

// GetLoan retrieves a loan request.
//
// @Summary Retrieve loan request details
// @Description Add `include=schedule` to embed the installments.
// @Tags Loans
// @Produce json
// @Param requestID path string true "Loan request ID" Format(uuid)
// @Param include query string false "Use 'schedule' to include installments"
// @Success 200 {object} dto.LoanRequestResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request ID"
// @Failure 404 {object} dto.ErrorResponse "Loan request not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{requestID} [get]
// @Security BearerAuth
func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	requestID, err := getUUIDFromURL(r, "requestID")
	if err != nil {
		respondError(w, err)
		return
	}

	includeSchedule := r.URL.Query().Get("include") == "schedule"
	req, err := h.service.GetRequest(r.Context(), requestID, includeSchedule)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to get loan request", slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewLoanRequestResponse(req, includeSchedule))
}

// GetSchedule lists the installments of a request.
//
// @Summary Retrieve amortization schedule
// @Tags Loans
// @Produce json
// @Param requestID path string true "Loan request ID" Format(uuid)
// @Success 200 {object} dto.ScheduleResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request ID"
// @Failure 404 {object} dto.ErrorResponse "Loan request not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{requestID}/schedule [get]
// @Security BearerAuth
func (h *LoanHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	requestID, err := getUUIDFromURL(r, "requestID")
	if err != nil {
		respondError(w, err)
		return
	}

	schedule, err := h.service.GetSchedule(r.Context(), requestID)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to get schedule", slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewScheduleResponse(requestID.String(), schedule))
}

// ExportSchedule renders the schedule as a document.
//
// @Summary Export amortization schedule
// @Tags Loans
// @Produce application/pdf
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param requestID path string true "Loan request ID" Format(uuid)
// @Param format query string false "pdf (default) or xlsx"
// @Success 200 {file} file
// @Failure 400 {object} dto.ErrorResponse "Invalid request ID or format"
// @Failure 404 {object} dto.ErrorResponse "Loan request not found"
// @Failure 409 {object} dto.ErrorResponse "Request has no schedule"
// @Router /loans/{requestID}/schedule/export [get]
// @Security BearerAuth
func (h *LoanHandler) ExportSchedule(w http.ResponseWriter, r *http.Request) {
	requestID, err := getUUIDFromURL(r, "requestID")
	if err != nil {
		respondError(w, err)
		return
	}

	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = export.FormatPDF
	}
	if format != export.FormatPDF && format != export.FormatXLSX {
		respondError(w, fmt.Errorf("%w: unsupported export format %q", apperrors.ErrInvalidArgument, format))
		return
	}

	req, err := h.service.GetRequest(r.Context(), requestID, true)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to get loan request", slog.Any("error", err))
		respondError(w, err)
		return
	}
	if len(req.Schedule) == 0 {
		respondError(w, fmt.Errorf("%w: request %s has no schedule", apperrors.ErrConflict, requestID))
		return
	}

	var (
		body        []byte
		contentType string
	)
	switch format {
	case export.FormatXLSX:
		body, err = export.BuildScheduleXLSX(req, req.Schedule)
		contentType = xlsxContentType
	default:
		body, err = export.BuildSchedulePDF(req, req.Schedule)
		contentType = "application/pdf"
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to render schedule", slog.String("format", format), slog.Any("error", err))
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="schedule-%s.%s"`, requestID, format))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// RetrySchedule stores the schedule of a request that was saved without one.
//
// @Summary Retry schedule persistence
// @Description Regenerates the schedule from the stored request without re-scoring. Safe to repeat.
// @Tags Loans
// @Produce json
// @Param requestID path string true "Loan request ID" Format(uuid)
// @Success 200 {object} dto.ScheduleResponse
// @Failure 404 {object} dto.ErrorResponse "Loan request not found"
// @Failure 409 {object} dto.ErrorResponse "Request was rejected"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{requestID}/schedule/retry [post]
// @Security BearerAuth
func (h *LoanHandler) RetrySchedule(w http.ResponseWriter, r *http.Request) {
	requestID, err := getUUIDFromURL(r, "requestID")
	if err != nil {
		respondError(w, err)
		return
	}

	schedule, err := h.service.RetrySchedule(r.Context(), requestID)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to retry schedule", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Schedule ensured", slog.String("requestID", requestID.String()))
	respondJSON(w, http.StatusOK, dto.NewScheduleResponse(requestID.String(), schedule))
}

// GetOutstanding sums the pending installments of a request.
//
// @Summary Retrieve outstanding amount
// @Tags Loans
// @Produce json
// @Param requestID path string true "Loan request ID" Format(uuid)
// @Success 200 {object} dto.OutstandingResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request ID"
// @Failure 404 {object} dto.ErrorResponse "Loan request not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{requestID}/outstanding [get]
// @Security BearerAuth
func (h *LoanHandler) GetOutstanding(w http.ResponseWriter, r *http.Request) {
	requestID, err := getUUIDFromURL(r, "requestID")
	if err != nil {
		respondError(w, err)
		return
	}

	outstanding, err := h.service.GetOutstanding(r.Context(), requestID)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to get outstanding amount", slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewOutstandingResponse(requestID.String(), outstanding))
}

// PayInstallment marks one installment paid.
//
// @Summary Pay an installment
// @Tags Installments
// @Produce json
// @Param installmentID path string true "Installment ID" Format(uuid)
// @Success 200 {object} dto.InstallmentResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid installment ID"
// @Failure 404 {object} dto.ErrorResponse "Installment not found"
// @Failure 409 {object} dto.ErrorResponse "Installment already paid"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /installments/{installmentID}/pay [post]
// @Security BearerAuth
func (h *LoanHandler) PayInstallment(w http.ResponseWriter, r *http.Request) {
	installmentID, err := getUUIDFromURL(r, "installmentID")
	if err != nil {
		respondError(w, err)
		return
	}

	inst, err := h.service.PayInstallment(r.Context(), installmentID)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to pay installment", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Installment paid", slog.String("installmentID", installmentID.String()))
	respondJSON(w, http.StatusOK, dto.NewInstallmentResponse(inst))
}

// GetApplicantLoans lists every request of an applicant.
//
// @Summary Applicant dashboard
// @Tags Applicants
// @Produce json
// @Param email query string true "Applicant e-mail"
// @Success 200 {object} dto.ApplicantLoansResponse
// @Failure 400 {object} dto.ErrorResponse "Missing e-mail"
// @Failure 404 {object} dto.ErrorResponse "Applicant not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /applicants/loans [get]
// @Security BearerAuth
func (h *LoanHandler) GetApplicantLoans(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		respondError(w, fmt.Errorf("%w: missing required query parameter 'email'", apperrors.ErrInvalidArgument))
		return
	}

	loans, err := h.service.ListApplicantRequests(r.Context(), email)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to list applicant requests", slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewApplicantLoansResponse(loans))
}
