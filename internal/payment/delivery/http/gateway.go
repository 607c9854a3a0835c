package http

import (
	"net/http"
	"net/url"

	"github.com/tair/fashion-checkout/internal/payment/domain"
	"github.com/tair/fashion-checkout/internal/payment/gateway/vnpay"
	"github.com/tair/fashion-checkout/internal/payment/usecase/command"
	"github.com/tair/fashion-checkout/pkg/httpx"
	"github.com/tair/fashion-checkout/pkg/logger"
)

// VNPayReturn handles GET /api/payments/vnpay/return. The browser lands here
// after the gateway and is sent on to the storefront result page.
func (h *PaymentHandler) VNPayReturn(w http.ResponseWriter, r *http.Request) {
	result, err := h.verifyHandler.Handle(r.Context(), command.VerifyAndRecordCommand{
		Params:   vnpay.ParamsFromValues(r.URL.Query()),
		Entry:    domain.TypeReturnCallback,
		ClientIP: httpx.ClientIP(r),
	})
	if err != nil {
		http.Redirect(w, r, h.errorPage(), http.StatusFound)
		return
	}

	switch result.Outcome {
	case command.OutcomeApproved, command.OutcomeAlreadyConfirmed:
		http.Redirect(w, r, h.resultPage("success", result.OrderCode), http.StatusFound)
	case command.OutcomeDeclined:
		http.Redirect(w, r, h.resultPage("failed", result.OrderCode), http.StatusFound)
	default:
		http.Redirect(w, r, h.errorPage(), http.StatusFound)
	}
}

// VNPayIPN handles the server-to-server notification. The gateway retries
// until it reads a recognized RspCode, so the body is always the ack and the
// status is always 200.
func (h *PaymentHandler) VNPayIPN(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		logger.Warn(r.Context()).Err(err).Msg("Unreadable gateway notification")
		httpx.JSON(w, http.StatusOK, command.OutcomeError.Ack())
		return
	}

	result, err := h.verifyHandler.Handle(r.Context(), command.VerifyAndRecordCommand{
		Params:   vnpay.ParamsFromValues(r.Form),
		Entry:    domain.TypeIPN,
		ClientIP: httpx.ClientIP(r),
	})
	if err != nil {
		httpx.JSON(w, http.StatusOK, command.OutcomeError.Ack())
		return
	}
	httpx.JSON(w, http.StatusOK, result.Outcome.Ack())
}

func (h *PaymentHandler) resultPage(outcome, orderCode string) string {
	return h.resultBaseURL + "/payment/" + outcome + "?orderCode=" + url.QueryEscape(orderCode)
}

func (h *PaymentHandler) errorPage() string {
	return h.resultBaseURL + "/payment/error?message=" + url.QueryEscape(command.ErrVerification.Error())
}
