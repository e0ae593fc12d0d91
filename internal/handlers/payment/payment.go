package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/proxyluxe/backend/internal/domain"
	"github.com/proxyluxe/backend/internal/dto"
	paymentservice "github.com/proxyluxe/backend/internal/service/paymentservice"
	"github.com/proxyluxe/backend/pkg/auth"
	"github.com/proxyluxe/backend/pkg/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Service interface {
	HandleWebMoney(ctx context.Context, n paymentservice.WebMoneyNotification) (*domain.Payment, error)
	HandlePayeer(ctx context.Context, n paymentservice.PayeerNotification) (*domain.Payment, error)
	HandleDigiseller(ctx context.Context, uniqueCode string) (*domain.Payment, string, error)
	CreateInvoice(ctx context.Context, userID string, amount decimal.Decimal, currency string) (string, error)
	History(ctx context.Context, userID string) ([]domain.Payment, error)
}

const accountURL = "https://proxy.luxe"

type PaymentHandler struct {
	paymentService Service
}

func New(paymentService Service) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// WebMoneyResult godoc
//
//	@Summary		WebMoney result callback
//	@Description	Verify the LMI_HASH2 signature and credit the payment. Always acknowledged with 200 so the gateway stops redelivering.
//	@Tags			Payments
//	@Accept			x-www-form-urlencoded
//	@Produce		json
//	@Success		200	{object}	utils.Response
//	@Router			/api/v1/payment/webmoney [post]
func (h *PaymentHandler) WebMoneyResult(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		utils.RespondWithJSON(w, http.StatusOK, utils.Response{Message: "ok"})
		return
	}
	n := paymentservice.WebMoneyNotification{
		UserID:     r.FormValue("userId"),
		PayeePurse: r.FormValue("LMI_PAYEE_PURSE"),
		Amount:     r.FormValue("LMI_PAYMENT_AMOUNT"),
		PaymentNo:  r.FormValue("LMI_PAYMENT_NO"),
		Mode:       r.FormValue("LMI_MODE"),
		InvsNo:     r.FormValue("LMI_SYS_INVS_NO"),
		TransNo:    r.FormValue("LMI_SYS_TRANS_NO"),
		TransDate:  r.FormValue("LMI_SYS_TRANS_DATE"),
		PayerPurse: r.FormValue("LMI_PAYER_PURSE"),
		PayerWM:    r.FormValue("LMI_PAYER_WM"),
		Hash2:      r.FormValue("LMI_HASH2"),
	}
	if _, err := h.paymentService.HandleWebMoney(r.Context(), n); err != nil {
		zap.L().Warn("webmoney callback rejected", zap.Error(err))
	}
	// The gateway retries on anything but 200.
	utils.RespondWithJSON(w, http.StatusOK, utils.Response{Message: "ok"})
}

// PayeerStatus godoc
//
//	@Summary		Payeer status callback
//	@Description	Verify m_sign and credit the payment. Responds with the m_orderid|success line Payeer expects.
//	@Tags			Payments
//	@Accept			x-www-form-urlencoded
//	@Produce		plain
//	@Success		200	{string}	string
//	@Router			/api/v1/payment/payeer [post]
func (h *PaymentHandler) PayeerStatus(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusOK)
		return
	}
	n := paymentservice.PayeerNotification{
		OperationID:      r.FormValue("m_operation_id"),
		OperationPS:      r.FormValue("m_operation_ps"),
		OperationDate:    r.FormValue("m_operation_date"),
		OperationPayDate: r.FormValue("m_operation_pay_date"),
		Shop:             r.FormValue("m_shop"),
		OrderID:          r.FormValue("m_orderid"),
		Amount:           r.FormValue("m_amount"),
		Currency:         r.FormValue("m_curr"),
		Description:      r.FormValue("m_desc"),
		Status:           r.FormValue("m_status"),
		Sign:             r.FormValue("m_sign"),
	}
	if _, err := h.paymentService.HandlePayeer(r.Context(), n); err != nil {
		zap.L().Warn("payeer callback rejected", zap.Error(err))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(n.OrderID + "|error"))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(n.OrderID + "|success"))
}

// DigisellerReturn godoc
//
//	@Summary		Digiseller return URL
//	@Description	Fetch the purchase by its unique code, credit it and send the buyer back to the personal account page.
//	@Tags			Payments
//	@Produce		json
//	@Param			uniquecode	query	string	true	"Digiseller unique code"
//	@Success		302	{string}	string	"Redirect to the personal account"
//	@Router			/api/v1/payment/digiseller [get]
func (h *PaymentHandler) DigisellerReturn(w http.ResponseWriter, r *http.Request) {
	uniqueCode := r.URL.Query().Get("uniquecode")
	lang := "en"
	if uniqueCode != "" {
		_, purchaseLang, err := h.paymentService.HandleDigiseller(r.Context(), uniqueCode)
		if err != nil {
			zap.L().Warn("digiseller return rejected", zap.Error(err))
		} else {
			lang = purchaseLang
		}
	}
	http.Redirect(w, r, accountURL+"/"+lang+"/personal-account", http.StatusFound)
}

// CreateInvoice godoc
//
//	@Summary		Create a Payeer invoice
//	@Description	Ask Payeer for a hosted payment page for a balance top-up
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Param			request	body	dto.CreateInvoiceRequestDTO	true	"Top-up amount"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.CreateInvoiceResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid amount"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		502	{object}	utils.Response	"Payment gateway unavailable"
//	@Router			/api/v1/payment/invoice [post]
func (h *PaymentHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(string)

	var req dto.CreateInvoiceRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid amount")
		return
	}
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	invoiceURL, err := h.paymentService.CreateInvoice(r.Context(), userID, amount, currency)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadGateway, "Payment gateway unavailable")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.CreateInvoiceResponseDTO{URL: invoiceURL})
}

// GetHistory godoc
//
//	@Summary		Payment history
//	@Description	List the user's credited top-ups, newest first
//	@Tags			Payments
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}		dto.PaymentResponseDTO
//	@Failure		204	{object}	utils.Response	"No data available"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/v1/payment/history [get]
func (h *PaymentHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(string)

	payments, err := h.paymentService.History(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if len(payments) == 0 {
		utils.RespondWithError(w, http.StatusNoContent, "No data available")
		return
	}

	var response []dto.PaymentResponseDTO
	for _, payment := range payments {
		response = append(response, dto.PaymentResponseDTO{
			ID:        payment.ID,
			Price:     payment.Price.String(),
			Method:    payment.Method,
			CreatedAt: payment.CreatedAt.Format(time.RFC3339),
		})
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}
