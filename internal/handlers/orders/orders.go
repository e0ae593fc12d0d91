package orders

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/proxyluxe/backend/internal/domain"
	"github.com/proxyluxe/backend/internal/dto"
	orderservice "github.com/proxyluxe/backend/internal/service/orderservice"
	"github.com/proxyluxe/backend/internal/service/pricing"
	"github.com/proxyluxe/backend/pkg/auth"
	"github.com/proxyluxe/backend/pkg/utils"
)

type Service interface {
	Create(ctx context.Context, input orderservice.CreateOrderInput) (*domain.Order, error)
	Finish(ctx context.Context, orderID, promocode, lang string) (*orderservice.FinishResult, error)
	Prolong(ctx context.Context, userID, orderID string, ids []string, periodID int) (*domain.Order, error)
	List(ctx context.Context, userID string) ([]domain.Order, error)
	Delete(ctx context.Context, userID, orderID string) error
	CheckPromocode(ctx context.Context, code string) (*domain.Coupon, error)
}

type OrderHandler struct {
	orderService Service
}

func New(orderService Service) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// CreateOrder godoc
//
//	@Summary		Create a pending order
//	@Description	Price a purchase intent and record it as a PENDING order
//	@Tags			Orders
//	@Accept			json
//	@Produce		json
//	@Param			request	body	dto.CreateOrderRequestDTO	true	"Order parameters"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.OrderResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid order parameters"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/v1/orders [post]
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(string)

	var req dto.CreateOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Type == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := h.orderService.Create(r.Context(), orderservice.CreateOrderInput{
		UserID:     userID,
		Type:       req.Type,
		Country:    req.Country,
		Quantity:   req.Quantity,
		Tariff:     req.Tariff,
		PeriodDays: req.PeriodDays,
		ProxyType:  req.ProxyType,
		Goal:       req.Goal,
	})
	if err != nil {
		if errors.Is(err, pricing.ErrUnknownTariff) {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toOrderResponse(order))
}

// GetOrders godoc
//
//	@Summary		List unpaid orders
//	@Description	Retrieve the user's orders that still await payment
//	@Tags			Orders
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}		dto.OrderResponseDTO
//	@Failure		204	{object}	utils.Response	"No data available"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/v1/orders [get]
func (h *OrderHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(string)

	orders, err := h.orderService.List(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if len(orders) == 0 {
		utils.RespondWithError(w, http.StatusNoContent, "No data available")
		return
	}

	var response []dto.OrderResponseDTO
	for _, order := range orders {
		order := order
		response = append(response, toOrderResponse(&order))
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

// FinishOrder godoc
//
//	@Summary		Settle a pending order
//	@Description	Charge the balance, provision the proxies upstream and flip the order to PAID
//	@Tags			Orders
//	@Accept			json
//	@Produce		json
//	@Param			request	body	dto.FinishOrderRequestDTO	true	"Settlement request"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.FinishOrderResponseDTO
//	@Failure		400	{object}	utils.Response	"Order cannot be settled"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		404	{object}	utils.Response	"Order not found"
//	@Failure		500	{object}	utils.Response	"Provisioning failure"
//	@Router			/api/v1/orders/finish [post]
func (h *OrderHandler) FinishOrder(w http.ResponseWriter, r *http.Request) {
	var req dto.FinishOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OrderID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.orderService.Finish(r.Context(), req.OrderID, req.Promocode, req.Lang)
	if err != nil {
		respondWithOrderError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.FinishOrderResponseDTO{
		OrderID: result.OrderID,
		Type:    result.Type,
	})
}

// ProlongOrder godoc
//
//	@Summary		Prolong a paid order
//	@Description	Extend a paid order by one month, billed as a fresh order row
//	@Tags			Orders
//	@Accept			json
//	@Produce		json
//	@Param			request	body	dto.ProlongOrderRequestDTO	true	"Prolongation request"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.OrderResponseDTO
//	@Failure		400	{object}	utils.Response	"Order cannot be prolonged"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		404	{object}	utils.Response	"Order not found"
//	@Failure		500	{object}	utils.Response	"Provisioning failure"
//	@Router			/api/v1/orders/prolong [post]
func (h *OrderHandler) ProlongOrder(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(string)

	var req dto.ProlongOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OrderID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	renewal, err := h.orderService.Prolong(r.Context(), userID, req.OrderID, req.IDs, req.PeriodID)
	if err != nil {
		respondWithOrderError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toOrderResponse(renewal))
}

// DeleteOrder godoc
//
//	@Summary		Cancel a pending order
//	@Description	Delete an order that has not been paid yet
//	@Tags			Orders
//	@Produce		json
//	@Param			orderID	path	string	true	"Order id"
//	@Security		BearerAuth
//	@Success		200	{object}	utils.Response	"Order deleted"
//	@Failure		400	{object}	utils.Response	"Order already processed"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		404	{object}	utils.Response	"Order not found"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/v1/orders/{orderID} [delete]
func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(string)
	orderID := chi.URLParam(r, "orderID")

	if err := h.orderService.Delete(r.Context(), userID, orderID); err != nil {
		respondWithOrderError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Response{Message: "Order deleted"})
}

// CheckPromocode godoc
//
//	@Summary		Validate a promocode
//	@Description	Check that a promocode exists and still has uses left
//	@Tags			Orders
//	@Accept			json
//	@Produce		json
//	@Param			request	body	dto.CheckPromocodeRequestDTO	true	"Promocode"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.CheckPromocodeResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid promocode"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/v1/orders/promocode [post]
func (h *OrderHandler) CheckPromocode(w http.ResponseWriter, r *http.Request) {
	var req dto.CheckPromocodeRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	coupon, err := h.orderService.CheckPromocode(r.Context(), req.Code)
	if err != nil {
		respondWithOrderError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.CheckPromocodeResponseDTO{
		Code:     coupon.Code,
		Discount: coupon.Discount,
	})
}

func respondWithOrderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, orderservice.ErrOrderNotFound),
		errors.Is(err, orderservice.ErrUserNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, orderservice.ErrOrderAlreadyProcessed),
		errors.Is(err, orderservice.ErrInvalidPromocode),
		errors.Is(err, orderservice.ErrInsufficientBalance),
		errors.Is(err, orderservice.ErrInvalidReferenceData),
		errors.Is(err, pricing.ErrUnknownTariff):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func toOrderResponse(order *domain.Order) dto.OrderResponseDTO {
	return dto.OrderResponseDTO{
		ID:         order.ID,
		Type:       order.Type,
		Country:    order.Country,
		Quantity:   order.Quantity,
		Tariff:     order.Tariff,
		PeriodDays: order.PeriodDays,
		TotalPrice: order.TotalPrice.String(),
		Status:     order.Status,
		EndDate:    order.EndDate.Format(domain.EndDateLayout),
		CreatedAt:  order.CreatedAt.Format(time.RFC3339),
	}
}
