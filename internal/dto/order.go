package dto

type CreateOrderRequestDTO struct {
	Type       string  `json:"type" validate:"required" example:"isp"`
	Country    *string `json:"country,omitempty" example:"Germany"`
	Quantity   *int    `json:"quantity,omitempty" example:"5"`
	Tariff     *string `json:"tariff,omitempty" example:"3 Gb"`
	PeriodDays *int    `json:"periodDays,omitempty" example:"30"`
	ProxyType  *string `json:"proxyType,omitempty" example:"http"`
	Goal       *string `json:"goal,omitempty"`
}

type OrderResponseDTO struct {
	ID         string  `json:"id"`
	Type       string  `json:"type" example:"isp"`
	Country    *string `json:"country,omitempty"`
	Quantity   *int    `json:"quantity,omitempty"`
	Tariff     *string `json:"tariff,omitempty"`
	PeriodDays *int    `json:"periodDays,omitempty"`
	TotalPrice string  `json:"totalPrice" example:"12.00"`
	Status     string  `json:"status" example:"PENDING"`
	EndDate    string  `json:"endDate" example:"15.04.2025"`
	CreatedAt  string  `json:"createdAt" example:"2025-03-15T12:00:00Z"`
}

type FinishOrderRequestDTO struct {
	OrderID   string `json:"orderId" validate:"required"`
	Promocode string `json:"promocode,omitempty"`
	Lang      string `json:"lang,omitempty" example:"en"`
}

type FinishOrderResponseDTO struct {
	OrderID string `json:"orderId"`
	Type    string `json:"type" example:"isp"`
}

type ProlongOrderRequestDTO struct {
	OrderID  string   `json:"orderId" validate:"required"`
	IDs      []string `json:"ids"`
	PeriodID int      `json:"periodId"`
}

type CheckPromocodeRequestDTO struct {
	Code string `json:"code" validate:"required"`
}

type CheckPromocodeResponseDTO struct {
	Code     string `json:"code"`
	Discount int    `json:"discount" example:"20"`
}
