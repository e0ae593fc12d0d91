package dto

type CreateInvoiceRequestDTO struct {
	Amount   string `json:"amount" validate:"required" example:"25.00"`
	Currency string `json:"currency" example:"USD"`
}

type CreateInvoiceResponseDTO struct {
	URL string `json:"url"`
}

type PaymentResponseDTO struct {
	ID        string `json:"id"`
	Price     string `json:"price" example:"25.00"`
	Method    string `json:"method" example:"PAYEER"`
	CreatedAt string `json:"createdAt" example:"2025-06-01T12:00:00Z"`
}
