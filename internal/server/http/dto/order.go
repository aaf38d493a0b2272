package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/paperdesk/papermart/internal/domain/model"
	"github.com/paperdesk/papermart/internal/usecase"
)

// OrderLineResponse is a snapshotted order line. DueDate stays unset until
// the order is paid: the due-date clock starts with the first payment.
type OrderLineResponse struct {
	ID          int64                `json:"id"`
	Topic       string               `json:"topic"`
	ServiceType string               `json:"service_type"`
	Turnaround  string               `json:"turnaround"`
	Level       *string              `json:"level,omitempty"`
	Tier        *string              `json:"tier,omitempty"`
	Pages       int                  `json:"pages"`
	Quantity    int                  `json:"quantity"`
	References  *int                 `json:"references,omitempty"`
	Comment     string               `json:"comment,omitempty"`
	PagePrice   decimal.Decimal      `json:"page_price"`
	Surcharge   *decimal.Decimal     `json:"tier_surcharge,omitempty"`
	Price       decimal.Decimal      `json:"price"`
	Total       decimal.Decimal      `json:"total"`
	Status      string               `json:"status"`
	DueDate     *time.Time           `json:"due_date,omitempty"`
	Attachments []AttachmentResponse `json:"attachments,omitempty"`
}

// OrderCouponResponse is the coupon snapshot taken at checkout.
type OrderCouponResponse struct {
	Code     string          `json:"code"`
	Discount decimal.Decimal `json:"discount"`
}

// PaymentResponse is one ledger record.
type PaymentResponse struct {
	TxRef   *string         `json:"tx_ref,omitempty"`
	Amount  decimal.Decimal `json:"amount"`
	Status  string          `json:"status"`
	Gateway string          `json:"gateway"`
	PaidAt  *time.Time      `json:"paid_at,omitempty"`
}

// OrderResponse is an order with derived amounts and, when requested, its
// payment ledger.
type OrderResponse struct {
	ID             int64                `json:"id"`
	Status         string               `json:"status"`
	Lines          []OrderLineResponse  `json:"lines"`
	Coupon         *OrderCouponResponse `json:"coupon,omitempty"`
	Subtotal       decimal.Decimal      `json:"subtotal"`
	Discount       decimal.Decimal      `json:"discount"`
	AmountPayable  decimal.Decimal      `json:"amount_payable"`
	AmountPaid     *decimal.Decimal     `json:"amount_paid,omitempty"`
	Balance        *decimal.Decimal     `json:"balance,omitempty"`
	Payments       []PaymentResponse    `json:"payments,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
}

// ToOrderResponse converts a domain order without ledger data.
func ToOrderResponse(order model.Order) OrderResponse {
	resp := OrderResponse{
		ID:            order.ID,
		Status:        string(order.Status),
		Lines:         make([]OrderLineResponse, 0, len(order.Lines)),
		Subtotal:      order.Subtotal(),
		Discount:      order.Discount(),
		AmountPayable: order.AmountPayable(),
		CreatedAt:     order.CreatedAt,
	}
	for _, line := range order.Lines {
		resp.Lines = append(resp.Lines, toOrderLineResponse(order, line))
	}
	if order.Coupon != nil {
		resp.Coupon = &OrderCouponResponse{Code: order.Coupon.Code, Discount: order.Coupon.Discount}
	}
	return resp
}

// ToOrderDetailResponse converts a domain order together with its ledger.
func ToOrderDetailResponse(order model.Order, ledger []model.PaymentRecord) OrderResponse {
	resp := ToOrderResponse(order)
	paid := usecase.NetPaid(ledger)
	balance := usecase.Balance(order.AmountPayable(), ledger)
	resp.AmountPaid = &paid
	resp.Balance = &balance
	for _, rec := range ledger {
		resp.Payments = append(resp.Payments, PaymentResponse{
			TxRef:   rec.TxRef,
			Amount:  rec.Amount,
			Status:  string(rec.Status),
			Gateway: string(rec.Gateway),
			PaidAt:  rec.PaidAt,
		})
	}
	return resp
}

func toOrderLineResponse(order model.Order, line model.OrderLine) OrderLineResponse {
	resp := OrderLineResponse{
		ID:          line.ID,
		Topic:       line.Topic,
		ServiceType: line.ServiceType,
		Turnaround:  line.Turnaround,
		Level:       line.Level,
		Tier:        line.Tier,
		Pages:       line.Pages,
		Quantity:    line.Quantity,
		References:  line.References,
		Comment:     line.Comment,
		PagePrice:   line.PagePrice,
		Surcharge:   line.TierSurcharge,
		Price:       line.Price(),
		Total:       line.Total(),
		Status:      string(line.Status),
	}
	if order.Status == model.OrderStatusPaid {
		due := line.DueDate
		resp.DueDate = &due
	}
	for _, a := range line.Attachments {
		resp.Attachments = append(resp.Attachments, AttachmentResponse{ID: a.ID, FileName: a.FileName, Comment: a.Comment})
	}
	return resp
}
