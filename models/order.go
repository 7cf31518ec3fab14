package models

import (
	"time"

	"github.com/sdcoffey/techan"
)

// OrderStatusType define order status type
type OrderStatusType string

const (
	OrderStatusTypeNew             OrderStatusType = "NEW"
	OrderStatusTypePartiallyFilled OrderStatusType = "PARTIALLY_FILLED"
	OrderStatusTypeFilled          OrderStatusType = "FILLED"
	OrderStatusTypeCanceled        OrderStatusType = "CANCELED"
	OrderStatusTypeRejected        OrderStatusType = "REJECTED"
	OrderStatusTypeExpired         OrderStatusType = "EXPIRED"
)

// OrderResult is what an executor reports back after a market order.
type OrderResult struct {
	Symbol      string           `json:"symbol"`
	OrderID     int64            `json:"orderId"`
	Side        techan.OrderSide `json:"side"`
	Status      OrderStatusType  `json:"status"`
	FilledPrice float64          `json:"filledPrice"`
	FilledSize  float64          `json:"filledSize"`
	Time        time.Time        `json:"time"`
}

// IsFilled returns true if any quantity was executed
func (o OrderResult) IsFilled() bool {
	return (o.Status == OrderStatusTypeFilled || o.Status == OrderStatusTypePartiallyFilled) &&
		o.FilledSize > 0 && o.FilledPrice > 0
}
