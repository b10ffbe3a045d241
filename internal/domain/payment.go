package domain

import "time"

type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "CASH"
	PaymentMethodCard PaymentMethod = "CARD"
	PaymentMethodPix  PaymentMethod = "PIX"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodPix:
		return true
	}
	return false
}

type Payment struct {
	ID        int32         `json:"id"`
	ClientID  int32         `json:"clientId"`
	Method    PaymentMethod `json:"method"`
	Client    *Client       `json:"client,omitempty"`
	CreatedOn time.Time     `json:"createdOn"`
}
