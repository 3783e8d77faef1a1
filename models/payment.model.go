package models

import "errors"

// PaymentStatus tracks whether an order has been paid for.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

var validPaymentStatuses = map[PaymentStatus]struct{}{
	PaymentPending:  {},
	PaymentPaid:     {},
	PaymentFailed:   {},
	PaymentRefunded: {},
}

func ToPaymentStatus(s string) (PaymentStatus, error) {
	p := PaymentStatus(s)
	if _, ok := validPaymentStatuses[p]; ok {
		return p, nil
	}
	return "", errors.New("invalid payment status")
}

// PaymentMethod is how the customer chose to pay at checkout.
type PaymentMethod string

const (
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer"
)

var validPaymentMethods = map[PaymentMethod]struct{}{
	PaymentMethodCard:     {},
	PaymentMethodTransfer: {},
}

func ToPaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(s)
	if _, ok := validPaymentMethods[m]; ok {
		return m, nil
	}
	return "", errors.New("invalid payment method")
}
