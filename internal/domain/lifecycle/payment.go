package lifecycle

import "github.com/polkiloo/storefront/internal/domain/model"

const (
	LabelPaid              = "paid"
	LabelUnpaid            = "unpaid"
	LabelPaymentOnDelivery = "payment on delivery"
)

// PaymentLabel is defined for every combination of inputs, unknown statuses included.
func PaymentLabel(method model.PaymentMethod, isPaid bool, _ model.OrderStatus) string {
	switch {
	case isPaid:
		return LabelPaid
	case method.IsCashOnDelivery():
		return LabelPaymentOnDelivery
	default:
		return LabelUnpaid
	}
}
