package handlers

import (
	"github.com/go-playground/validator/v10"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// OrderStatusTag is the binding tag accepting any member of the status enumeration.
const OrderStatusTag = "order_status"

func validateOrderStatus(fl validator.FieldLevel) bool {
	_, err := model.ParseOrderStatus(fl.Field().String())
	return err == nil
}

// RegisterValidators installs the custom binding tags on v.
func RegisterValidators(v *validator.Validate) error {
	return v.RegisterValidation(OrderStatusTag, validateOrderStatus)
}

// modelStatus normalises a status that already passed the order_status tag.
func modelStatus(raw string) model.OrderStatus {
	s, err := model.ParseOrderStatus(raw)
	if err != nil {
		return model.OrderStatus(raw)
	}
	return s
}
