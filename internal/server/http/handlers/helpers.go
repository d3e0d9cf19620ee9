package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/domain/lifecycle"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
	"github.com/polkiloo/storefront/internal/server/http/middleware"
	"github.com/polkiloo/storefront/internal/session"
	"github.com/polkiloo/storefront/internal/usecase"
)

// CurrentSession extracts the authenticated session from context.
func CurrentSession(c *gin.Context) *session.Handle {
	return middleware.CurrentSession(c)
}

func statusFilter(c *gin.Context) model.OrderStatus {
	return model.OrderStatus(c.Query("status"))
}

func toUserResponse(u model.User) dto.UserResponse {
	return dto.UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: string(u.Role)}
}

func toOrderResponse(d usecase.OrderDetails) dto.OrderResponse {
	o := d.Order
	resp := dto.OrderResponse{
		ID:            o.ID,
		Status:        string(o.Status),
		PaymentMethod: string(o.PaymentMethod),
		IsPaid:        o.IsPaid,
		PaidAt:        o.PaidAt,
		ItemsPrice:    o.ItemsPrice,
		ShippingPrice: o.ShippingPrice,
		TotalPrice:    o.TotalPrice,
		CreatedAt:     o.CreatedAt,
		PaymentLabel:  d.PaymentLabel,
		Actions: dto.ActionsResponse{
			MarkReceived: dto.ControlResponse{
				Visible: d.Actions.MarkReceived.Visible,
				Enabled: d.Actions.MarkReceived.Enabled,
			},
		},
		Timeline: make([]dto.StepResponse, 0, len(d.Timeline)),
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, dto.LineItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Discount:  item.Discount,
			Subtotal:  item.Subtotal(),
		})
	}
	for _, s := range d.Timeline {
		resp.Timeline = append(resp.Timeline, dto.StepResponse{Status: string(s.Status), Rank: s.Rank, Reached: s.Reached, Current: s.Current})
	}
	for _, t := range d.Targets {
		resp.Targets = append(resp.Targets, dto.TargetResponse{Status: string(t.Status), Enabled: t.Enabled})
	}
	return resp
}

func toOrderResponses(details []usecase.OrderDetails) []dto.OrderResponse {
	out := make([]dto.OrderResponse, 0, len(details))
	for _, d := range details {
		out = append(out, toOrderResponse(d))
	}
	return out
}

func toTransitionResponse(message string, res *usecase.TransitionResult) dto.TransitionResponse {
	tabs := make(map[string][]dto.OrderSummaryResponse, len(res.Tabs))
	for status, orders := range res.Tabs {
		rows := make([]dto.OrderSummaryResponse, 0, len(orders))
		for _, o := range orders {
			rows = append(rows, dto.OrderSummaryResponse{
				ID:           o.ID,
				Status:       string(o.Status),
				IsPaid:       o.IsPaid,
				TotalPrice:   o.TotalPrice,
				PaymentLabel: lifecycle.PaymentLabel(o.PaymentMethod, o.IsPaid, o.Status),
				CreatedAt:    o.CreatedAt,
			})
		}
		tabs[string(status)] = rows
	}
	return dto.TransitionResponse{Message: message, Order: toOrderResponse(res.Details), Tabs: tabs}
}
