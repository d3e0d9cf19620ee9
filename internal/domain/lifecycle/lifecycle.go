// Package lifecycle holds the order status rules: which transition each actor may
// trigger, which controls are enabled, and how progress is rendered.
package lifecycle

import (
	"fmt"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

// IsTerminal reports whether no transition leaves status.
func IsTerminal(s model.OrderStatus) bool {
	return s == model.OrderStatusReceived || s == model.OrderStatusCancelled
}

// IsPreDelivery reports whether an order in status s may still be cancelled.
func IsPreDelivery(s model.OrderStatus) bool {
	switch s {
	case model.OrderStatusPending, model.OrderStatusPaid, model.OrderStatusProcessing, model.OrderStatusShipping:
		return true
	default:
		return false
	}
}

// CanTransition validates a transition requested by an actor with role.
func CanTransition(role model.Role, from, to model.OrderStatus) error {
	if !from.Valid() {
		return fmt.Errorf("%w: current %q", domainErrors.ErrInvalidStatus, from)
	}
	if !to.Valid() {
		return fmt.Errorf("%w: target %q", domainErrors.ErrInvalidStatus, to)
	}

	if !role.IsBackOffice() {
		if from == model.OrderStatusDelivered && to == model.OrderStatusReceived {
			return nil
		}
		return notAllowed(role, from, to)
	}

	if IsTerminal(from) {
		return notAllowed(role, from, to)
	}
	if to == model.OrderStatusCancelled {
		if IsPreDelivery(from) {
			return nil
		}
		return notAllowed(role, from, to)
	}

	fromRank, _ := from.Rank()
	toRank, _ := to.Rank()
	if toRank <= fromRank {
		return notAllowed(role, from, to)
	}
	return nil
}

func notAllowed(role model.Role, from, to model.OrderStatus) error {
	return fmt.Errorf("%w: %s cannot move %s to %s", domainErrors.ErrTransitionNotAllowed, role, from, to)
}

// Control is a UI affordance. Disabled controls stay visible.
type Control struct {
	Visible bool
	Enabled bool
}

// Actions lists customer controls for an order.
type Actions struct {
	MarkReceived Control
}

// CustomerActions returns the customer controls for current status.
func CustomerActions(s model.OrderStatus) Actions {
	return Actions{
		MarkReceived: Control{
			Visible: true,
			Enabled: CanTransition(model.RoleCustomer, s, model.OrderStatusReceived) == nil,
		},
	}
}

// Target is one entry of the back-office status picker.
type Target struct {
	Status  model.OrderStatus
	Enabled bool
}

// AdminTargets lists every status with whether the back-office may select it from current status.
func AdminTargets(from model.OrderStatus) []Target {
	all := model.OrderStatuses()
	targets := make([]Target, 0, len(all))
	for _, s := range all {
		targets = append(targets, Target{Status: s, Enabled: CanTransition(model.RoleAdmin, from, s) == nil})
	}
	return targets
}

// Step is one node of the progress timeline.
type Step struct {
	Status  model.OrderStatus
	Rank    int
	Reached bool
	Current bool
}

// Timeline renders progress for current status. A cancelled order yields the happy
// path unreached followed by a current cancelled step.
func Timeline(s model.OrderStatus) []Step {
	path := model.HappyPath()
	current, ranked := s.Rank()
	steps := make([]Step, 0, len(path)+1)
	for i, st := range path {
		steps = append(steps, Step{
			Status:  st,
			Rank:    i,
			Reached: ranked && i <= current,
			Current: ranked && i == current,
		})
	}
	if s == model.OrderStatusCancelled {
		steps = append(steps, Step{Status: s, Rank: len(path), Reached: true, Current: true})
	}
	return steps
}
