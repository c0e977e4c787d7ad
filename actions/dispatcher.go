// Package actions executes the side effects declared by fired rules
package actions

import (
	"context"
	"fmt"
	"maps"

	"github.com/Ronei-rcm/rare-toy-companion-final-8040-sub010/internal/logger"
	"github.com/Ronei-rcm/rare-toy-companion-final-8040-sub010/mail"
	"github.com/Ronei-rcm/rare-toy-companion-final-8040-sub010/rules"
	"github.com/Ronei-rcm/rare-toy-companion-final-8040-sub010/storage"
	"github.com/google/uuid"
)

// NotificationType tags every notification created by rules
const NotificationType = "order_update"

// Persistence is the storefront data the actions write to.
// Implemented by storage.PostgresStore and storage.MemoryStore.
type Persistence interface {
	CreateNotification(ctx context.Context, n storage.Notification) error
	UpdateOrderField(ctx context.Context, orderID, field string, value any) error
	DecrementStock(ctx context.Context, productID string, quantity int) error
	ApplyDiscount(ctx context.Context, orderID string, amount float64) error
	AssignOrder(ctx context.Context, orderID, userID string) error
	CreateTask(ctx context.Context, t storage.Task) error
}

// Dispatcher routes each action of a fired rule to its handler
type Dispatcher struct {
	persist Persistence
	mailer  mail.Mailer
}

// NewDispatcher creates a dispatcher. Persistence is required; a nil mailer
// falls back to mail.LogMailer.
func NewDispatcher(persist Persistence, mailer mail.Mailer) (*Dispatcher, error) {
	if persist == nil {
		return nil, fmt.Errorf("%w: persistence collaborator is required", rules.ErrEngineConstruction)
	}
	if mailer == nil {
		mailer = mail.LogMailer{}
	}
	return &Dispatcher{persist: persist, mailer: mailer}, nil
}

// SupportsAction reports whether Dispatch knows the action type
func (d *Dispatcher) SupportsAction(actionType rules.ActionType) bool {
	switch actionType {
	case rules.ActionSendEmail, rules.ActionCreateNotification, rules.ActionUpdateOrder,
		rules.ActionUpdateStock, rules.ActionApplyDiscount, rules.ActionAssignToUser, rules.ActionCreateTask:
		return true
	}
	return false
}

// Dispatch performs one action. Unknown types return rules.ErrUnsupportedAction.
func (d *Dispatcher) Dispatch(ctx context.Context, rule *rules.Rule, action rules.ActionSpec, payload rules.Payload) error {
	params := action.Parameters
	if params == nil {
		params = map[string]any{}
	}

	switch action.Type {
	case rules.ActionSendEmail:
		return d.sendEmail(ctx, params, payload)
	case rules.ActionCreateNotification:
		return d.createNotification(ctx, params, payload)
	case rules.ActionUpdateOrder:
		return d.updateOrder(ctx, params, payload)
	case rules.ActionUpdateStock:
		return d.updateStock(ctx, params, payload)
	case rules.ActionApplyDiscount:
		return d.applyDiscount(ctx, params, payload)
	case rules.ActionAssignToUser:
		return d.assignToUser(ctx, params, payload)
	case rules.ActionCreateTask:
		return d.createTask(ctx, params, payload)
	default:
		logger.Warn("unsupported action type", "rule_id", rule.ID, "action", action.Type)
		return fmt.Errorf("%w: %s", rules.ErrUnsupportedAction, action.Type)
	}
}

// sendEmail resolves the recipient from the payload field named by `to`,
// falling back to customer_email
func (d *Dispatcher) sendEmail(ctx context.Context, params map[string]any, payload rules.Payload) error {
	template := stringParam(params, "template", "")
	if template == "" {
		return errMissingParam("template")
	}

	to, _ := payloadString(payload, stringParam(params, "to", "customer_email"))
	if to == "" {
		to, _ = payloadString(payload, "customer_email")
	}
	if to == "" {
		return errInvalidParam("to", "no recipient address in event payload")
	}

	return d.mailer.Send(ctx, mail.Message{
		To:       to,
		Template: template,
		Data:     maps.Clone(map[string]any(payload)),
	})
}

func (d *Dispatcher) createNotification(ctx context.Context, params map[string]any, payload rules.Payload) error {
	title := stringParam(params, "title", "")
	if title == "" {
		return errMissingParam("title")
	}

	var userID string
	if stringParam(params, "target", "") != "admin" {
		userID, _ = payloadString(payload, "customer_id")
	}

	status, ok := payloadString(payload, "new_status")
	if !ok {
		status, _ = payloadString(payload, "status")
	}

	return d.persist.CreateNotification(ctx, storage.Notification{
		ID:      uuid.NewString(),
		UserID:  userID,
		Title:   title,
		Message: stringParam(params, "message", ""),
		Type:    NotificationType,
		Data: map[string]any{
			"order_id": payload["order_id"],
			"status":   status,
			"total":    payload["total"],
		},
	})
}

func (d *Dispatcher) updateOrder(ctx context.Context, params map[string]any, payload rules.Payload) error {
	field := stringParam(params, "field", "")
	if field == "" {
		return errMissingParam("field")
	}
	value, ok := params["value"]
	if !ok {
		return errMissingParam("value")
	}

	id, err := orderID(payload)
	if err != nil {
		return err
	}

	return d.persist.UpdateOrderField(ctx, id, field, value)
}

// updateStock only acts on operation "decrease"; other operations are ignored
func (d *Dispatcher) updateStock(ctx context.Context, params map[string]any, payload rules.Payload) error {
	if op := stringParam(params, "operation", ""); op != "decrease" {
		logger.Debug("stock operation ignored", "operation", op)
		return nil
	}

	items, err := lineItems(payload)
	if err != nil {
		return err
	}

	for _, item := range items {
		if err := d.persist.DecrementStock(ctx, item.productID, item.quantity); err != nil {
			return fmt.Errorf("product %s: %w", item.productID, err)
		}
	}
	return nil
}

func (d *Dispatcher) applyDiscount(ctx context.Context, params map[string]any, payload rules.Payload) error {
	id, err := orderID(payload)
	if err != nil {
		return err
	}

	total, ok := rules.ToNumber(payload["total"])
	if !ok && stringParam(params, "type", "") == "percentage" {
		return errMissingField("total")
	}

	amount, err := DiscountAmount(total, params)
	if err != nil {
		return err
	}

	return d.persist.ApplyDiscount(ctx, id, amount)
}

func (d *Dispatcher) assignToUser(ctx context.Context, params map[string]any, payload rules.Payload) error {
	userID := stringParam(params, "user_id", "")
	if userID == "" {
		return errMissingParam("user_id")
	}

	id, err := orderID(payload)
	if err != nil {
		return err
	}

	return d.persist.AssignOrder(ctx, id, userID)
}

func (d *Dispatcher) createTask(ctx context.Context, params map[string]any, payload rules.Payload) error {
	title := stringParam(params, "title", "")
	if title == "" {
		return errMissingParam("title")
	}

	id, err := orderID(payload)
	if err != nil {
		return err
	}

	return d.persist.CreateTask(ctx, storage.Task{
		ID:          uuid.NewString(),
		OrderID:     id,
		Title:       title,
		Description: stringParam(params, "description", ""),
		AssignedTo:  stringParam(params, "assigned_to", ""),
		Status:      "pending",
	})
}
