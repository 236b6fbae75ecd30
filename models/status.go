package models

import (
	"fmt"
	"strings"
	"time"
)

// OrderStatus is a stage of the order workflow.
type OrderStatus string

const (
	StatusProcessing   OrderStatus = "processing"
	StatusAssembling   OrderStatus = "assembling"
	StatusDelivering   OrderStatus = "delivering"
	StatusConfirmation OrderStatus = "confirmation"
	StatusCompleted    OrderStatus = "completed"
)

var statusFlow = []OrderStatus{
	StatusProcessing,
	StatusAssembling,
	StatusDelivering,
	StatusConfirmation,
	StatusCompleted,
}

var statusLabels = map[OrderStatus]string{
	StatusProcessing:   "В обработке",
	StatusAssembling:   "Собирается",
	StatusDelivering:   "Доставляется",
	StatusConfirmation: "Подтверждение",
	StatusCompleted:    "Завершен",
}

func AllStatuses() []OrderStatus {
	out := make([]OrderStatus, len(statusFlow))
	copy(out, statusFlow)
	return out
}

// ParseOrderStatus accepts either the status code or its display label.
func ParseOrderStatus(s string) (OrderStatus, error) {
	s = strings.TrimSpace(s)
	if st := OrderStatus(strings.ToLower(s)); st.IsValid() {
		return st, nil
	}
	for st, label := range statusLabels {
		if strings.EqualFold(label, s) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

func (s OrderStatus) IsValid() bool {
	_, ok := statusLabels[s]
	return ok
}

func (s OrderStatus) Label() string {
	return statusLabels[s]
}

func (s OrderStatus) rank() int {
	for i, st := range statusFlow {
		if st == s {
			return i
		}
	}
	return -1
}

func (s OrderStatus) IsTerminal() bool {
	return s == StatusCompleted
}

// StatusPolicy decides which status changes an admin may apply.
type StatusPolicy string

const (
	// PolicyForward allows staying on the current stage or moving to any
	// later one. A completed order is locked.
	PolicyForward StatusPolicy = "forward"
	// PolicyFree allows any of the five statuses at any time.
	PolicyFree StatusPolicy = "free"
)

func ParseStatusPolicy(s string) (StatusPolicy, error) {
	switch p := StatusPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyForward, nil
	case PolicyForward, PolicyFree:
		return p, nil
	default:
		return "", fmt.Errorf("unknown order status policy %q", s)
	}
}

func (p StatusPolicy) CheckTransition(from, to OrderStatus) error {
	if !to.IsValid() {
		return ErrInvalidStatus
	}
	if p == PolicyFree {
		return nil
	}
	if from.IsTerminal() {
		return fmt.Errorf("%w: order is already %s", ErrInvalidTransition, from)
	}
	if to.rank() < from.rank() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// ValidateDeliveryDate accepts an empty value or a YYYY-MM-DD date.
func ValidateDeliveryDate(s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.Parse(time.DateOnly, s); err != nil {
		return ErrInvalidDeliveryDate
	}
	return nil
}
