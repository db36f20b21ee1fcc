package domain

import (
	"fmt"
	"strings"
)

// TargetSlots is the number of configured notification target slots.
const TargetSlots = 4

// DeliveryTarget is a dotted "<namespace>.<action>" service identifier.
type DeliveryTarget struct {
	Namespace string
	Action    string
}

func ParseTarget(raw string) (DeliveryTarget, error) {
	namespace, action, ok := strings.Cut(strings.TrimSpace(raw), ".")
	if !ok || namespace == "" || action == "" {
		return DeliveryTarget{}, fmt.Errorf("%w: %q", ErrInvalidTarget, raw)
	}

	return DeliveryTarget{Namespace: namespace, Action: action}, nil
}

func (t DeliveryTarget) String() string {
	return t.Namespace + "." + t.Action
}

// ResolveTargets returns the single override when one is given, otherwise the
// non-blank configured slots in slot order.
func ResolveTargets(override string, slots []string) []string {
	if trimmed := strings.TrimSpace(override); trimmed != "" {
		return []string{trimmed}
	}

	targets := make([]string, 0, TargetSlots)
	for i, slot := range slots {
		if i >= TargetSlots {
			break
		}
		if trimmed := strings.TrimSpace(slot); trimmed != "" {
			targets = append(targets, trimmed)
		}
	}

	return targets
}
