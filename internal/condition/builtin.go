package condition

import (
	"fmt"
	"time"

	"github.com/osmith/BadgeForge_Go/internal/domain"
)

// All windows are evaluated against trigger.OccurredAt, never wall clock, so
// replay and sandbox evaluation produce identical results.

func builtinSpecs() []Spec {
	return []Spec{
		alwaysTrueSpec(),
		attributeEqualsSpec(),
		countSpec(),
		thresholdSpec(),
		sequenceSpec(),
		timeSinceLastEventSpec(),
		firstOccurrenceSpec(),
	}
}

func alwaysTrueSpec() Spec {
	return Spec{
		Type: domain.ConditionAlwaysTrue,
		Evaluate: func(_ []domain.Event, _ domain.Event, _ Params) Result {
			return Result{Passed: true, Reason: "always true"}
		},
	}
}

func attributeEqualsSpec() Spec {
	return Spec{
		Type: domain.ConditionAttributeEquals,
		Params: []ParamSpec{
			{Name: "attributeName", Kind: ParamString, Required: true},
			{Name: "expectedValue", Kind: ParamAny, Required: true},
		},
		Evaluate: func(_ []domain.Event, trigger domain.Event, p Params) Result {
			name, _ := p.stringValue("attributeName")
			actual, present := trigger.Attributes[name]
			if !present {
				return Result{Passed: false, Reason: fmt.Sprintf("attribute %q absent", name)}
			}
			if looseEqual(actual, p["expectedValue"]) {
				return Result{Passed: true, Reason: fmt.Sprintf("attribute %q matches", name)}
			}
			return Result{Passed: false, Reason: fmt.Sprintf("attribute %q does not match", name)}
		},
	}
}

// inWindow reports whether an event at ts falls in the window ending at the
// trigger time. A nil window means unbounded; an explicit zero-minute window
// admits only simultaneous events.
func inWindow(ts, triggerAt time.Time, windowMinutes *int64) bool {
	if ts.After(triggerAt) {
		return false
	}
	if windowMinutes == nil {
		return true
	}
	start := triggerAt.Add(-time.Duration(*windowMinutes) * time.Minute)
	return !ts.Before(start)
}

func countSpec() Spec {
	return Spec{
		Type: domain.ConditionCount,
		Params: []ParamSpec{
			{Name: "eventType", Kind: ParamString, Required: true},
			{Name: "minCount", Kind: ParamInt, Required: true},
			{Name: "maxCount", Kind: ParamInt, Required: false},
			{Name: "timeWindowMinutes", Kind: ParamInt, Required: false},
		},
		Needs: func(p Params) []HistoryNeed {
			eventType, _ := p.stringValue("eventType")
			window, _ := p.intPtrValue("timeWindowMinutes")
			return []HistoryNeed{{EventType: eventType, WindowMinutes: window}}
		},
		Evaluate: func(history []domain.Event, trigger domain.Event, p Params) Result {
			eventType, _ := p.stringValue("eventType")
			minCount, _ := p.intValue("minCount")
			window, _ := p.intPtrValue("timeWindowMinutes")

			var count int64
			for _, ev := range history {
				if ev.Type == eventType && inWindow(ev.OccurredAt, trigger.OccurredAt, window) {
					count++
				}
			}
			if count < minCount {
				return Result{Passed: false, Reason: fmt.Sprintf("count %d below minimum %d", count, minCount)}
			}
			if maxCount, ok := p.intValue("maxCount"); ok && count > maxCount {
				return Result{Passed: false, Reason: fmt.Sprintf("count %d above maximum %d", count, maxCount)}
			}
			return Result{Passed: true, Reason: fmt.Sprintf("count %d in range", count)}
		},
	}
}

func thresholdSpec() Spec {
	return Spec{
		Type: domain.ConditionThreshold,
		Params: []ParamSpec{
			{Name: "attributeName", Kind: ParamString, Required: true},
			{Name: "threshold", Kind: ParamNumber, Required: true},
			{Name: "operation", Kind: ParamString, Required: true},
		},
		Evaluate: func(_ []domain.Event, trigger domain.Event, p Params) Result {
			name, _ := p.stringValue("attributeName")
			threshold, _ := p.decimalValue("threshold")
			op, _ := p.stringValue("operation")

			raw, present := trigger.Attributes[name]
			if !present {
				return Result{Passed: false, Reason: fmt.Sprintf("attribute %q absent", name)}
			}
			value, ok := toDecimal(raw)
			if !ok {
				return Result{Passed: false, Reason: fmt.Sprintf("attribute %q is not numeric", name)}
			}

			cmp := value.Cmp(threshold)
			var passed bool
			switch op {
			case ">":
				passed = cmp > 0
			case ">=", "≥":
				passed = cmp >= 0
			case "<":
				passed = cmp < 0
			case "<=", "≤":
				passed = cmp <= 0
			case "=", "==":
				passed = cmp == 0
			case "!=", "≠":
				passed = cmp != 0
			default:
				return Result{Passed: false, Reason: fmt.Sprintf("unknown operation %q", op)}
			}
			return Result{Passed: passed, Reason: fmt.Sprintf("%s %s %s is %t", value, op, threshold, passed)}
		},
	}
}

func sequenceSpec() Spec {
	return Spec{
		Type: domain.ConditionSequence,
		Params: []ParamSpec{
			{Name: "eventTypes", Kind: ParamStringList, Required: true},
			{Name: "timeWindowMinutes", Kind: ParamInt, Required: true},
		},
		Needs: func(p Params) []HistoryNeed {
			types, _ := p.stringListValue("eventTypes")
			window, _ := p.intPtrValue("timeWindowMinutes")
			needs := make([]HistoryNeed, 0, len(types))
			for _, t := range types {
				needs = append(needs, HistoryNeed{EventType: t, WindowMinutes: window})
			}
			return needs
		},
		Evaluate: func(history []domain.Event, trigger domain.Event, p Params) Result {
			expected, _ := p.stringListValue("eventTypes")
			window, _ := p.intValue("timeWindowMinutes")

			// Forward scan: advance the pointer on each non-overlapping match
			// not after the trigger, tracking the first match time.
			idx := 0
			var first time.Time
			for _, ev := range history {
				if idx >= len(expected) {
					break
				}
				if ev.Type != expected[idx] || ev.OccurredAt.After(trigger.OccurredAt) {
					continue
				}
				if idx == 0 {
					first = ev.OccurredAt
				}
				idx++
			}
			if idx < len(expected) {
				return Result{Passed: false, Reason: fmt.Sprintf("matched %d of %d sequence steps", idx, len(expected))}
			}
			// The window is anchored at the trigger, so a zero window accepts
			// only steps that share the trigger's timestamp.
			if trigger.OccurredAt.Sub(first) > time.Duration(window)*time.Minute {
				return Result{Passed: false, Reason: "sequence exceeds time window"}
			}
			return Result{Passed: true, Reason: "sequence matched within window"}
		},
	}
}

func timeSinceLastEventSpec() Spec {
	return Spec{
		Type: domain.ConditionTimeSinceLastEvent,
		Params: []ParamSpec{
			{Name: "eventType", Kind: ParamString, Required: true},
			{Name: "minMinutes", Kind: ParamInt, Required: true},
		},
		Needs: func(p Params) []HistoryNeed {
			eventType, _ := p.stringValue("eventType")
			return []HistoryNeed{{EventType: eventType}}
		},
		Evaluate: func(history []domain.Event, trigger domain.Event, p Params) Result {
			eventType, _ := p.stringValue("eventType")
			minMinutes, _ := p.intValue("minMinutes")

			// The trigger itself may already be in history; it never counts
			// as a prior occurrence.
			var lastAt time.Time
			found := false
			for _, ev := range history {
				if ev.Type != eventType || ev.ID == trigger.ID || ev.OccurredAt.After(trigger.OccurredAt) {
					continue
				}
				if !found || ev.OccurredAt.After(lastAt) {
					lastAt = ev.OccurredAt
					found = true
				}
			}
			if !found {
				return Result{Passed: true, Reason: "no prior event"}
			}
			elapsed := trigger.OccurredAt.Sub(lastAt)
			if elapsed >= time.Duration(minMinutes)*time.Minute {
				return Result{Passed: true, Reason: fmt.Sprintf("last event %s before trigger", elapsed)}
			}
			return Result{Passed: false, Reason: fmt.Sprintf("last event only %s before trigger", elapsed)}
		},
	}
}

func firstOccurrenceSpec() Spec {
	return Spec{
		Type: domain.ConditionFirstOccurrence,
		Needs: func(_ Params) []HistoryNeed {
			// "" resolves to the trigger's own event type.
			return []HistoryNeed{{EventType: ""}}
		},
		Evaluate: func(history []domain.Event, trigger domain.Event, _ Params) Result {
			for _, ev := range history {
				if ev.Type != trigger.Type || ev.ID == trigger.ID {
					continue
				}
				if !ev.OccurredAt.After(trigger.OccurredAt) {
					return Result{Passed: false, Reason: fmt.Sprintf("earlier %s event exists", trigger.Type)}
				}
			}
			return Result{Passed: true, Reason: "first occurrence"}
		},
	}
}
