package domain

import (
	"fmt"
	"strings"
	"time"
)

// EventStatus статус события
type EventStatus int

const (
	EventStatusUnspecified EventStatus = iota
	EventStatusUpcoming
	EventStatusOngoing
	EventStatusCompleted
	EventStatusCancelled
)

// String возвращает строковое представление статуса
func (s EventStatus) String() string {
	switch s {
	case EventStatusUpcoming:
		return "upcoming"
	case EventStatusOngoing:
		return "ongoing"
	case EventStatusCompleted:
		return "completed"
	case EventStatusCancelled:
		return "cancelled"
	default:
		return "unspecified"
	}
}

// ParseEventStatus разбирает статус события из строки без учёта регистра
func ParseEventStatus(s string) (EventStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "UPCOMING":
		return EventStatusUpcoming, nil
	case "ONGOING":
		return EventStatusOngoing, nil
	case "COMPLETED":
		return EventStatusCompleted, nil
	case "CANCELLED":
		return EventStatusCancelled, nil
	default:
		return EventStatusUnspecified, fmt.Errorf("unknown event status: %q", s)
	}
}

// ImpactLevel уровень влияния события на трафик
type ImpactLevel int

const (
	ImpactUnspecified ImpactLevel = iota
	ImpactLow
	ImpactMedium
	ImpactHigh
)

// String возвращает строковое представление уровня влияния
func (l ImpactLevel) String() string {
	switch l {
	case ImpactLow:
		return "low"
	case ImpactMedium:
		return "medium"
	case ImpactHigh:
		return "high"
	default:
		return "unspecified"
	}
}

// ParseImpactLevel разбирает уровень влияния из строки без учёта регистра
func ParseImpactLevel(s string) (ImpactLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LOW":
		return ImpactLow, nil
	case "MEDIUM":
		return ImpactMedium, nil
	case "HIGH":
		return ImpactHigh, nil
	default:
		return ImpactUnspecified, fmt.Errorf("unknown impact level: %q", s)
	}
}

// ActiveEvent событие на карте (ярмарка, ремонт, перекрытие), локально
// повышающее загруженность дорог рядом со своей точкой. Поставляется
// вызывающей стороной, ядром не сохраняется.
type ActiveEvent struct {
	ID      string
	Name    string
	X       float64
	Y       float64
	Impact  ImpactLevel
	Status  EventStatus
	EndDate time.Time
}

// IsActive проверяет, действует ли событие в момент now: статус
// UPCOMING или ONGOING и дата окончания в будущем
func (e *ActiveEvent) IsActive(now time.Time) bool {
	if e.Status != EventStatusUpcoming && e.Status != EventStatusOngoing {
		return false
	}
	return e.EndDate.After(now)
}
