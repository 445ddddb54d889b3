package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// HoursPerDay is the number of hour-of-day slots a time-of-use tariff covers.
const HoursPerDay = 24

// Rate is one price entry of a tariff. Values follow the customer's
// perspective: negative means the customer pays.
type Rate struct {
	Value float64 `json:"value"`
	// DailyBegin and DailyEnd delimit an inclusive hour-of-day window. A
	// negative DailyBegin means the rate applies all day. Windows may wrap
	// around midnight.
	DailyBegin int  `json:"daily_begin"`
	DailyEnd   int  `json:"daily_end"`
	Fixed      bool `json:"fixed"`
	// MaxValue bounds a variable rate.
	MaxValue float64 `json:"max_value,omitempty"`
}

// FixedRate returns an all-day fixed rate.
func FixedRate(v float64) Rate {
	return Rate{Value: v, DailyBegin: -1, DailyEnd: -1, Fixed: true}
}

// HourlyRate returns a fixed rate restricted to a single hour of the day.
func HourlyRate(hour int, v float64) Rate {
	return Rate{Value: v, DailyBegin: hour, DailyEnd: hour, Fixed: true}
}

// AllDay reports whether the rate has no time-of-use window.
func (r Rate) AllDay() bool { return r.DailyBegin < 0 }

// Applies reports whether the rate applies at the given hour of day.
func (r Rate) Applies(hour int) bool {
	if r.AllDay() {
		return true
	}
	if r.DailyBegin <= r.DailyEnd {
		return hour >= r.DailyBegin && hour <= r.DailyEnd
	}
	return hour >= r.DailyBegin || hour <= r.DailyEnd
}

// TariffSpec is a price schedule offered by a broker. Specs are immutable
// once published; candidate specs may be modified until they are selected.
type TariffSpec struct {
	ID                   string        `json:"id"`
	Broker               string        `json:"broker"`
	PowerType            PowerType     `json:"power_type"`
	Rates                []Rate        `json:"rates"`
	PeriodicPayment      float64       `json:"periodic_payment"`
	SignupPayment        float64       `json:"signup_payment"`
	EarlyWithdrawPayment float64       `json:"early_withdraw_payment"`
	MinDuration          time.Duration `json:"min_duration"`
}

// NewTariffSpec creates a spec with a fresh identifier.
func NewTariffSpec(broker string, pt PowerType, rates ...Rate) *TariffSpec {
	return &TariffSpec{ID: uuid.NewString(), Broker: broker, PowerType: pt, Rates: rates}
}

// Clone returns a deep copy of the spec with a new identifier.
func (t *TariffSpec) Clone() *TariffSpec {
	cp := *t
	cp.ID = uuid.NewString()
	cp.Rates = append([]Rate(nil), t.Rates...)
	return &cp
}

// RateAt returns the rate value applicable at the given hour of day. Hourly
// windows take precedence over all-day rates.
func (t *TariffSpec) RateAt(hour int) float64 {
	hour = ((hour % HoursPerDay) + HoursPerDay) % HoursPerDay
	var (
		allDay    float64
		hasAllDay bool
	)
	for _, r := range t.Rates {
		if r.AllDay() {
			if !hasAllDay {
				allDay, hasAllDay = r.Value, true
			}
			continue
		}
		if r.Applies(hour) {
			return r.Value
		}
	}
	if hasAllDay {
		return allDay
	}
	if len(t.Rates) > 0 {
		return t.Rates[0].Value
	}
	return 0
}

// MeanRate returns the average rate over one day.
func (t *TariffSpec) MeanRate() float64 {
	var sum float64
	for h := 0; h < HoursPerDay; h++ {
		sum += t.RateAt(h)
	}
	return sum / HoursPerDay
}

// IsTimeOfUse reports whether at least one rate carries an hour window.
func (t *TariffSpec) IsTimeOfUse() bool {
	for _, r := range t.Rates {
		if !r.AllDay() {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer.
func (t *TariffSpec) String() string {
	kind := "fixed"
	if t.IsTimeOfUse() {
		kind = "tou"
	}
	return fmt.Sprintf("%s[%s %s mean=%.4f periodic=%.4f withdraw=%.4f]", shortID(t.ID), t.PowerType, kind, t.MeanRate(), t.PeriodicPayment, t.EarlyWithdrawPayment)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// CustomerInfo describes a customer population. It is read-only reference
// data.
type CustomerInfo struct {
	Name       string    `json:"name"`
	Population int       `json:"population"`
	PowerType  PowerType `json:"power_type"`
}
