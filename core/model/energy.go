package model

import "gonum.org/v1/gonum/floats"

// EnergyVector holds one energy value per future timeslot, signed from the
// grid perspective: consumption is positive, production negative. Vectors
// are never mutated in place once produced.
type EnergyVector []float64

// Clone returns a copy of the vector.
func (e EnergyVector) Clone() EnergyVector {
	return append(EnergyVector(nil), e...)
}

// Sum returns the total energy of the vector.
func (e EnergyVector) Sum() float64 { return floats.Sum(e) }

// Scaled returns a new vector multiplied by f.
func (e EnergyVector) Scaled(f float64) EnergyVector {
	out := e.Clone()
	floats.Scale(f, out)
	return out
}

// ShiftedEnergy is the demand-shifted forecast of one customer under one
// tariff, plus the inconvenience penalty the shift causes. The penalty uses
// the charge sign convention so that adding it to a charge makes the tariff
// look less attractive.
type ShiftedEnergy struct {
	Energy        EnergyVector `json:"energy"`
	Inconvenience float64      `json:"inconvenience"`
}

// ShiftedEnergyMap is indexed by customer name then tariff ID.
type ShiftedEnergyMap map[string]map[string]ShiftedEnergy

// Put stores a value, allocating the inner map when needed.
func (m ShiftedEnergyMap) Put(customer, tariffID string, se ShiftedEnergy) {
	inner, ok := m[customer]
	if !ok {
		inner = make(map[string]ShiftedEnergy)
		m[customer] = inner
	}
	inner[tariffID] = se
}

// Get returns the shifted energy of a customer under a tariff.
func (m ShiftedEnergyMap) Get(customer, tariffID string) (ShiftedEnergy, bool) {
	se, ok := m[customer][tariffID]
	return se, ok
}

// HourOf returns the hour of day of a timeslot given the hour of day of
// timeslot zero.
func HourOf(timeslot, hourOffset int) int {
	return ((timeslot+hourOffset)%HoursPerDay + HoursPerDay) % HoursPerDay
}

// SlotHours returns the hour of day of each entry of an energy vector of the
// given length whose first entry is the timeslot after currentTimeslot.
func SlotHours(currentTimeslot, hourOffset, length int) []int {
	out := make([]int, length)
	for i := range out {
		out[i] = HourOf(currentTimeslot+1+i, hourOffset)
	}
	return out
}
