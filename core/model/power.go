package model

import "strings"

// PowerType classifies tariffs and customers by the direction of the energy
// flow they deal with.
type PowerType int

const (
	Consumption PowerType = iota
	InterruptibleConsumption
	ThermalStorageConsumption
	Production
	SolarProduction
	WindProduction
	Storage
)

// String returns the market label for the power type.
func (p PowerType) String() string {
	switch p {
	case Consumption:
		return "CONSUMPTION"
	case InterruptibleConsumption:
		return "INTERRUPTIBLE_CONSUMPTION"
	case ThermalStorageConsumption:
		return "THERMAL_STORAGE_CONSUMPTION"
	case Production:
		return "PRODUCTION"
	case SolarProduction:
		return "SOLAR_PRODUCTION"
	case WindProduction:
		return "WIND_PRODUCTION"
	case Storage:
		return "STORAGE"
	default:
		return "unknown"
	}
}

// ParsePowerType converts a label back to a PowerType. Unknown labels map to
// Consumption.
func ParsePowerType(s string) PowerType {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "INTERRUPTIBLE_CONSUMPTION":
		return InterruptibleConsumption
	case "THERMAL_STORAGE_CONSUMPTION":
		return ThermalStorageConsumption
	case "PRODUCTION":
		return Production
	case "SOLAR_PRODUCTION":
		return SolarProduction
	case "WIND_PRODUCTION":
		return WindProduction
	case "STORAGE":
		return Storage
	default:
		return Consumption
	}
}

// Generic returns the most general type of the same family.
func (p PowerType) Generic() PowerType {
	switch {
	case p.IsConsumption():
		return Consumption
	case p.IsProduction():
		return Production
	default:
		return p
	}
}

// IsConsumption reports whether p belongs to the consumption family.
func (p PowerType) IsConsumption() bool {
	return p == Consumption || p == InterruptibleConsumption || p == ThermalStorageConsumption
}

// IsProduction reports whether p belongs to the production family.
func (p PowerType) IsProduction() bool {
	return p == Production || p == SolarProduction || p == WindProduction
}

// CanUse reports whether a customer of type p may subscribe to a tariff of
// type tariff. A customer can use a tariff of its exact type or the generic
// type of its family. Storage customers may also use consumption tariffs.
func (p PowerType) CanUse(tariff PowerType) bool {
	if p == tariff {
		return true
	}
	if tariff == p.Generic() {
		return true
	}
	return p == Storage && tariff == Consumption
}
