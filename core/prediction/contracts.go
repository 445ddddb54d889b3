package prediction

import "github.com/kilianp07/tariffbroker/core/model"

// EnergyPredictor forecasts the per-member energy of a customer population.
type EnergyPredictor interface {
	// Forecast returns one value per future timeslot, horizon values long,
	// starting at the timeslot after currentTimeslot.
	Forecast(customer model.CustomerInfo, horizon, currentTimeslot int) model.EnergyVector
}

// MigrationPredictor predicts how customers redistribute over tariffs.
// Returned subscriptions only cover the broker's own tariffs, including the
// candidate when one is published.
type MigrationPredictor interface {
	// Predict returns subscriptions after publishing candidate. A nil
	// candidate predicts the no-op outcome.
	Predict(candidate *model.TariffSpec, charges model.Charges, current model.Subscriptions, competitors []*model.TariffSpec, currentTimeslot int) model.Subscriptions
	// PredictRevoke returns subscriptions after revoking the given tariff.
	PredictRevoke(revoked *model.TariffSpec, charges model.Charges, current model.Subscriptions, competitors []*model.TariffSpec, currentTimeslot int) model.Subscriptions
}

// CostCurvePredictor maps demand to wholesale unit cost. Unit costs are
// signed from the broker's perspective: buying energy gives a negative value.
type CostCurvePredictor interface {
	PredictUnitCost(currentTimeslot, futureTimeslot int, ownNetDemand, competitorDemand float64) float64
	// CompetitorDemand estimates the net demand of all other brokers.
	CompetitorDemand(currentTimeslot, futureTimeslot int) float64
	FudgeFactor(currentTimeslot int) float64
}

// MarketPricePredictor summarises wholesale clearing prices. Prices are
// positive amounts per kWh.
type MarketPricePredictor interface {
	MeanPrice() float64
	StddevPrice() float64
	PriceForecast(horizon int) []float64
}

// TariffRepository stores tariffs known to the agent.
type TariffRepository interface {
	Add(t *model.TariffSpec)
	Remove(id string)
	FindByID(id string) (*model.TariffSpec, bool)
}
