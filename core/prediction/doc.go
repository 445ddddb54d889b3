// Package prediction declares the forecasting collaborators consumed by the
// tariff decision core: energy demand, customer migration, wholesale cost
// curves, market prices and the tariff repository. Their internals live
// elsewhere; this package only carries the contracts and small in-memory
// implementations used for wiring and tests.
package prediction
