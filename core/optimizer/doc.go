// Package optimizer turns market context into a ranking of candidate
// actions. Concrete strategies share one Pipeline per broker:
//
//   - one-shot evaluates every fixed-rate candidate
//   - binary-one-shot evaluates a binary-searched subset of them
//   - incremental refines the best fixed rate into a time-of-use tariff
//   - tou-fixed-margin shapes a time-of-use tariff after the cost curve
//
// Composites pick one child per call and can be nested freely:
//
//   - first-time-different uses one child on the first call, another after
//   - counter-periodic switches to a backup against periodic-fee rivals
package optimizer
