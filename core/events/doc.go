// Package events defines what the decision loop announces on the event bus.
//
// Available event types:
//   - StrategyEvent: composite strategy switches and optimizer fallbacks
//   - DecisionEvent: the action selected for a timeslot
package events
