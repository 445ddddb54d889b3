package model

import (
	"slices"
)

// Subscriptions maps tariff ID to customer name to a subscriber count. Current
// subscriptions hold whole numbers; predicted subscriptions may be
// fractional. For any customer the sum over tariffs never exceeds the
// population.
type Subscriptions map[string]map[string]float64

// Set stores a count, allocating the inner map when needed.
func (s Subscriptions) Set(tariffID, customer string, count float64) {
	inner, ok := s[tariffID]
	if !ok {
		inner = make(map[string]float64)
		s[tariffID] = inner
	}
	inner[customer] = count
}

// Count returns the subscriber count of customer on tariff, zero if absent.
func (s Subscriptions) Count(tariffID, customer string) float64 {
	return s[tariffID][customer]
}

// TariffIDs returns the tariff IDs in lexical order. Sums over
// subscriptions iterate in this order so that they are reproducible.
func (s Subscriptions) TariffIDs() []string {
	return sortedKeys(s)
}

// Customers returns the customers subscribed to tariffID in lexical order.
func (s Subscriptions) Customers(tariffID string) []string {
	return sortedKeys(s[tariffID])
}

// CustomerTotal returns the number of members of customer subscribed across
// all tariffs.
func (s Subscriptions) CustomerTotal(customer string) float64 {
	var total float64
	for _, tariffID := range s.TariffIDs() {
		total += s[tariffID][customer]
	}
	return total
}

// TariffTotal returns the number of subscribers of a tariff.
func (s Subscriptions) TariffTotal(tariffID string) float64 {
	var total float64
	for _, customer := range s.Customers(tariffID) {
		total += s[tariffID][customer]
	}
	return total
}

// Clone returns a deep copy.
func (s Subscriptions) Clone() Subscriptions {
	out := make(Subscriptions, len(s))
	for t, inner := range s {
		cp := make(map[string]float64, len(inner))
		for c, n := range inner {
			cp[c] = n
		}
		out[t] = cp
	}
	return out
}

// ChargeEstimate is the predicted bill of one customer member under one
// tariff over the prediction horizon, from the customer's perspective.
// Evaluation adds the shifting inconvenience and is what customers compare
// when choosing tariffs.
type ChargeEstimate struct {
	Bill       float64 `json:"bill"`
	Evaluation float64 `json:"evaluation"`
}

// Charges is indexed by customer name then tariff ID.
type Charges map[string]map[string]ChargeEstimate

// Put stores a value, allocating the inner map when needed.
func (c Charges) Put(customer, tariffID string, est ChargeEstimate) {
	inner, ok := c[customer]
	if !ok {
		inner = make(map[string]ChargeEstimate)
		c[customer] = inner
	}
	inner[tariffID] = est
}

// Get returns the charge estimate of customer under tariff.
func (c Charges) Get(customer, tariffID string) (ChargeEstimate, bool) {
	est, ok := c[customer][tariffID]
	return est, ok
}

// Merge copies every entry of other into c, overwriting existing ones.
func (c Charges) Merge(other Charges) {
	for cust, inner := range other {
		for id, est := range inner {
			c.Put(cust, id, est)
		}
	}
}

// sortedKeys returns the keys of m in ascending order (nil when m is empty).
// Go 1.21 equivalent of slices.Sorted(maps.Keys(m)).
func sortedKeys[V any](m map[string]V) []string {
	var keys []string
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
