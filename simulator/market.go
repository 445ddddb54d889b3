package simulator

import (
	"gonum.org/v1/gonum/stat"
)

// PriceHistory summarises recent wholesale clearing prices.
type PriceHistory struct {
	prices []float64
	window int
}

// NewPriceHistory seeds the history. Only the last window prices count.
func NewPriceHistory(seed []float64, window int) *PriceHistory {
	if window < 1 {
		window = 1
	}
	return &PriceHistory{prices: append([]float64(nil), seed...), window: window}
}

// Record appends a clearing price.
func (p *PriceHistory) Record(price float64) {
	p.prices = append(p.prices, price)
	if extra := len(p.prices) - 4*p.window; extra > 0 {
		p.prices = append([]float64(nil), p.prices[extra:]...)
	}
}

func (p *PriceHistory) recent() []float64 {
	if len(p.prices) <= p.window {
		return p.prices
	}
	return p.prices[len(p.prices)-p.window:]
}

// MeanPrice implements prediction.MarketPricePredictor.
func (p *PriceHistory) MeanPrice() float64 {
	r := p.recent()
	if len(r) == 0 {
		return 0
	}
	return stat.Mean(r, nil)
}

// StddevPrice implements prediction.MarketPricePredictor. Fewer than two
// prices give zero.
func (p *PriceHistory) StddevPrice() float64 {
	r := p.recent()
	if len(r) < 2 {
		return 0
	}
	return stat.StdDev(r, nil)
}

// PriceForecast implements prediction.MarketPricePredictor. The last day of
// prices repeats; a shorter history forecasts its mean.
func (p *PriceHistory) PriceForecast(horizon int) []float64 {
	out := make([]float64, horizon)
	if len(p.prices) < 24 {
		mean := p.MeanPrice()
		for i := range out {
			out[i] = mean
		}
		return out
	}
	day := p.prices[len(p.prices)-24:]
	for i := range out {
		out[i] = day[i%24]
	}
	return out
}
