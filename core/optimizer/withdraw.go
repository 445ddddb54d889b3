package optimizer

import (
	"time"

	"github.com/kilianp07/tariffbroker/core/model"
)

// WithdrawFees attaches an early-withdrawal fee to candidates: half the
// population-weighted average charge customers are predicted to pay under
// the candidate, with the same sign.
type WithdrawFees struct {
	Enabled     bool
	MinDuration time.Duration
}

// Fee returns the withdrawal fee for tariffID, false if no customer has a
// charge estimate for it.
func (w WithdrawFees) Fee(customers []model.CustomerInfo, charges model.Charges, tariffID string) (float64, bool) {
	var weighted, population float64
	for _, c := range customers {
		est, ok := charges.Get(c.Name, tariffID)
		if !ok || c.Population <= 0 {
			continue
		}
		weighted += est.Bill * float64(c.Population)
		population += float64(c.Population)
	}
	if population == 0 {
		return 0, false
	}
	return weighted / population / 2, true
}

// Apply sets the fee and minimum duration on every candidate when enabled.
func (w WithdrawFees) Apply(candidates []*model.TariffSpec, customers []model.CustomerInfo, charges model.Charges) {
	if !w.Enabled {
		return
	}
	for _, t := range candidates {
		if fee, ok := w.Fee(customers, charges, t.ID); ok {
			t.EarlyWithdrawPayment = fee
			t.MinDuration = w.MinDuration
		}
	}
}
