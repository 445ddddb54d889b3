// Package decision picks the action a broker takes in a timeslot.
package decision

import (
	"github.com/kilianp07/tariffbroker/core/logger"
	"github.com/kilianp07/tariffbroker/core/model"
	"github.com/kilianp07/tariffbroker/core/utility"
)

// Selection is the outcome of one selection.
type Selection struct {
	// Actions holds at most one action. Empty means do nothing.
	Actions []model.Action
	Ranking *model.Ranking
	Chosen  model.RankedAction
	// WarmupOverride is set when the best entry was NoOp and was replaced by
	// the best active one.
	WarmupOverride bool
}

// ActionSelector merges publish and revoke rankings and picks one action.
type ActionSelector struct {
	cfg Config
	log logger.Logger
}

// NewActionSelector returns a selector. cfg is completed with defaults.
func NewActionSelector(cfg Config, log logger.Logger) *ActionSelector {
	cfg.SetDefaults()
	return &ActionSelector{cfg: cfg, log: logger.OrNop(log)}
}

// Select ranks everything and returns the chosen action. The revoke ranking
// is ignored unless revocation is enabled; its NoOp entry never replaces the
// publish ranking's.
func (s *ActionSelector) Select(publish, revoke *model.Ranking, currentTimeslot int) Selection {
	merged := publish.Clone()
	if s.cfg.RevocationEnabled && revoke != nil {
		merged.Merge(revoke, true)
	}
	sel := Selection{Ranking: merged}
	best, ok := merged.Best()
	if !ok {
		s.log.Errorf("empty ranking at ts %d, doing nothing", currentTimeslot)
		return sel
	}
	if best.Action.IsNoOp() && currentTimeslot < s.cfg.WarmupTimeslots {
		if alt, ok := merged.BestNonNoOp(); ok {
			s.log.Warnf("warm-up override at ts %d: %s (%.4f) instead of noop (%.4f)", currentTimeslot, alt.Action, alt.Utility, best.Utility)
			best = alt
			sel.WarmupOverride = true
		}
	}
	sel.Chosen = best
	if !best.Action.IsNoOp() {
		sel.Actions = []model.Action{best.Action}
	}
	return sel
}

// SelectActions returns the chosen action, if any.
func (s *ActionSelector) SelectActions(publish, revoke *model.Ranking, currentTimeslot int) []model.Action {
	return s.Select(publish, revoke, currentTimeslot).Actions
}

// TariffRevoker finds own tariffs worth revoking.
type TariffRevoker struct {
	util *utility.Estimator
	log  logger.Logger
}

// NewTariffRevoker returns a revoker.
func NewTariffRevoker(util *utility.Estimator, log logger.Logger) *TariffRevoker {
	return &TariffRevoker{util: util, log: logger.OrNop(log)}
}

// RevokeRanking ranks revoking each of own against doing nothing.
func (r *TariffRevoker) RevokeRanking(own []*model.TariffSpec, in utility.Input) *model.Ranking {
	return r.util.EstimateRevokeUtilities(own, in)
}

// SelectTariffsToRevoke returns the tariffs whose revocation beats doing
// nothing, best first.
func (r *TariffRevoker) SelectTariffsToRevoke(ranking *model.Ranking) []*model.TariffSpec {
	noop, ok := ranking.NoOpUtility()
	if !ok {
		r.log.Errorf("revoke ranking without noop entry")
		return nil
	}
	var out []*model.TariffSpec
	for _, e := range ranking.Entries() {
		if e.Utility <= noop {
			break
		}
		if e.Action.Kind == model.Revoke {
			out = append(out, e.Action.Tariff)
		}
	}
	return out
}
