package optimizer

import (
	"fmt"

	"github.com/kilianp07/tariffbroker/core/factory"
	"github.com/kilianp07/tariffbroker/core/search"
)

// refineConf configures incremental and tou-fixed-margin.
type refineConf struct {
	Seed   factory.ModuleConfig `json:"seed"`
	Method factory.ModuleConfig `json:"method"`
}

// firstTimeConf configures first-time-different.
type firstTimeConf struct {
	First factory.ModuleConfig `json:"first"`
	Then  factory.ModuleConfig `json:"then"`
}

// counterPeriodicConf configures counter-periodic.
type counterPeriodicConf struct {
	Default factory.ModuleConfig `json:"default"`
	Backup  factory.ModuleConfig `json:"backup"`
}

// Builder creates the strategy tree of one broker. Every strategy it builds
// shares a single Pipeline, so the candidate generator keeps one call
// history per broker.
type Builder struct {
	cfg        Config
	deps       Deps
	pipeline   *Pipeline
	hourOffset int
	methods    *factory.Registry[search.Method]
	strategies *factory.Registry[Strategy]
}

// NewBuilder returns a Builder. cfg is completed with defaults.
func NewBuilder(cfg Config, deps Deps, hourOffset int) *Builder {
	cfg.Search.Logger = deps.Log
	cfg.SetDefaults()
	b := &Builder{
		cfg:        cfg,
		deps:       deps,
		pipeline:   NewPipeline(deps, WithdrawFees{Enabled: cfg.WithdrawFees, MinDuration: cfg.MinDuration}),
		hourOffset: hourOffset,
		methods:    search.Registry(cfg.Search),
		strategies: factory.NewRegistry[Strategy](),
	}
	b.register()
	return b
}

// Build creates the configured root strategy.
func (b *Builder) Build() (Strategy, error) {
	return b.Create(b.cfg.Strategy)
}

// Create builds one strategy subtree.
func (b *Builder) Create(mc factory.ModuleConfig) (Strategy, error) {
	s, err := b.strategies.Create(mc)
	if err != nil {
		return nil, fmt.Errorf("strategy %q: %w", mc.Type, err)
	}
	return s, nil
}

// Pipeline returns the collaborators shared by every built strategy.
func (b *Builder) Pipeline() *Pipeline { return b.pipeline }

// StrategyNames lists the registered strategies.
func (b *Builder) StrategyNames() []string { return b.strategies.Names() }

// MethodNames lists the registered continuous search methods.
func (b *Builder) MethodNames() []string { return b.methods.Names() }

func (b *Builder) seed(mc factory.ModuleConfig) (seeder, error) {
	if mc.Type == "" {
		mc.Type = OneShotName
	}
	s, err := b.Create(mc)
	if err != nil {
		return nil, err
	}
	sd, ok := s.(seeder)
	if !ok {
		return nil, fmt.Errorf("%s cannot seed a refinement", mc.Type)
	}
	return sd, nil
}

func (b *Builder) pair(first, second factory.ModuleConfig) (Strategy, Strategy, error) {
	a, err := b.Create(first)
	if err != nil {
		return nil, nil, err
	}
	c, err := b.Create(second)
	if err != nil {
		return nil, nil, err
	}
	return a, c, nil
}

func (b *Builder) register() {
	p := b.pipeline
	_ = b.strategies.Register(OneShotName, func(map[string]any) (Strategy, error) {
		return NewOneShot(p), nil
	})
	_ = b.strategies.Register(BinaryOneShotName, func(map[string]any) (Strategy, error) {
		return NewBinaryOneShot(p), nil
	})
	_ = b.strategies.Register(IncrementalName, func(conf map[string]any) (Strategy, error) {
		var c refineConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		sd, err := b.seed(c.Seed)
		if err != nil {
			return nil, err
		}
		if c.Method.Type == "" {
			c.Method.Type = "coordinate"
		}
		m, err := b.methods.Create(c.Method)
		if err != nil {
			return nil, fmt.Errorf("method %q: %w", c.Method.Type, err)
		}
		return NewIncremental(p, sd, m, b.cfg.NumRates, b.cfg.MaxEvaluations), nil
	})
	_ = b.strategies.Register(TOUFixedMarginName, func(conf map[string]any) (Strategy, error) {
		var c refineConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		sd, err := b.seed(c.Seed)
		if err != nil {
			return nil, err
		}
		return NewTOUFixedMargin(p, sd, b.hourOffset), nil
	})
	_ = b.strategies.Register(FirstTimeDifferentName, func(conf map[string]any) (Strategy, error) {
		var c firstTimeConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		first, then, err := b.pair(c.First, c.Then)
		if err != nil {
			return nil, err
		}
		return NewFirstTimeDifferent(first, then, b.deps.Log, b.deps.Events), nil
	})
	_ = b.strategies.Register(CounterPeriodicName, func(conf map[string]any) (Strategy, error) {
		var c counterPeriodicConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		def, backup, err := b.pair(c.Default, c.Backup)
		if err != nil {
			return nil, err
		}
		return NewCounterPeriodic(def, backup, b.deps.Log, b.deps.Events), nil
	})
}
