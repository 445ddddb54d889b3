package search

import (
	"github.com/kilianp07/tariffbroker/core/factory"
)

// Registry returns a registry of every continuous method, each decoding its
// settings into a Config completed by base.
func Registry(base Config) *factory.Registry[Method] {
	reg := factory.NewRegistry[Method]()
	build := func(ctor func(Config) Method) factory.Factory[Method] {
		return func(conf map[string]any) (Method, error) {
			cfg := base
			if err := factory.Decode(conf, &cfg); err != nil {
				return nil, err
			}
			return ctor(cfg), nil
		}
	}
	_ = reg.Register("coordinate", build(func(c Config) Method { return NewCoordinateAscent(c) }))
	_ = reg.Register("gradient", build(func(c Config) Method { return NewGradientAscent(c) }))
	_ = reg.Register("nelder-mead", build(func(c Config) Method { return NewNelderMead(c) }))
	_ = reg.Register("powell", build(func(c Config) Method { return NewPowell(c) }))
	_ = reg.Register("bobyqa", build(func(c Config) Method { return NewTrustRegion(c) }))
	return reg
}
