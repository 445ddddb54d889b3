package metrics

import "github.com/kilianp07/tariffbroker/core/factory"

var sinkRegistry = factory.NewRegistry[DecisionSink]()

// RegisterSink adds a sink factory identified by name.
func RegisterSink(name string, f factory.Factory[DecisionSink]) error {
	return sinkRegistry.Register(name, f)
}

// SinkNames lists the registered sink types.
func SinkNames() []string { return sinkRegistry.Names() }

// NewSink creates a DecisionSink from the provided configuration. No
// configuration yields a NopSink and several yield a MultiSink.
func NewSink(cfgs []factory.ModuleConfig) (DecisionSink, error) {
	if len(cfgs) == 0 {
		return NopSink{}, nil
	}
	if len(cfgs) == 1 {
		return sinkRegistry.Create(cfgs[0])
	}
	sinks := make([]DecisionSink, len(cfgs))
	for i, c := range cfgs {
		s, err := sinkRegistry.Create(c)
		if err != nil {
			return nil, err
		}
		sinks[i] = s
	}
	return NewMultiSink(sinks...), nil
}
