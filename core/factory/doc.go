// Package factory is a small generic registry that builds components from
// configuration. A component is described by a type name and a map of raw
// settings; each factory decodes the settings into its own struct.
//
//	reg := factory.NewRegistry[search.Method]()
//	reg.Register("coordinate", func(conf map[string]any) (search.Method, error) {
//	    var c search.Config
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return search.NewCoordinateAscent(c), nil
//	})
//	m, err := reg.Create(factory.ModuleConfig{Type: "coordinate", Conf: map[string]any{"step_size": 0.004}})
package factory
