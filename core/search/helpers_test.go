package search

import "github.com/kilianp07/tariffbroker/core/factory"

func factoryConfig(name string) factory.ModuleConfig {
	return factory.ModuleConfig{Type: name}
}
