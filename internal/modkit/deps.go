// Package modkit provides module wiring and core deps
package modkit

import (
	"signalkit/internal/core/engine"
	"signalkit/internal/platform/config"
	"signalkit/internal/platform/logger"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log     logger.Logger
	Cfg     config.Conf
	Engine  *engine.Engine
	API     config.API
	Signals config.Signals
}

// Ready reports whether the deps can serve extraction traffic
func (d Deps) Ready() bool { return d.Engine != nil }
