package exception

import "errors"

var (
	ErrEngineStopped       = errors.New("engine: stopped")
	ErrHedgeNoOracle       = errors.New("hedge: no oracle price in model state")
	ErrQueueFull           = errors.New("bus: event queue full")
	ErrQueueClosed         = errors.New("bus: event queue closed")
	ErrConfigInvalid       = errors.New("config: invalid")
	ErrConfigUnknownMode   = errors.New("config: unknown update mode")
	ErrConfigMissingMarket = errors.New("config: missing market section")
)
