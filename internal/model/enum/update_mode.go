package enum

import "strings"

// UpdateMode poll, websocket
type UpdateMode uint8

const (
	_update_mode_beg UpdateMode = iota
	UpdateModePoll
	UpdateModeWebsocket
	_update_mode_end
)

func (m UpdateMode) IsAvailable() bool {
	return m > _update_mode_beg && m < _update_mode_end
}

func (m UpdateMode) String() string {
	switch m {
	case UpdateModePoll:
		return "POLL"
	case UpdateModeWebsocket:
		return "WEBSOCKET"
	default:
		return "UNKNOWN"
	}
}

func ParseUpdateMode(s string) (UpdateMode, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "POLL":
		return UpdateModePoll, true
	case "WEBSOCKET":
		return UpdateModeWebsocket, true
	default:
		return _update_mode_beg, false
	}
}
