package internal

type State int

const (
	Unconnected State = iota
	Connecting
	Connected
	Handshaking
	Ready
	ShuttingDown
	Closed
	Failed
)

var stateNames = [...]string{
	Unconnected:  "unconnected",
	Connecting:   "connecting",
	Connected:    "connected",
	Handshaking:  "handshaking",
	Ready:        "ready",
	ShuttingDown: "shutting down",
	Closed:       "closed",
	Failed:       "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
