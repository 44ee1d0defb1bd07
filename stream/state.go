package stream

// ConnectionState is the lifecycle of the push connection.
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connecting
	Connected
	Errored
)

func (s ConnectionState) String() string {
	switch s {
	case Connecting:
		return "CONNECTING"
	case Connected:
		return "CONNECTED"
	case Errored:
		return "ERROR"
	default:
		return "DISCONNECTED"
	}
}
