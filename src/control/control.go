package control

import "fmt"

type Kind int

const (
	// Up restores a Dead replica as Follower keeping its term, log and commit state
	Up Kind = iota
	// Down makes replica Dead until next Up
	Down
	// Apply requests appending Delta to the log, accepted only by Leader
	Apply
	// Disconnect suppresses all sends and receives of replica
	Disconnect
	// Connect reverts Disconnect
	Connect
)

func (kind Kind) String() string {
	switch kind {
	case Up:
		return "Up"
	case Down:
		return "Down"
	case Apply:
		return "Apply"
	case Disconnect:
		return "Disconnect"
	case Connect:
		return "Connect"
	default:
		return "Unknown"
	}
}

type ControlMessage struct {
	Kind Kind
	// Delta to append, used only by Apply
	Delta int
}

func UpMessage() ControlMessage {
	return ControlMessage{Kind: Up}
}

func DownMessage() ControlMessage {
	return ControlMessage{Kind: Down}
}

func ApplyMessage(delta int) ControlMessage {
	return ControlMessage{Kind: Apply, Delta: delta}
}

func DisconnectMessage() ControlMessage {
	return ControlMessage{Kind: Disconnect}
}

func ConnectMessage() ControlMessage {
	return ControlMessage{Kind: Connect}
}

func (message ControlMessage) String() string {
	if message.Kind == Apply {
		return fmt.Sprintf("Apply(%d)", message.Delta)
	}
	return message.Kind.String()
}

type ControlResult struct {
	Result  string
	Success bool
	// Id of leader known to the replica, -1 if unknown
	LeaderId int
}

type ControlWrapper struct {
	Message ControlMessage
	// Optional, receives exactly one result when set
	Result chan<- ControlResult
}
