// Package protocol defines the newline-delimited JSON wire format spoken by
// the ipc-json-bridge binary on its standard streams, and classifies raw
// frames into typed messages.
package protocol

// Version is the only bridge protocol version this package accepts.
const Version = 1

// Action identifies a client lifecycle event on the bridge's socket.
type Action string

const (
	// ActionConnect reports that a client connected to the bridge socket.
	ActionConnect Action = "connect"
	// ActionDisconnect reports that a client's connection closed.
	ActionDisconnect Action = "disconnect"
)

// BridgeMessage is the untagged wire record. Every field is optional; which
// fields are present decides the message kind (see Classify).
type BridgeMessage struct {
	ID         string `json:"id,omitempty" jsonschema:"description=Client connection identifier"`
	Msg        string `json:"msg,omitempty" jsonschema:"description=Opaque payload (base64 by convention)"`
	Disconnect bool   `json:"disconnect,omitempty" jsonschema:"description=Close the connection after delivering msg"`
	Action     Action `json:"action,omitempty" jsonschema:"enum=connect,enum=disconnect"`
	PID        int    `json:"pid,omitempty" jsonschema:"description=Peer process id when the platform reports it"`
	Error      string `json:"error,omitempty"`
	Details    string `json:"details,omitempty"`
	Socket     string `json:"socket,omitempty" jsonschema:"description=Filesystem path of the listening socket"`
	Version    int    `json:"version,omitempty" jsonschema:"description=Protocol version; only 1 is accepted"`
}

// Kind discriminates classified messages.
type Kind int

const (
	KindReady Kind = iota
	KindConnect
	KindDisconnect
	KindMessage
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindReady:
		return "ready"
	case KindConnect:
		return "connect"
	case KindDisconnect:
		return "disconnect"
	case KindMessage:
		return "message"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Message is the union type returned by Classify.
type Message interface {
	Kind() Kind
}

// ReadyMessage is the one-time handshake reporting the socket path and
// protocol version.
// Example: {"socket":"/tmp/ipc_socket_1b4e...","version":1}
type ReadyMessage struct {
	Socket  string `json:"socket"`
	Version int    `json:"version"`
}

// ConnectMessage reports a client connecting to the bridge socket.
// Example: {"id":"c1","action":"connect","pid":42}
type ConnectMessage struct {
	ID     string `json:"id"`
	Action Action `json:"action"`
	PID    int    `json:"pid,omitempty"`
}

// DisconnectMessage reports a client's connection closing.
// Example: {"id":"c1","action":"disconnect"}
type DisconnectMessage struct {
	ID     string `json:"id"`
	Action Action `json:"action"`
}

// IncomingMessage is a payload received from a client.
// Example: {"id":"c1","msg":"aGVsbG8="}
type IncomingMessage struct {
	ID  string `json:"id"`
	Msg string `json:"msg"`
}

// ErrorMessage is a diagnosed failure, either reported by the bridge or
// synthesized by the supervisor.
// Example: {"error":"Client not found","details":"Client ID c9 not found"}
type ErrorMessage struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// OutgoingMessage is a payload the host sends to a client. When Disconnect
// is set the bridge closes the connection after writing Msg.
type OutgoingMessage struct {
	ID         string `json:"id"`
	Msg        string `json:"msg"`
	Disconnect bool   `json:"disconnect,omitempty"`
}

func (ReadyMessage) Kind() Kind      { return KindReady }
func (ConnectMessage) Kind() Kind    { return KindConnect }
func (DisconnectMessage) Kind() Kind { return KindDisconnect }
func (IncomingMessage) Kind() Kind   { return KindMessage }
func (ErrorMessage) Kind() Kind      { return KindError }
