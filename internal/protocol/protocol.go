// Package protocol defines the JSON messages exchanged between an arena
// host and its client. Every message is a single JSON object carrying a
// "type" field.
package protocol

import "github.com/vovakirdan/control-arena/internal/arena"

// Inbound message types.
const (
	MsgHandshake = "handshake"
	MsgInput     = "input"
	MsgRestart   = "restart"
)

// Outbound message types.
const (
	MsgAck         = "ack"
	MsgError       = "error"
	MsgStateUpdate = "state_update"
	MsgGameOver    = "game_over"
)

// Ack messages.
const (
	AckConnected   = "connected"
	AckHandshakeOK = "handshake_ok"
)

// Error codes sent in error payloads.
const (
	ErrCodeMissingAction      = "missing_action"
	ErrCodeUnknownMessageType = "unknown_message_type"
)

// Inbound is a decoded client message. A message that could not be decoded
// is the zero Inbound, whose empty Type no handler recognises.
type Inbound struct {
	Type   string
	Action string
	Name   string
}

// Outbound is a message sent to the client.
type Outbound struct {
	Type    string           `json:"type"`
	Message string           `json:"message,omitempty"`
	State   *arena.StateView `json:"state,omitempty"`
}

// Ack builds an acknowledgement.
func Ack(message string) Outbound {
	return Outbound{Type: MsgAck, Message: message}
}

// Error builds an error payload with one of the ErrCode constants.
func Error(code string) Outbound {
	return Outbound{Type: MsgError, Message: code}
}

// StateUpdate wraps a snapshot for a running game.
func StateUpdate(state arena.StateView) Outbound {
	return Outbound{Type: MsgStateUpdate, State: &state}
}

// GameOver wraps the final snapshot of a finished game.
func GameOver(state arena.StateView) Outbound {
	return Outbound{Type: MsgGameOver, State: &state}
}

// StateFor picks game_over or state_update based on the snapshot.
func StateFor(state arena.StateView) Outbound {
	if state.IsGameOver {
		return GameOver(state)
	}
	return StateUpdate(state)
}
