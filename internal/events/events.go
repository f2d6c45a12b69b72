package events

import "time"

// BridgeEvent describes a change, or a failed attempt at one, on a bridge.
type BridgeEvent struct {
	Type      string    `json:"type"`
	Op        string    `json:"op"`
	Bridge    string    `json:"bridge"`
	Interface string    `json:"interface,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message,omitempty"`
}

const (
	TypeBridgeCreated     = "BRIDGE_CREATED"
	TypeBridgeDeleted     = "BRIDGE_DELETED"
	TypeInterfaceAttached = "INTERFACE_ATTACHED"
	TypeInterfaceDetached = "INTERFACE_DETACHED"
	TypeOperationFailed   = "OPERATION_FAILED"
)

// TopicBridge is the event bus topic for bridge changes.
const TopicBridge = "network.bridge.events"
