package messaging

// Message - broker message payload interface
type Message interface {
	GetMsgRefId() string
	GetPayload() []byte
	GetAttributes() map[string]string
}

// MsgPayload - MsgPayload Payload model implementing Message interface.
type MsgPayload struct {
	// MessageId - broker message id
	MessageId string
	// Data - message payload
	Data []byte
	// Attributes - topic attributes
	Attributes map[string]string
}

// GetMsgRefId - Get message id
func (msg *MsgPayload) GetMsgRefId() string {
	return msg.MessageId
}

// GetPayload - Get message payload
func (msg *MsgPayload) GetPayload() []byte {
	return msg.Data
}

// GetAttributes - Get message attributes
func (msg *MsgPayload) GetAttributes() map[string]string {
	return msg.Attributes
}
