package msgs

import (
	"github.com/golang/protobuf/proto"
)

// SessionEvent reports session progress.
type SessionEvent struct {
	Session        uint64 `protobuf:"varint,1,opt,name=session,proto3" json:"session,omitempty"`
	Kind           string `protobuf:"bytes,2,opt,name=kind,proto3" json:"kind,omitempty"`
	Phase          string `protobuf:"bytes,3,opt,name=phase,proto3" json:"phase,omitempty"`
	FailedAttempts uint32 `protobuf:"varint,4,opt,name=failed_attempts,json=failedAttempts,proto3" json:"failed_attempts,omitempty"`
}

// Reset implements proto.Message.
func (m *SessionEvent) Reset() { *m = SessionEvent{} }

// String implements proto.Message.
func (m *SessionEvent) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*SessionEvent) ProtoMessage() {}

// TypeID implements SerializableMessage.
func (*SessionEvent) TypeID() uint32 { return SessionEventTypeID }

// DeviceStatus is retained on the status topic, Online is false
// in the will message.
type DeviceStatus struct {
	Id     string `protobuf:"bytes,1,opt,name=id,proto3" json:"id,omitempty"`
	Online bool   `protobuf:"varint,2,opt,name=online,proto3" json:"online,omitempty"`
}

// Reset implements proto.Message.
func (m *DeviceStatus) Reset() { *m = DeviceStatus{} }

// String implements proto.Message.
func (m *DeviceStatus) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*DeviceStatus) ProtoMessage() {}

// TypeID implements SerializableMessage.
func (*DeviceStatus) TypeID() uint32 { return DeviceStatusTypeID }

// TypeID Groups
const (
	GroupSession uint32 = 0x00020000
	GroupDevice  uint32 = 0x00030000
)

// TypeIDs
const (
	SessionEventTypeID uint32 = TypeIDKindEvent | GroupSession | 0x0001
	DeviceStatusTypeID uint32 = TypeIDKindEvent | GroupDevice | 0x0001
)
