// Package msgs provides L1 protocol support and all message schemas.
package msgs

// L1 protocol carries telemetry from the vault device to monitors,
// and uses hardware-agnostic primitives. Every message is an event
// wrapped in Typed and encoded with protobuf.
//
// Producer: vault device
// Consumer: monitors
