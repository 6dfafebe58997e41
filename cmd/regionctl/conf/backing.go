package conf

import (
	"strings"
)

//These are enums that map to each of the available region implementations
const (
	BackUnknown BackingRegion = iota
	BackFile
	BackMmap
	BackDevice
)

//BackingRegion type represents the available region implementations
type BackingRegion uint8

//NewBackingRegion constructs a BackingRegion from a human textual short name (from config)
func NewBackingRegion(backDesc string) BackingRegion {
	switch strings.ToLower(backDesc) {
	case "file", "disk":
		return BackFile
	case "mmap", "mapped":
		return BackMmap
	case "dev", "device", "block":
		return BackDevice
	default:
		return BackUnknown
	}
}

//String is a human readable description of the backing store for display
func (br BackingRegion) String() string {
	switch br {
	case BackFile:
		return "file"
	case BackMmap:
		return "memory-mapped file"
	case BackDevice:
		return "block-device extent"
	default:
		return "unknown"
	}
}

//These are enums that map to each of the operations regionctl can perform
const (
	OpUnknown Operation = iota
	OpInfo
	OpRead
	OpWrite
	OpSync
)

//Operation type represents the requested region operation
type Operation uint8

//NewOperation constructs an Operation from its command-line name
func NewOperation(opDesc string) Operation {
	switch strings.ToLower(opDesc) {
	case "info":
		return OpInfo
	case "read":
		return OpRead
	case "write":
		return OpWrite
	case "sync":
		return OpSync
	default:
		return OpUnknown
	}
}

//String is the command-line name of the operation
func (op Operation) String() string {
	switch op {
	case OpInfo:
		return "info"
	case OpRead:
		return "read"
	case OpWrite:
		return "write"
	case OpSync:
		return "sync"
	default:
		return "unknown"
	}
}
