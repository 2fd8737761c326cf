// Package protocol implements the wire message model: a dense MessageKind
// enumeration, the Frame/Message types, a registry-driven
// serialize/deserialize processor, and the per-session request/response
// correlator.
package protocol

import "fmt"

// MessageKind is a dense u8 enumeration. The order below is bit-compatible
// wire contract: appending new kinds at the end is safe, reordering or
// inserting is not.
type MessageKind uint8

const (
	Ping MessageKind = iota
	Pong
	LoginRequest
	LoginResponse
	SystemChat
	VersionRequest
	VersionResponse
	AssetRequest
	AssetResponse
	AssetListRequest
	AssetListResponse
	PlayerPositionRequest
	PlayerPositionResponse
	ChunkRequest
	ChunkResponse
)

func (k MessageKind) String() string {
	switch k {
	case Ping:
		return "Ping"
	case Pong:
		return "Pong"
	case LoginRequest:
		return "LoginRequest"
	case LoginResponse:
		return "LoginResponse"
	case SystemChat:
		return "SystemChat"
	case VersionRequest:
		return "VersionRequest"
	case VersionResponse:
		return "VersionResponse"
	case AssetRequest:
		return "AssetRequest"
	case AssetResponse:
		return "AssetResponse"
	case AssetListRequest:
		return "AssetListRequest"
	case AssetListResponse:
		return "AssetListResponse"
	case PlayerPositionRequest:
		return "PlayerPositionRequest"
	case PlayerPositionResponse:
		return "PlayerPositionResponse"
	case ChunkRequest:
		return "ChunkRequest"
	case ChunkResponse:
		return "ChunkResponse"
	default:
		return fmt.Sprintf("MessageKind(%d)", uint8(k))
	}
}
