package protocol

import "github.com/voxelcore/voxelserver/internal/world"

// PingBody carries no fields; correlation uses Message.RequestID.
type PingBody struct{}

func (PingBody) MarshalBinary() ([]byte, error)  { return []byte{}, nil }
func (*PingBody) UnmarshalBinary(_ []byte) error { return nil }

// PongBody echoes the server's current time back to the pinging client.
type PongBody struct {
	Timestamp int64
}

func (b PongBody) MarshalBinary() ([]byte, error) {
	w := &wireWriter{}
	w.WriteInt64(b.Timestamp)
	return w.Bytes(), nil
}

func (b *PongBody) UnmarshalBinary(data []byte) error {
	r := newWireReader(data)
	ts, err := r.ReadInt64()
	if err != nil {
		return err
	}
	b.Timestamp = ts
	return nil
}

// LoginRequestBody carries plaintext credentials over a codec-encrypted
// frame; the transport-level encryption setting, not an additional
// application-level hash, protects these in flight.
type LoginRequestBody struct {
	Email    string
	Password string
}

func (b LoginRequestBody) MarshalBinary() ([]byte, error) {
	w := &wireWriter{}
	w.WriteString(b.Email)
	w.WriteString(b.Password)
	return w.Bytes(), nil
}

func (b *LoginRequestBody) UnmarshalBinary(data []byte) error {
	r := newWireReader(data)
	var err error
	if b.Email, err = r.ReadString(); err != nil {
		return err
	}
	if b.Password, err = r.ReadString(); err != nil {
		return err
	}
	return nil
}

// LoginResponseBody reports whether authentication succeeded.
type LoginResponseBody struct {
	Success bool
}

func (b LoginResponseBody) MarshalBinary() ([]byte, error) {
	w := &wireWriter{}
	w.WriteBool(b.Success)
	return w.Bytes(), nil
}

func (b *LoginResponseBody) UnmarshalBinary(data []byte) error {
	r := newWireReader(data)
	v, err := r.ReadBool()
	if err != nil {
		return err
	}
	b.Success = v
	return nil
}

// SystemChatBody is a server-to-client text announcement.
type SystemChatBody struct {
	Text string
}

func (b SystemChatBody) MarshalBinary() ([]byte, error) {
	w := &wireWriter{}
	w.WriteString(b.Text)
	return w.Bytes(), nil
}

func (b *SystemChatBody) UnmarshalBinary(data []byte) error {
	r := newWireReader(data)
	v, err := r.ReadString()
	if err != nil {
		return err
	}
	b.Text = v
	return nil
}

// VersionRequestBody carries no fields.
type VersionRequestBody struct{}

func (VersionRequestBody) MarshalBinary() ([]byte, error)  { return []byte{}, nil }
func (*VersionRequestBody) UnmarshalBinary(_ []byte) error { return nil }

// VersionResponseBody reports the server's build version.
type VersionResponseBody struct {
	Version string
}

func (b VersionResponseBody) MarshalBinary() ([]byte, error) {
	w := &wireWriter{}
	w.WriteString(b.Version)
	return w.Bytes(), nil
}

func (b *VersionResponseBody) UnmarshalBinary(data []byte) error {
	r := newWireReader(data)
	v, err := r.ReadString()
	if err != nil {
		return err
	}
	b.Version = v
	return nil
}

// AssetRequestBody names a single asset by its logical path.
type AssetRequestBody struct {
	Name string
}

func (b AssetRequestBody) MarshalBinary() ([]byte, error) {
	w := &wireWriter{}
	w.WriteString(b.Name)
	return w.Bytes(), nil
}

func (b *AssetRequestBody) UnmarshalBinary(data []byte) error {
	r := newWireReader(data)
	v, err := r.ReadString()
	if err != nil {
		return err
	}
	b.Name = v
	return nil
}

// AssetResponseBody carries raw asset bytes alongside the requested name.
type AssetResponseBody struct {
	Name string
	Data []byte
}

func (b AssetResponseBody) MarshalBinary() ([]byte, error) {
	w := &wireWriter{}
	w.WriteString(b.Name)
	w.WriteBytes(b.Data)
	return w.Bytes(), nil
}

func (b *AssetResponseBody) UnmarshalBinary(data []byte) error {
	r := newWireReader(data)
	var err error
	if b.Name, err = r.ReadString(); err != nil {
		return err
	}
	if b.Data, err = r.ReadBytes(); err != nil {
		return err
	}
	return nil
}

// AssetListRequestBody carries no fields.
type AssetListRequestBody struct{}

func (AssetListRequestBody) MarshalBinary() ([]byte, error)  { return []byte{}, nil }
func (*AssetListRequestBody) UnmarshalBinary(_ []byte) error { return nil }

// AssetListResponseBody enumerates every asset name the server can serve.
type AssetListResponseBody struct {
	Names []string
}

func (b AssetListResponseBody) MarshalBinary() ([]byte, error) {
	w := &wireWriter{}
	w.WriteInt32(int32(len(b.Names)))
	for _, name := range b.Names {
		w.WriteString(name)
	}
	return w.Bytes(), nil
}

func (b *AssetListResponseBody) UnmarshalBinary(data []byte) error {
	r := newWireReader(data)
	n, err := r.ReadInt32()
	if err != nil {
		return err
	}
	names := make([]string, 0, n)
	for i := int32(0); i < n; i++ {
		name, err := r.ReadString()
		if err != nil {
			return err
		}
		names = append(names, name)
	}
	b.Names = names
	return nil
}

// PlayerPositionRequestBody reports the sending client's updated position
// and rotation.
type PlayerPositionRequestBody struct {
	Position Vec3F
	Rotation Vec3F
}

func (b PlayerPositionRequestBody) MarshalBinary() ([]byte, error) {
	w := &wireWriter{}
	w.WriteVec3F(b.Position)
	w.WriteVec3F(b.Rotation)
	return w.Bytes(), nil
}

func (b *PlayerPositionRequestBody) UnmarshalBinary(data []byte) error {
	r := newWireReader(data)
	var err error
	if b.Position, err = r.ReadVec3F(); err != nil {
		return err
	}
	if b.Rotation, err = r.ReadVec3F(); err != nil {
		return err
	}
	return nil
}

// PlayerPositionResponseBody is the server's authoritative echo of a
// player's position and rotation, sent after login and after each accepted
// position update.
type PlayerPositionResponseBody struct {
	Position Vec3F
	Rotation Vec3F
}

func (b PlayerPositionResponseBody) MarshalBinary() ([]byte, error) {
	w := &wireWriter{}
	w.WriteVec3F(b.Position)
	w.WriteVec3F(b.Rotation)
	return w.Bytes(), nil
}

func (b *PlayerPositionResponseBody) UnmarshalBinary(data []byte) error {
	r := newWireReader(data)
	var err error
	if b.Position, err = r.ReadVec3F(); err != nil {
		return err
	}
	if b.Rotation, err = r.ReadVec3F(); err != nil {
		return err
	}
	return nil
}

// ChunkRequestBody names a single chunk by its world-space origin.
type ChunkRequestBody struct {
	Position world.Vec3
}

func (b ChunkRequestBody) MarshalBinary() ([]byte, error) {
	w := &wireWriter{}
	w.WriteVec3I(int32(b.Position.X), int32(b.Position.Y), int32(b.Position.Z))
	return w.Bytes(), nil
}

func (b *ChunkRequestBody) UnmarshalBinary(data []byte) error {
	r := newWireReader(data)
	x, y, z, err := r.ReadVec3I()
	if err != nil {
		return err
	}
	b.Position = world.Vec3{X: int(x), Y: int(y), Z: int(z)}
	return nil
}

// ChunkPayload is one chunk's wire representation: its world origin plus
// the kind byte of every block in storage order.
type ChunkPayload struct {
	Position world.Vec3
	Blocks   []byte
}

// ChunkResponseBody batches one or more chunks into a single frame; the
// streaming layer decides how many chunks go into each batch.
type ChunkResponseBody struct {
	Chunks []ChunkPayload
}

func (b ChunkResponseBody) MarshalBinary() ([]byte, error) {
	w := &wireWriter{}
	w.WriteInt32(int32(len(b.Chunks)))
	for _, c := range b.Chunks {
		w.WriteVec3I(int32(c.Position.X), int32(c.Position.Y), int32(c.Position.Z))
		w.WriteBytes(c.Blocks)
	}
	return w.Bytes(), nil
}

func (b *ChunkResponseBody) UnmarshalBinary(data []byte) error {
	r := newWireReader(data)
	n, err := r.ReadInt32()
	if err != nil {
		return err
	}
	chunks := make([]ChunkPayload, 0, n)
	for i := int32(0); i < n; i++ {
		x, y, z, err := r.ReadVec3I()
		if err != nil {
			return err
		}
		blocks, err := r.ReadBytes()
		if err != nil {
			return err
		}
		chunks = append(chunks, ChunkPayload{
			Position: world.Vec3{X: int(x), Y: int(y), Z: int(z)},
			Blocks:   blocks,
		})
	}
	b.Chunks = chunks
	return nil
}

// EncodeChunkBlocks flattens a chunk's blocks into the byte form
// ChunkPayload.Blocks expects: one kind byte per cell, in storage order.
func EncodeChunkBlocks(c *world.Chunk) []byte {
	out := make([]byte, world.BlockCount)
	for i := 0; i < world.BlockCount; i++ {
		out[i] = byte(c.BlockAt(i).Kind)
	}
	return out
}

// RegisterDefaults registers a Factory for every MessageKind the game
// protocol defines.
func RegisterDefaults(p *Processor) {
	p.Register(Ping, func() Body { return &PingBody{} })
	p.Register(Pong, func() Body { return &PongBody{} })
	p.Register(LoginRequest, func() Body { return &LoginRequestBody{} })
	p.Register(LoginResponse, func() Body { return &LoginResponseBody{} })
	p.Register(SystemChat, func() Body { return &SystemChatBody{} })
	p.Register(VersionRequest, func() Body { return &VersionRequestBody{} })
	p.Register(VersionResponse, func() Body { return &VersionResponseBody{} })
	p.Register(AssetRequest, func() Body { return &AssetRequestBody{} })
	p.Register(AssetResponse, func() Body { return &AssetResponseBody{} })
	p.Register(AssetListRequest, func() Body { return &AssetListRequestBody{} })
	p.Register(AssetListResponse, func() Body { return &AssetListResponseBody{} })
	p.Register(PlayerPositionRequest, func() Body { return &PlayerPositionRequestBody{} })
	p.Register(PlayerPositionResponse, func() Body { return &PlayerPositionResponseBody{} })
	p.Register(ChunkRequest, func() Body { return &ChunkRequestBody{} })
	p.Register(ChunkResponse, func() Body { return &ChunkResponseBody{} })
}
