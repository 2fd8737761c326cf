package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// wireWriter accumulates a message body in the same fixed little-endian
// binary layout used throughout this package: no reflection, no
// self-describing tags beyond what each Body type chooses to write.
type wireWriter struct {
	buf bytes.Buffer
}

func (w *wireWriter) Bytes() []byte { return w.buf.Bytes() }

func (w *wireWriter) WriteUint8(v uint8)   { w.buf.WriteByte(v) }
func (w *wireWriter) WriteBool(v bool) {
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

func (w *wireWriter) WriteInt32(v int32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	w.buf.Write(b[:])
}

func (w *wireWriter) WriteInt64(v int64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	w.buf.Write(b[:])
}

func (w *wireWriter) WriteFloat64(v float64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	w.buf.Write(b[:])
}

func (w *wireWriter) WriteString(s string) {
	w.WriteInt32(int32(len(s)))
	w.buf.WriteString(s)
}

func (w *wireWriter) WriteBytes(b []byte) {
	w.WriteInt32(int32(len(b)))
	w.buf.Write(b)
}

// wireReader consumes a message body written by wireWriter.
type wireReader struct {
	data []byte
	pos  int
}

func newWireReader(data []byte) *wireReader {
	return &wireReader{data: data}
}

func (r *wireReader) require(n int) error {
	if len(r.data)-r.pos < n {
		return fmt.Errorf("protocol: wire body truncated: need %d more bytes, have %d", n, len(r.data)-r.pos)
	}
	return nil
}

func (r *wireReader) ReadUint8() (uint8, error) {
	if err := r.require(1); err != nil {
		return 0, err
	}
	v := r.data[r.pos]
	r.pos++
	return v, nil
}

func (r *wireReader) ReadBool() (bool, error) {
	v, err := r.ReadUint8()
	return v != 0, err
}

func (r *wireReader) ReadInt32() (int32, error) {
	if err := r.require(4); err != nil {
		return 0, err
	}
	v := int32(binary.LittleEndian.Uint32(r.data[r.pos : r.pos+4]))
	r.pos += 4
	return v, nil
}

func (r *wireReader) ReadInt64() (int64, error) {
	if err := r.require(8); err != nil {
		return 0, err
	}
	v := int64(binary.LittleEndian.Uint64(r.data[r.pos : r.pos+8]))
	r.pos += 8
	return v, nil
}

func (r *wireReader) ReadFloat64() (float64, error) {
	if err := r.require(8); err != nil {
		return 0, err
	}
	v := math.Float64frombits(binary.LittleEndian.Uint64(r.data[r.pos : r.pos+8]))
	r.pos += 8
	return v, nil
}

func (r *wireReader) ReadString() (string, error) {
	n, err := r.ReadInt32()
	if err != nil {
		return "", err
	}
	if err := r.require(int(n)); err != nil {
		return "", err
	}
	s := string(r.data[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return s, nil
}

func (r *wireReader) ReadBytes() ([]byte, error) {
	n, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	if err := r.require(int(n)); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	copy(b, r.data[r.pos:r.pos+int(n)])
	r.pos += int(n)
	return b, nil
}

// Vec3F is a floating-point 3-vector used for continuous quantities
// (player position, rotation) that don't fit world.Vec3's integer chunk
// grid.
type Vec3F struct {
	X, Y, Z float64
}

func (w *wireWriter) WriteVec3F(v Vec3F) {
	w.WriteFloat64(v.X)
	w.WriteFloat64(v.Y)
	w.WriteFloat64(v.Z)
}

func (r *wireReader) ReadVec3F() (Vec3F, error) {
	x, err := r.ReadFloat64()
	if err != nil {
		return Vec3F{}, err
	}
	y, err := r.ReadFloat64()
	if err != nil {
		return Vec3F{}, err
	}
	z, err := r.ReadFloat64()
	if err != nil {
		return Vec3F{}, err
	}
	return Vec3F{X: x, Y: y, Z: z}, nil
}

func (w *wireWriter) WriteVec3I(x, y, z int32) {
	w.WriteInt32(x)
	w.WriteInt32(y)
	w.WriteInt32(z)
}

func (r *wireReader) ReadVec3I() (x, y, z int32, err error) {
	if x, err = r.ReadInt32(); err != nil {
		return
	}
	if y, err = r.ReadInt32(); err != nil {
		return
	}
	z, err = r.ReadInt32()
	return
}
