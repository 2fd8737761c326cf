package entitystore

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// recordWriter/recordReader mirror internal/protocol's wireWriter/wireReader:
// a small fixed little-endian layout with no reflection, scoped to this
// package since Record.MarshalBinary has no reason to depend on the wire
// protocol package.
type recordWriter struct {
	buf bytes.Buffer
}

func (w *recordWriter) Bytes() []byte { return w.buf.Bytes() }

func (w *recordWriter) WriteInt32(v int32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	w.buf.Write(b[:])
}

func (w *recordWriter) WriteInt64(v int64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	w.buf.Write(b[:])
}

func (w *recordWriter) WriteUint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

func (w *recordWriter) WriteString(s string) {
	w.WriteInt32(int32(len(s)))
	w.buf.WriteString(s)
}

func (w *recordWriter) WriteBytes(b []byte) {
	w.WriteInt32(int32(len(b)))
	w.buf.Write(b)
}

type recordReader struct {
	data []byte
	pos  int
}

func newRecordReader(data []byte) *recordReader {
	return &recordReader{data: data}
}

func (r *recordReader) require(n int) error {
	if len(r.data)-r.pos < n {
		return fmt.Errorf("entitystore: record truncated: need %d more bytes, have %d", n, len(r.data)-r.pos)
	}
	return nil
}

func (r *recordReader) ReadInt32() (int32, error) {
	if err := r.require(4); err != nil {
		return 0, err
	}
	v := int32(binary.LittleEndian.Uint32(r.data[r.pos : r.pos+4]))
	r.pos += 4
	return v, nil
}

func (r *recordReader) ReadInt64() (int64, error) {
	if err := r.require(8); err != nil {
		return 0, err
	}
	v := int64(binary.LittleEndian.Uint64(r.data[r.pos : r.pos+8]))
	r.pos += 8
	return v, nil
}

func (r *recordReader) ReadUint64() (uint64, error) {
	if err := r.require(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.data[r.pos : r.pos+8])
	r.pos += 8
	return v, nil
}

func (r *recordReader) ReadString() (string, error) {
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

func (r *recordReader) ReadBytes() ([]byte, error) {
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
