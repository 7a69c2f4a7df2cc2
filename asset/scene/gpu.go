package scene

import (
	"bytes"
	"encoding/binary"
)

// Sizes (in bytes) of the records produced by the buffer encoders.
const (
	BvhNodeSize  = 32
	TriangleSize = 48
)

// Encode the BVH node list as a little-endian buffer suitable for a GPU
// storage buffer.
func (sc *Scene) NodeBuffer() []byte {
	return encodeBuffer(sc.BvhNodeList, len(sc.BvhNodeList)*BvhNodeSize)
}

// Encode the primitive index list as a little-endian uint32 buffer.
func (sc *Scene) PrimitiveIndexBuffer() []byte {
	return encodeBuffer(sc.PrimitiveIndexList, len(sc.PrimitiveIndexList)*4)
}

// Encode the triangle list as a little-endian buffer.
func (sc *Scene) TriangleBuffer() []byte {
	return encodeBuffer(sc.TriangleList, len(sc.TriangleList)*TriangleSize)
}

func encodeBuffer(data interface{}, sizeHint int) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, sizeHint))

	// binary.Write only fails for non fixed-size data which would be a
	// programming error for the record types defined in this package.
	if err := binary.Write(buf, binary.LittleEndian, data); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
