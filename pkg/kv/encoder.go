package kv

import (
	"github.com/DataDog/zstd"
	"github.com/kelindar/binary"
)

// KVEdge is the compact road-segment record stored per h3 cell. CenterLoc is
// the segment's representative point [lat, lon]; the IDs reference the road
// graph's dense representation.
type KVEdge struct {
	EdgeID     int32
	FromNodeID int32
	ToNodeID   int32
	CenterLoc  [2]float64
}

func encodeEdges(sw []KVEdge) ([]byte, error) {
	bb, err := binary.Marshal(sw)
	if err != nil {
		return nil, err
	}
	return compress(bb)
}

func loadEdges(bbCompressed []byte) ([]KVEdge, error) {
	bb, err := decompress(bbCompressed)
	if err != nil {
		return nil, err
	}

	var sw []KVEdge
	if err := binary.Unmarshal(bb, &sw); err != nil {
		return nil, err
	}
	return sw, nil
}

func compress(bb []byte) ([]byte, error) {
	var bbCompressed []byte
	bbCompressed, err := zstd.Compress(bbCompressed, bb)
	if err != nil {
		return []byte{}, err
	}
	return bbCompressed, nil
}

func decompress(bbCompressed []byte) ([]byte, error) {
	var bb []byte
	bb, err := zstd.Decompress(bb, bbCompressed)
	if err != nil {
		return []byte{}, err
	}
	return bb, nil
}
