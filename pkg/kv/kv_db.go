package kv

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/dgraph-io/badger/v4"
	"github.com/uber/h3-go/v4"
)

const (
	// h3 resolution 9 cells average ~0.1 km2, a good match for the density
	// of street segments in a city network
	h3Resolution = 9

	batchSize = 1000

	// widest grid disk searched before giving up on a query point
	maxGridDiskLevel = 10
)

var (
	ErrEdgesNotFound = errors.New("edges not found")
)

// KVDB indexes road segments by their h3 cell so that all segments around a
// query point come back in one ranged lookup. Built once after the road
// graph loads; read-only afterwards.
type KVDB struct {
	db *badger.DB
}

func NewKVDB(db *badger.DB) *KVDB {
	return &KVDB{db}
}

// BuildH3IndexedEdges groups the given segments by h3 cell and persists each
// cell's bundle as one compressed value.
func (k *KVDB) BuildH3IndexedEdges(ctx context.Context, edges []KVEdge) error {
	log.Printf("creating & saving h3 indexed street segments to key-value db...")

	kvMap := make(map[string][]KVEdge)
	for i := range edges {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled")
		default:
		}

		roadSegment := edges[i]
		h3LatLon := h3.NewLatLng(roadSegment.CenterLoc[0], roadSegment.CenterLoc[1])
		cell := h3.LatLngToCell(h3LatLon, h3Resolution)

		kvMap[cell.String()] = append(kvMap[cell.String()], roadSegment)
	}

	batches := make([]batchData, 0, batchSize)
	for key, value := range kvMap {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled")
		default:
		}

		batches = append(batches, batchData{
			key:   key,
			value: value,
		})
		if len(batches) == batchSize {
			if err := k.saveBatchEdges(ctx, batches); err != nil {
				return err
			}
			batches = make([]batchData, 0, batchSize)
		}
	}

	if len(batches) > 0 {
		if err := k.saveBatchEdges(ctx, batches); err != nil {
			return err
		}
	}

	log.Printf("creating & saving h3 indexed street segments done...")
	return nil
}

type batchData struct {
	key   string
	value []KVEdge
}

func (k *KVDB) saveBatchEdges(ctx context.Context, batchData []batchData) error {
	batch := k.db.NewWriteBatch()
	defer batch.Cancel()

	for _, data := range batchData {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled")
		default:
		}

		val, err := encodeEdges(data.value)
		if err != nil {
			return err
		}

		if err := batch.Set([]byte(data.key), val); err != nil {
			return err
		}
	}

	if err := batch.Flush(); err != nil {
		log.Printf("error saving edges: %v", err)
		return err
	}
	return nil
}

func (k *KVDB) get(key []byte) ([]byte, error) {
	var val []byte
	err := k.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		val, err = item.ValueCopy(nil)
		return err
	})
	return val, err
}

func (k *KVDB) cellEdges(cell h3.Cell) ([]KVEdge, error) {
	val, err := k.get([]byte(cell.String()))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return loadEdges(val)
}

// GetNearestStreetsFromPointCoord returns every indexed segment in the query
// point's h3 cell, widening the grid disk ring by ring while nothing is
// found. Fails with ErrEdgesNotFound when even the widest disk is empty.
func (k *KVDB) GetNearestStreetsFromPointCoord(lat, lon float64) ([]KVEdge, error) {
	home := h3.NewLatLng(lat, lon)
	cell := h3.LatLngToCell(home, h3Resolution)

	edges, err := k.cellEdges(cell)
	if err != nil {
		return []KVEdge{}, err
	}

	for lev := 1; lev <= maxGridDiskLevel && len(edges) == 0; lev++ {
		for _, currCell := range h3.GridDisk(cell, lev) {
			if currCell == cell {
				continue
			}
			streets, err := k.cellEdges(currCell)
			if err != nil {
				return []KVEdge{}, err
			}
			edges = append(edges, streets...)
		}
	}

	if len(edges) == 0 {
		return []KVEdge{}, ErrEdgesNotFound
	}
	return edges, nil
}

func (k *KVDB) Close() {
	k.db.Close()
}
