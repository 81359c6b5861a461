// Package perception defines what the mover learns after each move and the
// channel it learns it through.
package perception

import (
	"fmt"

	"keymaker/pkg/engine/protocol"
	"keymaker/pkg/engine/world"
)

// Kind is the search-relevant class of a perceived entity
type Kind int

// Kind constants
const (
	Hazard Kind = iota
	Target
	Marker
)

// Wire tags for perceived entities
const (
	TagKeymaker   byte = 'K'
	TagKey        byte = 'B'
	TagPerception byte = 'P'
	TagAgent      byte = 'A'
	TagSentinel   byte = 'S'
)

// String returns the string representation of a kind
func (k Kind) String() string {
	switch k {
	case Hazard:
		return "hazard"
	case Target:
		return "target"
	case Marker:
		return "marker"
	default:
		return "unknown"
	}
}

// KindOf maps a wire tag to its kind. P, A and S are all hazards.
func KindOf(tag byte) (Kind, bool) {
	switch tag {
	case TagKeymaker:
		return Target, true
	case TagKey:
		return Marker, true
	case TagPerception, TagAgent, TagSentinel:
		return Hazard, true
	default:
		return 0, false
	}
}

// Report is one entity seen near the mover
type Report struct {
	Cell world.Cell
	Kind Kind
	Tag  byte
}

// Batch is everything reported in response to a single move
type Batch []Report

// FromRecords converts wire records into a batch.
// An unknown tag is malformed input.
func FromRecords(records []protocol.Record) (Batch, error) {
	batch := make(Batch, 0, len(records))
	for _, rec := range records {
		kind, ok := KindOf(rec.Tag)
		if !ok {
			return nil, fmt.Errorf("%w: unknown tag %q at %v", protocol.ErrMalformedInput, rec.Tag, rec.Cell)
		}
		batch = append(batch, Report{Cell: rec.Cell, Kind: kind, Tag: rec.Tag})
	}
	return batch, nil
}

// Records converts a batch back into wire records
func (b Batch) Records() []protocol.Record {
	records := make([]protocol.Record, 0, len(b))
	for _, r := range b {
		records = append(records, protocol.Record{Cell: r.Cell, Tag: r.Tag})
	}
	return records
}
