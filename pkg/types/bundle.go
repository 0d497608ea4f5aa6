package types

import "time"

// Part is one whole or sliced piece of a Record's content placed into a
// Bundle. Index/Total are 1-based; a record that fit whole has Index=1,
// Total=1.
type Part struct {
	Path          string
	Language      string
	Digest        string
	ByteSize      int64
	LastModified  int64
	Summary       string
	Content       string
	Index         int
	Total         int
	TokenEstimate int
}

// Split reports whether this part is one slice of a larger record.
func (p *Part) Split() bool { return p.Total > 1 }

// Bundle is one size-bounded output document produced by the chunk packer.
// Totals are derived from the parts rather than tracked separately so they
// can never drift.
type Bundle struct {
	Index       int
	GeneratedAt time.Time
	Parts       []Part
}

// FileCount returns the number of distinct source files represented.
func (b *Bundle) FileCount() int {
	seen := make(map[string]struct{}, len(b.Parts))
	for i := range b.Parts {
		seen[b.Parts[i].Path] = struct{}{}
	}
	return len(seen)
}

// TokenEstimate returns the summed token estimate across parts.
func (b *Bundle) TokenEstimate() int {
	total := 0
	for i := range b.Parts {
		total += b.Parts[i].TokenEstimate
	}
	return total
}
