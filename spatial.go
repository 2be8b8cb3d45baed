package main

import "math"

// bucketKey identifies one square bucket of the spatial index.
type bucketKey struct {
	X, Y int
}

// SpatialGrid is a uniform-bucket index over organism positions supporting
// radius queries and incremental move updates. Buckets accumulate small
// inconsistencies when positions change outside UpdatePosition; the world
// corrects those with a periodic full rebuild.
type SpatialGrid struct {
	cellSize float64
	buckets  map[bucketKey][]*Organism

	// inconsistencies counts bucket lookups that disagreed with the
	// authoritative organism position since the last rebuild.
	inconsistencies int
}

// NewSpatialGrid creates an index with square buckets of the given side.
func NewSpatialGrid(cellSize float64) *SpatialGrid {
	if cellSize <= 0 {
		cellSize = 50
	}
	return &SpatialGrid{
		cellSize: cellSize,
		buckets:  make(map[bucketKey][]*Organism),
	}
}

func (sg *SpatialGrid) keyFor(pos Vec2) bucketKey {
	return bucketKey{
		X: int(math.Floor(pos.X / sg.cellSize)),
		Y: int(math.Floor(pos.Y / sg.cellSize)),
	}
}

// Add inserts an organism at its current position.
func (sg *SpatialGrid) Add(o *Organism) {
	key := sg.keyFor(o.Position)
	sg.buckets[key] = append(sg.buckets[key], o)
	o.bucket = key
}

// Remove deletes an organism from its tracked bucket, falling back to a full
// scan if the tracked bucket is stale.
func (sg *SpatialGrid) Remove(o *Organism) {
	if sg.removeFromBucket(o, o.bucket) {
		return
	}
	for key := range sg.buckets {
		if sg.removeFromBucket(o, key) {
			sg.inconsistencies++
			return
		}
	}
}

func (sg *SpatialGrid) removeFromBucket(o *Organism, key bucketKey) bool {
	bucket := sg.buckets[key]
	for i, other := range bucket {
		if other == o {
			bucket[i] = bucket[len(bucket)-1]
			sg.buckets[key] = bucket[:len(bucket)-1]
			if len(sg.buckets[key]) == 0 {
				delete(sg.buckets, key)
			}
			return true
		}
	}
	return false
}

// UpdatePosition moves an organism to the bucket matching its current
// position. It is a no-op when the bucket did not change.
func (sg *SpatialGrid) UpdatePosition(o *Organism) {
	key := sg.keyFor(o.Position)
	if key == o.bucket {
		return
	}
	sg.Remove(o)
	sg.buckets[key] = append(sg.buckets[key], o)
	o.bucket = key
}

// QueryRadius returns all organisms within radius of pos. A zero radius
// returns organisms exactly at pos.
func (sg *SpatialGrid) QueryRadius(pos Vec2, radius float64) []*Organism {
	if radius < 0 {
		radius = 0
	}
	minKey := sg.keyFor(Vec2{X: pos.X - radius, Y: pos.Y - radius})
	maxKey := sg.keyFor(Vec2{X: pos.X + radius, Y: pos.Y + radius})

	var result []*Organism
	r2 := radius * radius
	for bx := minKey.X; bx <= maxKey.X; bx++ {
		for by := minKey.Y; by <= maxKey.Y; by++ {
			for _, o := range sg.buckets[bucketKey{X: bx, Y: by}] {
				dx := o.Position.X - pos.X
				dy := o.Position.Y - pos.Y
				if dx*dx+dy*dy <= r2 {
					result = append(result, o)
				}
			}
		}
	}
	return result
}

// Rebuild reconstructs every bucket from the authoritative organism list,
// discarding accumulated inconsistencies. It returns the number of
// corrections made since the previous rebuild.
func (sg *SpatialGrid) Rebuild(organisms []*Organism) int {
	corrected := sg.inconsistencies
	sg.inconsistencies = 0
	sg.buckets = make(map[bucketKey][]*Organism, len(sg.buckets))
	for _, o := range organisms {
		sg.Add(o)
	}
	return corrected
}

// Len returns the number of indexed organisms.
func (sg *SpatialGrid) Len() int {
	total := 0
	for _, bucket := range sg.buckets {
		total += len(bucket)
	}
	return total
}
