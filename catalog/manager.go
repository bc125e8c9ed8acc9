package catalog

import (
	"fmt"

	"github.com/phil-mansfield/gohalo"
)

// IDMap relabels particles read from catalogs with arbitrary ids so that
// their ids run densely from zero, which is what group id arrays are
// indexed by. It remembers each particle's original id.
type IDMap struct {
	dense map[int64]int64
	orig  []int64
}

func NewIDMap() *IDMap {
	return &IDMap{dense: make(map[int64]int64)}
}

// Add relabels ps in place, continuing from the particles already added.
func (m *IDMap) Add(ps []gohalo.Particle) error {
	for i := range ps {
		id := ps[i].ID
		if _, ok := m.dense[id]; ok {
			return fmt.Errorf("Particle id %d appears more than once.", id)
		}
		m.dense[id] = int64(len(m.orig))
		m.orig = append(m.orig, id)
		ps[i].ID = m.dense[id]
	}
	return nil
}

// Dense returns the dense id of the particle with original id id.
func (m *IDMap) Dense(id int64) (int64, bool) {
	d, ok := m.dense[id]
	return d, ok
}

// Original returns the original id of the particle with dense id d. A nil
// IDMap is the identity.
func (m *IDMap) Original(d int64) int64 {
	if m == nil {
		return d
	}
	return m.orig[d]
}

// Len returns the number of particles added.
func (m *IDMap) Len() int { return len(m.orig) }
