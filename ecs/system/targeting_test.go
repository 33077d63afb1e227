package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/combatcore/common"
	"github.com/milk9111/combatcore/ecs"
	"github.com/milk9111/combatcore/ecs/component"
)

// fakeCollision answers overlap queries from a fixed list and raycasts from
// a per-candidate table.
type fakeCollision struct {
	candidates []Candidate
	hits       map[ecs.Entity]RayHit
	rays       int
}

func (f *fakeCollision) OverlapBox(_, _ common.Vec3, _ uint32) []Candidate {
	return f.candidates
}

func (f *fakeCollision) Raycast(_, to common.Vec3, _ uint32, _ ecs.Entity) (RayHit, bool) {
	f.rays++
	for _, c := range f.candidates {
		if c.Position == to {
			hit, ok := f.hits[c.Entity]
			return hit, ok
		}
	}
	return RayHit{}, false
}

func TestFindTargetPrefersVisibleOverNearest(t *testing.T) {
	const (
		self  ecs.Entity = 1
		near  ecs.Entity = 2
		mid   ecs.Entity = 3
		far   ecs.Entity = 4
		wallE ecs.Entity = 9
	)
	fc := &fakeCollision{
		candidates: []Candidate{
			{Entity: near, Position: common.V(5, 0, 0)},
			{Entity: mid, Position: common.V(0, 0, 3)},
			{Entity: far, Position: common.V(-8, 0, 0)},
		},
		hits: map[ecs.Entity]RayHit{
			near: {Entity: wallE, Category: component.LayerGeometry, Distance: 2},
			mid:  {Entity: mid, Category: component.LayerPlayer, Distance: 3},
			far:  {Entity: wallE, Category: component.LayerGeometry, Distance: 4},
		},
	}

	// Candidate distances are 5, 3 and 8, but only the distance-3 one is
	// unobstructed, so it wins even though the raw nearest collider differs.
	got, ok := FindTarget(fc, self, common.Vec3{}, common.V(10, 1, 10), component.LayerPlayer, nil)
	require.True(t, ok)
	assert.Equal(t, uint64(mid), got.Entity)
	assert.InDelta(t, 3, got.Distance, 1e-9)
	assert.Equal(t, 3, fc.rays)
}

func TestFindTargetCases(t *testing.T) {
	cases := []struct {
		name   string
		fc     *fakeCollision
		accept func(ecs.Entity) bool
		want   ecs.Entity
		found  bool
	}{
		{
			name:  "no_candidates_clears",
			fc:    &fakeCollision{},
			found: false,
		},
		{
			name: "nearest_visible_wins",
			fc: &fakeCollision{
				candidates: []Candidate{{Entity: 2, Position: common.V(6, 0, 0)}, {Entity: 3, Position: common.V(2, 0, 0)}},
				hits: map[ecs.Entity]RayHit{
					2: {Entity: 2, Category: component.LayerEnemy, Distance: 5.5},
					3: {Entity: 3, Category: component.LayerEnemy, Distance: 1.5},
				},
			},
			want:  3,
			found: true,
		},
		{
			name: "tie_keeps_first",
			fc: &fakeCollision{
				candidates: []Candidate{{Entity: 5, Position: common.V(2, 0, 0)}, {Entity: 6, Position: common.V(-2, 0, 0)}},
				hits: map[ecs.Entity]RayHit{
					5: {Entity: 5, Category: component.LayerEnemy, Distance: 1.5},
					6: {Entity: 6, Category: component.LayerEnemy, Distance: 1.5},
				},
			},
			want:  5,
			found: true,
		},
		{
			name: "wrong_category_rejected",
			fc: &fakeCollision{
				candidates: []Candidate{{Entity: 2, Position: common.V(1, 0, 0)}},
				hits:       map[ecs.Entity]RayHit{2: {Entity: 2, Category: component.LayerGeometry, Distance: 1}},
			},
			found: false,
		},
		{
			name: "vetoed_candidate_skipped",
			fc: &fakeCollision{
				candidates: []Candidate{{Entity: 2, Position: common.V(1, 0, 0)}, {Entity: 3, Position: common.V(4, 0, 0)}},
				hits: map[ecs.Entity]RayHit{
					2: {Entity: 2, Category: component.LayerEnemy, Distance: 0.5},
					3: {Entity: 3, Category: component.LayerEnemy, Distance: 3.5},
				},
			},
			accept: func(e ecs.Entity) bool { return e != 2 },
			want:   3,
			found:  true,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := FindTarget(c.fc, 1, common.Vec3{}, common.V(10, 1, 10), component.LayerEnemy, c.accept)
			assert.Equal(t, c.found, ok)
			if c.found {
				assert.Equal(t, uint64(c.want), got.Entity)
			} else {
				assert.False(t, got.Valid())
			}
		})
	}
}
