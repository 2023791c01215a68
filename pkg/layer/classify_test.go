package layer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func group(id, name string, children ...*Node) *Node {
	return &Node{ID: id, Name: name, Kind: KindGroup, Children: children}
}

func pixel(id, name string) *Node {
	return &Node{ID: id, Name: name, Kind: KindPixel}
}

func names(nodes []*Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Name)
	}
	return out
}

func TestFindLayers(t *testing.T) {
	tests := []struct {
		name  string
		roots []*Node
		want  []string
	}{
		{
			name:  "empty document",
			roots: nil,
			want:  []string{},
		},
		{
			name: "nested match inside matching parent",
			roots: []*Node{
				group("1", "Bg"),
				group("2", "Hero_SWIPE", group("3", "Inner_MERGE")),
			},
			want: []string{"Inner_MERGE", "Hero_SWIPE"},
		},
		{
			name: "match inside non-matching parent",
			roots: []*Node{
				group("1", "Wrapper", group("2", "Deep", group("3", "Card_MERGE"))),
			},
			want: []string{"Card_MERGE"},
		},
		{
			name: "pixel layers never match",
			roots: []*Node{
				pixel("1", "Photo_SWIPE"),
				{ID: "2", Name: "Caption_MERGE", Kind: KindText},
			},
			want: []string{},
		},
		{
			name: "suffix must be trailing and case-sensitive",
			roots: []*Node{
				group("1", "Hero_SWIPE copy"),
				group("2", "hero_swipe"),
				group("3", "SWIPE"),
				group("4", "Hero_Merge"),
			},
			want: []string{},
		},
		{
			name: "siblings at several depths",
			roots: []*Node{
				group("1", "A_MERGE", pixel("2", "px"), group("3", "B_SWIPE")),
				group("4", "C_SWIPE"),
			},
			want: []string{"B_SWIPE", "A_MERGE", "C_SWIPE"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindLayers(tt.roots)
			assert.ElementsMatch(t, tt.want, names(got))
		})
	}
}

func TestFindLayers_ChildrenBeforeParent(t *testing.T) {
	roots := []*Node{group("2", "Hero_SWIPE", group("3", "Inner_MERGE"))}

	got := FindLayers(roots)
	require.Len(t, got, 2)
	assert.Equal(t, "3", got[0].ID)
	assert.Equal(t, "2", got[1].ID)
}

func TestFindLayers_NoDuplicates(t *testing.T) {
	roots := []*Node{
		group("1", "A_SWIPE", group("2", "B_MERGE", group("3", "C_SWIPE"))),
	}

	got := FindLayers(roots)
	seen := make(map[string]bool)
	for _, n := range got {
		assert.False(t, seen[n.ID], "node %s returned twice", n.ID)
		seen[n.ID] = true
	}
	assert.Len(t, got, 3)
}

func TestStripSuffixes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hero_SWIPE", "Hero"},
		{"Card_MERGE", "Card"},
		{"Background", "Background"},
		{"", ""},
		{"A_SWIPE_MERGE", "A"},
		{"A_SWIPE_SWIPE", "A_SWIPE"},
		{"x_merge", "x_merge"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, StripSuffixes(tt.in))
		})
	}
}

func TestMatchSuffix(t *testing.T) {
	assert.Equal(t, SWIPE, MatchSuffix("Hero_SWIPE"))
	assert.Equal(t, MERGE, MatchSuffix("Hero_MERGE"))
	assert.Equal(t, "", MatchSuffix("Hero"))
}

func TestFind(t *testing.T) {
	roots := []*Node{group("1", "A", group("2", "B", pixel("3", "C")))}

	require.NotNil(t, Find(roots, "3"))
	assert.Equal(t, "C", Find(roots, "3").Name)
	assert.Nil(t, Find(roots, "9"))
}

func TestBounds(t *testing.T) {
	b := Bounds{Left: 2, Top: 3, Right: 10, Bottom: 7}
	assert.Equal(t, 8, b.Width())
	assert.Equal(t, 4, b.Height())
	assert.True(t, b.Within(10, 7))
	assert.False(t, b.Within(9, 7))
	assert.False(t, Bounds{}.Within(10, 10))

	u := b.Union(Bounds{Left: 0, Top: 5, Right: 4, Bottom: 12})
	assert.Equal(t, Bounds{Left: 0, Top: 3, Right: 10, Bottom: 12}, u)
	assert.Equal(t, b, b.Union(Bounds{}))
	assert.Equal(t, b, Bounds{}.Union(b))
}
