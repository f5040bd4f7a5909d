package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserSetIntersect(t *testing.T) {
	testCases := []struct {
		name string
		a    UserSet
		b    UserSet
		want []uint64
	}{
		{
			name: "overlap",
			a:    NewUserSet(1, 2, 3),
			b:    NewUserSet(2, 3, 4),
			want: []uint64{2, 3},
		},
		{
			name: "disjoint",
			a:    NewUserSet(1, 2),
			b:    NewUserSet(3, 4),
			want: []uint64{},
		},
		{
			name: "empty left",
			a:    NewUserSet(),
			b:    NewUserSet(1, 2),
			want: []uint64{},
		},
		{
			name: "identical",
			a:    NewUserSet(5, 6),
			b:    NewUserSet(5, 6),
			want: []uint64{5, 6},
		},
		{
			name: "larger right side",
			a:    NewUserSet(7),
			b:    NewUserSet(1, 2, 3, 4, 5, 6, 7),
			want: []uint64{7},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.a.Intersect(tc.b)
			assert.ElementsMatch(t, tc.want, got.IDs())

			// Intersection is commutative.
			assert.ElementsMatch(t, tc.want, tc.b.Intersect(tc.a).IDs())
		})
	}
}

func TestUserSetAddContains(t *testing.T) {
	s := NewUserSet(1)

	assert.True(t, s.Contains(1))
	assert.False(t, s.Contains(2))

	s.Add(2)
	assert.True(t, s.Contains(2))

	// Adding an existing ID is a no-op.
	s.Add(1)
	assert.Len(t, s, 2)
}

func TestParseOperator(t *testing.T) {
	for op := range allOperators {
		got, err := ParseOperator(string(op))
		assert.NoError(t, err)
		assert.Equal(t, op, got)
	}

	_, err := ParseOperator("~=")
	assert.ErrorIs(t, err, ErrUnsupportedOperator)

	_, err = ParseOperator("")
	assert.ErrorIs(t, err, ErrUnsupportedOperator)
}
