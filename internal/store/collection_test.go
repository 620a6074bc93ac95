package store

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestCollection_Basics(t *testing.T) {
	c := NewCollection([]int{1, 2, 3})

	c.Append(4)
	assert.Equal(t, 4, c.Len())

	n := c.Update(func(v int) bool { return v%2 == 0 }, func(v *int) { *v *= 10 })
	assert.Equal(t, 2, n)
	assert.Equal(t, []int{1, 20, 3, 40}, c.All())

	v, ok := c.Find(func(v int) bool { return v > 10 })
	assert.True(t, ok)
	assert.Equal(t, 20, v)

	_, ok = c.Find(func(v int) bool { return v > 100 })
	assert.False(t, ok)

	assert.Equal(t, []int{1, 3}, c.Filter(func(v int) bool { return v < 10 }))
}

func TestCollection_AllIsACopy(t *testing.T) {
	src := []string{"a"}
	c := NewCollection(src)
	src[0] = "changed"

	out := c.All()
	out[0] = "x"
	assert.Equal(t, []string{"a"}, c.All())
}

func TestCollection_TrimFrontKeepsNewestInOrder(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 200
	properties := gopter.NewProperties(params)

	properties.Property("after trimming, len <= cap and the tail is preserved", prop.ForAll(
		func(items []int, limit int) bool {
			c := NewCollection(items)
			dropped := c.TrimFront(limit)
			got := c.All()

			if len(got) > limit {
				return false
			}
			if dropped != len(items)-len(got) {
				return false
			}
			tail := items[len(items)-len(got):]
			for i := range got {
				if got[i] != tail[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Int()),
		gen.IntRange(1, 50),
	))

	properties.TestingRun(t)
}
