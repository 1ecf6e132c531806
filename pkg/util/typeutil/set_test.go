package typeutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	s := NewSet(1, 2, 3)
	assert.True(t, s.Contain(1, 3))
	assert.False(t, s.Contain(1, 4))
	assert.Equal(t, 3, s.Len())
	assert.ElementsMatch(t, []int{1, 2, 3}, s.Collect())
	assert.True(t, s.Equal(NewSet(3, 2, 1)))
	assert.False(t, s.Equal(NewSet(1, 2)))
	assert.False(t, s.Equal(NewSet(1, 2, 4)))
}

func TestOrderedSet(t *testing.T) {
	s := NewOrderedSet("GET", "GET", "POST")
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"GET", "POST"}, s.Collect())

	s.Insert("PUT", "GET")
	assert.Equal(t, []string{"GET", "POST", "PUT"}, s.Collect())
	assert.True(t, s.Contain("PUT"))

	var seen []string
	s.Range(func(e string) bool {
		seen = append(seen, e)
		return e != "POST"
	})
	assert.Equal(t, []string{"GET", "POST"}, seen)

	collected := s.Collect()
	collected[0] = "DELETE"
	assert.Equal(t, "GET", s.Collect()[0])
}

func TestOrderedSetEqual(t *testing.T) {
	a := NewOrderedSet(1, 2)
	b := NewOrderedSet(2, 1)
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(NewOrderedSet(1)))
	assert.False(t, a.Equal(nil))

	var nilSet *OrderedSet[int]
	assert.True(t, nilSet.Equal(nil))

	c := a.Clone()
	c.Insert(3)
	assert.Equal(t, 2, a.Len())
	assert.Equal(t, []int{1, 2, 3}, c.Collect())
}
