package vamana

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCrossListAddDedupesAndRejectsSelfLoop(t *testing.T) {
	cl := NewCrossList()
	cl.Add(1, 2)
	cl.Add(1, 2)
	cl.Add(1, 1)
	cl.Add(1, 3)

	neigh := cl.Neighbors(1)
	assert.ElementsMatch(t, []uint32{2, 3}, neigh)
}

func TestCrossListAll(t *testing.T) {
	cl := NewCrossList()
	cl.Add(1, 2)
	cl.Add(2, 3)

	all := cl.All()
	assert.ElementsMatch(t, []uint32{2}, all[1])
	assert.ElementsMatch(t, []uint32{3}, all[2])
}
