package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterminism(tst *testing.T) {
	a := New(7)
	b := New(7)
	for i := 0; i < 100; i++ {
		require.Equal(tst, a.Float64(), b.Float64())
	}
	for i := 0; i < 100; i++ {
		require.Equal(tst, a.NormFloat64(), b.NormFloat64())
	}
}

func TestSeedsDiffer(tst *testing.T) {
	a := New(7)
	b := New(8)
	same := 0
	for i := 0; i < 20; i++ {
		if a.Float64() == b.Float64() {
			same++
		}
	}
	assert.Less(tst, same, 20)
}

func TestUniforms(tst *testing.T) {
	g := New(1)
	u := g.Uniforms(1000)
	require.Len(tst, u, 1000)
	for _, v := range u {
		assert.GreaterOrEqual(tst, v, 0.0)
		assert.Less(tst, v, 1.0)
	}
	assert.Equal(tst, int64(1), g.Seed())
}
