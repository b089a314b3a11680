package trace

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTxtRoundTrip(t *testing.T) {
	assert := assert.New(t)

	tr := New("theta", 3)
	tr.Tally([]float64{1, -2.5, 3e-17})
	tr.Tally([]float64{math.Pi, 0, -1e21})
	tr.Tally([]float64{0.1, 0.2, 0.30000000000000004})

	dir := t.TempDir()
	assert.NoError(WriteTxt(tr, dir, 0))

	path := filepath.Join(dir, "Chain_0", "theta.txt")
	got, err := ReadTxt(path)
	assert.NoError(err)
	assert.Equal("theta", got.Name())
	assert.Equal(3, got.Dim())
	assert.Equal(3, got.Len())
	for i := 0; i < tr.Len(); i++ {
		assert.Equal(tr.Sample(i), got.Sample(i))
	}
}

func TestTxtScalarShape(t *testing.T) {
	assert := assert.New(t)

	tr := New("mu", 1)
	tr.Tally([]float64{1})
	tr.Tally([]float64{2})

	dir := t.TempDir()
	assert.NoError(WriteTxt(tr, dir, 2))

	path := filepath.Join(dir, "Chain_2", "mu.txt")
	raw, err := os.ReadFile(path)
	assert.NoError(err)
	content := string(raw)
	assert.True(strings.HasPrefix(content, "# Variable: mu\n"))
	assert.Contains(content, "# Sample shape: (2,)\n")

	got, err := ReadTxt(path)
	assert.NoError(err)
	assert.Equal(1, got.Dim())
	assert.Equal(2, got.Len())
}

func TestTxtErrors(t *testing.T) {
	assert := assert.New(t)

	_, err := ReadTxt(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(err)

	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.txt")
	assert.NoError(os.WriteFile(empty, []byte("# Variable: x\n"), 0666))
	_, err = ReadTxt(empty)
	assert.Error(err)

	ragged := filepath.Join(dir, "ragged.txt")
	assert.NoError(os.WriteFile(ragged, []byte("1,2\n3\n"), 0666))
	_, err = ReadTxt(ragged)
	assert.Error(err)

	garbage := filepath.Join(dir, "garbage.txt")
	assert.NoError(os.WriteFile(garbage, []byte("1,two\n"), 0666))
	_, err = ReadTxt(garbage)
	assert.Error(err)
}
