package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string
	Tags  map[string]string
	Items []string
}

func TestFingerprintDeterministic(t *testing.T) {
	a := sample{Name: "a", Tags: map[string]string{"x": "1", "y": "2", "z": "3"}, Items: []string{"b", "c"}}
	b := sample{Name: "a", Tags: map[string]string{"z": "3", "y": "2", "x": "1"}, Items: []string{"b", "c"}}

	fa, err := Fingerprint(a)
	require.NoError(t, err)
	fb, err := Fingerprint(b)
	require.NoError(t, err)
	assert.Equal(t, fa, fb)
	assert.Len(t, fa.String(), 2*DigestSize)

	b.Items = []string{"c", "b"}
	fc, err := Fingerprint(b)
	require.NoError(t, err)
	assert.NotEqual(t, fa, fc)
}

func TestMarshalUnmarshal(t *testing.T) {
	in := sample{Name: "n", Items: []string{"1"}}
	data, err := Marshal(in)
	require.NoError(t, err)

	var out sample
	require.NoError(t, Unmarshal(data, &out))
	assert.Equal(t, in.Name, out.Name)
	assert.Equal(t, in.Items, out.Items)
}

func TestCompress(t *testing.T) {
	data := []byte("build/build/build/build/build/build/build/build")
	decompressed, err := Decompress(Compress(data))
	require.NoError(t, err)
	assert.Equal(t, data, decompressed)

	_, err = Decompress([]byte("not zstd"))
	assert.Error(t, err)
}

func TestSum(t *testing.T) {
	assert.Equal(t, Sum([]byte("x")), Sum([]byte("x")))
	assert.NotEqual(t, Sum([]byte("x")), Sum([]byte("y")))
}
