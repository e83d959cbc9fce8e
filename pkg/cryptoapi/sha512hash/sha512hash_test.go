package sha512hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuffer_KnownVector(t *testing.T) {
	got := Buffer([]byte(`{"email":"a@b"}`))
	assert.Len(t, got, 128)
	assert.Equal(t, strings.ToLower(got), got)
	assert.Equal(t, "0dc115574d8a598feaca07d831a46de4e70888c5965c76d59d0fa556540bbd8e0c5269bb76f90c8e7362d0245f3df98a264d16ce6dfa46ee7a56ec5831bac704", got)
}

func TestStream_MatchesBufferAndResetsPosition(t *testing.T) {
	content := []byte(`{"email":"a@b"}`)
	expected := Buffer(content)

	r := strings.NewReader(string(content))
	got, err := Stream(r)
	assert.NoError(t, err)
	assert.Equal(t, expected, got)

	pos, err := r.Seek(0, 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), pos)
}
