package nucl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReverseComplement(t *testing.T) {
	assert.Equal(t, "TTGCA", ReverseComplement("TGCAA"))
	assert.Equal(t, "acgN", ReverseComplement("Ncgt"))
	assert.Equal(t, "", ReverseComplement(""))
}

func TestReverseComplementKeepsUnknownBytes(t *testing.T) {
	assert.Equal(t, "T-A", ReverseComplement("T-A"))
}

func TestReverseComplementInvolution(t *testing.T) {
	for _, s := range []string{"ACGTNacgtn", "GATCATGTCGGAACTGTTGCTTGTCCGACTGATC", "aaaCCCgggTTTnnN"} {
		assert.Equal(t, s, ReverseComplement(ReverseComplement(s)), s)
	}
}

func TestReverseComplementBytesDoesNotMutate(t *testing.T) {
	in := []byte("AACG")
	out := ReverseComplementBytes(in)
	assert.Equal(t, "AACG", string(in))
	assert.Equal(t, "CGTT", string(out))
}
