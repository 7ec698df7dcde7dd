package helm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeLaterMapsWin(t *testing.T) {
	base := Values{"replicas": 1, "hostname": "a.example.com"}
	override := Values{"replicas": 3}

	merged := Merge(base, override)

	assert.Equal(t, 3, merged["replicas"])
	assert.Equal(t, "a.example.com", merged["hostname"])
	// Inputs are not mutated.
	assert.Equal(t, 1, base["replicas"])
}
