package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKnownCollection(t *testing.T) {
	for _, c := range []string{CollectionErrands, CollectionExpenses, CollectionDayOpenings} {
		assert.True(t, KnownCollection(c), c)
	}
	assert.False(t, KnownCollection(""))
	assert.False(t, KnownCollection("mandados"))
}
