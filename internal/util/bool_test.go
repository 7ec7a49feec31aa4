package util_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github/smartkit/relay/internal/util"
)

func TestTrueIfNil(t *testing.T) {
	b := true
	assert.True(t, util.TrueIfNil(&b))
	b = false
	assert.False(t, util.TrueIfNil(&b))
	assert.True(t, util.TrueIfNil(nil))
}
