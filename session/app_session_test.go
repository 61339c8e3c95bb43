package session

import (
	"errors"
	"fmt"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestIsMissing(t *testing.T) {
	assert.True(t, IsMissing(redis.Nil))
	assert.True(t, IsMissing(fmt.Errorf("get session: %w", redis.Nil)))

	// infrastructure failures are not a missing session
	assert.False(t, IsMissing(errors.New("connection refused")))
	assert.False(t, IsMissing(nil))
}
