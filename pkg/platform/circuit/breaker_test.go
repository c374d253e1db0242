package circuit

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errDown = errors.New("down")

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	b := New("kafka", WithFailureThreshold(3), WithSuccessThreshold(2))

	assert.Equal(t, NoChange, b.Record(errDown))
	assert.Equal(t, NoChange, b.Record(errDown))
	assert.Equal(t, NoChange, b.Record(nil), "a success resets the failure run")
	assert.False(t, b.IsOpen())

	b.Record(errDown)
	b.Record(errDown)
	assert.Equal(t, Opened, b.Record(errDown))
	assert.True(t, b.IsOpen())
	assert.Equal(t, NoChange, b.Record(errDown), "already open")
}

func TestBreakerClosesAfterConsecutiveSuccesses(t *testing.T) {
	b := New("kafka", WithFailureThreshold(1), WithSuccessThreshold(2))
	assert.Equal(t, Opened, b.Record(errDown))

	assert.Equal(t, NoChange, b.Record(nil))
	assert.Equal(t, NoChange, b.Record(errDown), "a failure resets the success run")
	assert.Equal(t, NoChange, b.Record(nil))
	assert.Equal(t, Closed, b.Record(nil))
	assert.False(t, b.IsOpen())
}

func TestBreakerDefaults(t *testing.T) {
	b := New("kafka", WithFailureThreshold(0))
	assert.Equal(t, "kafka", b.Name())
	for range 4 {
		b.Record(errDown)
	}
	assert.False(t, b.IsOpen())
	assert.Equal(t, Opened, b.Record(errDown))
}
