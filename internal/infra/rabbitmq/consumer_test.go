package rabbitmq

import (
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
)

func TestCalculateBackoff(t *testing.T) {
	c := &Consumer{baseDelay: time.Second}

	assert.Equal(t, time.Second, c.calculateBackoff(1))
	assert.Equal(t, 2*time.Second, c.calculateBackoff(2))
	assert.Equal(t, 8*time.Second, c.calculateBackoff(4))
	// Capped at one minute.
	assert.Equal(t, 60*time.Second, c.calculateBackoff(10))
}

func TestGetAttempt(t *testing.T) {
	c := &Consumer{}

	assert.Equal(t, 1, c.getAttempt(amqp.Delivery{}))

	d := amqp.Delivery{Headers: amqp.Table{retryCountHeader: int32(4)}}
	assert.Equal(t, 4, c.getAttempt(d))

	// Dead-letter routed messages carry x-death instead.
	d = amqp.Delivery{Headers: amqp.Table{
		"x-death": []interface{}{map[string]interface{}{}, map[string]interface{}{}},
	}}
	assert.Equal(t, 2, c.getAttempt(d))
}

func TestRetryHeadersEscalate(t *testing.T) {
	d := amqp.Delivery{Headers: amqp.Table{
		"trace":          "abc",
		retryCountHeader: int32(2),
	}}

	h := retryHeaders(d, 3)
	assert.Equal(t, int32(3), h[retryCountHeader])
	assert.Equal(t, "abc", h["trace"])
	// The source delivery is untouched.
	assert.Equal(t, int32(2), d.Headers[retryCountHeader])
}

func TestBackoffEscalatesAcrossRedeliveries(t *testing.T) {
	c := &Consumer{baseDelay: time.Second}

	d := amqp.Delivery{}
	var delays []time.Duration
	for i := 0; i < 3; i++ {
		attempt := c.getAttempt(d)
		delays = append(delays, c.calculateBackoff(attempt))
		d = amqp.Delivery{Headers: retryHeaders(d, attempt+1)}
	}

	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, delays)
}
