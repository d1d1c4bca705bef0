package logging

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestFromContext(t *testing.T) {
	entry := logrus.WithField("correlation_id", "abc")
	ctx := ContextWithLogger(context.Background(), entry)

	assert.Same(t, entry, FromContext(ctx))
	assert.NotNil(t, FromContext(context.Background()))
}

func TestCorrelationIDFromContext(t *testing.T) {
	ctx := ContextWithCorrelationID(context.Background(), "req-1")
	assert.Equal(t, "req-1", CorrelationIDFromContext(ctx))

	generated := CorrelationIDFromContext(context.Background())
	assert.Contains(t, generated, "gen_")
	assert.NotEqual(t, generated, CorrelationIDFromContext(context.Background()))
}

func TestInit_UnknownLevel(t *testing.T) {
	Init("verbose", "json")
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())

	Init("debug", "text")
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
}
