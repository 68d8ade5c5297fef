package logger

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zerolog.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("verbose"))
}

func TestWithContext(t *testing.T) {
	assert.Same(t, Get(), WithContext(context.Background()))

	reqLogger := WithRequestID("abc12345")
	ctx := NewContext(context.Background(), &reqLogger)
	assert.Same(t, &reqLogger, WithContext(ctx))
}
