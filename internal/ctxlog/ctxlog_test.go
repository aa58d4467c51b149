package ctxlog_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/DonovanMods/linux-mc-launcher/internal/ctxlog"
	"github.com/stretchr/testify/assert"
)

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := ctxlog.WithLogger(context.Background(), logger)
	ctxlog.FromContext(ctx).Info("hello", "version", "1.16.5")

	assert.Contains(t, buf.String(), "version=1.16.5")
	assert.Equal(t, slog.Default(), ctxlog.FromContext(context.Background()))
}
