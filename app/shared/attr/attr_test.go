package attr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorrelationID(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", CorrelationID(ctx))

	ctx = WithCorrelationID(ctx, "abc")
	assert.Equal(t, "abc", CorrelationID(ctx))
	assert.Equal(t, "abc", ExtractCorrelationID(ctx).Value.String())

	generated := WithCorrelationID(context.Background(), "")
	assert.Len(t, CorrelationID(generated), 36)
}

func TestError(t *testing.T) {
	assert.Equal(t, "", Error(nil).Value.String())
	assert.Equal(t, "boom", Error(errors.New("boom")).Value.String())
}
