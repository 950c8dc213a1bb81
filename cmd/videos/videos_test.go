package videos

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/coverfetch/internal/media"
	"github.com/lepinkainen/coverfetch/internal/testutil"
)

func TestSourcesWithoutKeyResolveNothing(t *testing.T) {
	testutil.SetTestConfig(t)

	srcs := Sources()
	require.Len(t, srcs, 1)
	assert.Equal(t, "youtube", srcs[0].Name())

	_, ok := srcs[0].Resolve(context.Background(), media.Query{Title: "anything"})
	assert.False(t, ok)
}

func TestFamily(t *testing.T) {
	assert.Equal(t, "thumbnailUrl", Family.Layout.URLField)
	assert.Equal(t, "channel", Family.Layout.CreatorField)
}
