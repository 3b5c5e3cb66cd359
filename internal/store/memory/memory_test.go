package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curionlab/emergency-call-server/internal/model"
)

func TestLoadReturnsIndependentCopy(t *testing.T) {
	ctx := context.Background()
	st := NewStore()

	doc, err := st.Load(ctx)
	require.NoError(t, err)
	doc.AuthCodes["r1"] = model.AuthCode{Code: "123456"}

	// Mutating a loaded document must not leak into the store until Save.
	again, err := st.Load(ctx)
	require.NoError(t, err)
	assert.NotContains(t, again.AuthCodes, "r1")

	require.NoError(t, st.Save(ctx, doc))
	again, err = st.Load(ctx)
	require.NoError(t, err)
	assert.Contains(t, again.AuthCodes, "r1")
}

func TestLastSaveWins(t *testing.T) {
	ctx := context.Background()
	st := NewStore()

	a, _ := st.Load(ctx)
	b, _ := st.Load(ctx)

	a.AuthCodes["a"] = model.AuthCode{Code: "111111"}
	b.AuthCodes["b"] = model.AuthCode{Code: "222222"}

	require.NoError(t, st.Save(ctx, a))
	require.NoError(t, st.Save(ctx, b))

	doc, err := st.Load(ctx)
	require.NoError(t, err)
	assert.NotContains(t, doc.AuthCodes, "a")
	assert.Contains(t, doc.AuthCodes, "b")
}
