package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/nodeweave/pkg/document"
	"github.com/aretw0/nodeweave/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunGraphStoreContract runs a suite of tests to verify that a GraphStore implementation
// adheres to the defined interface contract.
func RunGraphStoreContract(t *testing.T, store GraphStore) {
	ctx := context.Background()
	name := "contract-" + time.Now().Format("20060102150405")

	sample := func() *document.Document {
		return &document.Document{Items: []document.Item{
			{
				TypeIdentifier: "const.integer",
				InstanceID:     "c1",
				Position:       domain.Position{X: 1, Y: 2},
				Inputs: map[string]document.InputState{
					"value": {ManualValue: int64(7)},
				},
			},
			{
				TypeIdentifier: "print",
				InstanceID:     "p1",
				Inputs: map[string]document.InputState{
					"text": {ManualValue: "", ConnectionTargetInstanceID: "c1", ConnectionTargetOutputName: "value"},
				},
			},
		}}
	}

	t.Run("Save and Load", func(t *testing.T) {
		doc := sample()
		require.NoError(t, store.Save(ctx, name, doc), "Save should not return error")

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err, "Load should not return error")
		require.Len(t, loaded.Items, 2)
		assert.Equal(t, "c1", loaded.Items[0].InstanceID)
		assert.Equal(t, domain.Position{X: 1, Y: 2}, loaded.Items[0].Position)
		assert.Equal(t, "c1", loaded.Items[1].Inputs["text"].ConnectionTargetInstanceID)
		assert.Equal(t, "value", loaded.Items[1].Inputs["text"].ConnectionTargetOutputName)
		// Encoded stores return numbers in their decoded form; only presence is portable.
		assert.NotNil(t, loaded.Items[0].Inputs["value"].ManualValue)
	})

	t.Run("Save Is Isolated", func(t *testing.T) {
		doc := sample()
		require.NoError(t, store.Save(ctx, name, doc))
		doc.Items[0].InstanceID = "mutated"

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, "c1", loaded.Items[0].InstanceID)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, sample()))
		require.NoError(t, store.Save(ctx, name, &document.Document{Items: []document.Item{}}))

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Empty(t, loaded.Items)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+name)
		assert.ErrorIs(t, err, domain.ErrGraphNotFound)
	})

	t.Run("Invalid Name", func(t *testing.T) {
		assert.ErrorIs(t, store.Save(ctx, "", sample()), domain.ErrInvalidGraphName)
		assert.ErrorIs(t, store.Save(ctx, "../escape", sample()), domain.ErrInvalidGraphName)
		_, err := store.Load(ctx, "a/b")
		assert.ErrorIs(t, err, domain.ErrInvalidGraphName)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, sample()))

		require.NoError(t, store.Delete(ctx, name), "Delete should not return error")
		require.NoError(t, store.Delete(ctx, name), "Delete of a missing graph should not return error")

		_, err := store.Load(ctx, name)
		assert.ErrorIs(t, err, domain.ErrGraphNotFound, "Load after Delete should return ErrGraphNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := name + "-b"
		id2 := name + "-a"
		require.NoError(t, store.Save(ctx, id1, sample()))
		require.NoError(t, store.Save(ctx, id2, sample()))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, id1)
		assert.Contains(t, names, id2)
		assert.IsNonDecreasing(t, names)
	})
}
