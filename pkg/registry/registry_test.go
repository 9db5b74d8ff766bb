package registry_test

import (
	"testing"

	"github.com/aretw0/nodeweave/pkg/domain"
	"github.com/aretw0/nodeweave/pkg/graph"
	"github.com/aretw0/nodeweave/pkg/registry"
	"github.com/aretw0/nodeweave/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constString(value string) registry.Factory {
	return func() graph.Behavior {
		return graph.Define(
			schema.Signature{Outputs: []schema.PortDef{schema.Out("out", domain.KindString)}},
			func(*graph.ExecContext) (any, error) { return value, nil },
		)
	}
}

func TestRegistry_RegisterAndCreate(t *testing.T) {
	reg := registry.NewRegistry()
	require.NoError(t, reg.Register("const", "Constant", constString("hi")))

	a, err := reg.Create("const")
	require.NoError(t, err)
	b, err := reg.Create("const")
	require.NoError(t, err)

	assert.Equal(t, "const", a.TypeIdentifier())
	assert.Equal(t, "Constant", a.Title)
	assert.NotEqual(t, a.UniqueIdentifier(), b.UniqueIdentifier())
	assert.NotSame(t, a.MustOutput("out"), b.MustOutput("out"), "ports are built per instance")
	assert.True(t, reg.Has("const"))
}

func TestRegistry_DuplicateTypeID(t *testing.T) {
	reg := registry.NewRegistry()
	require.NoError(t, reg.Register("const", "Constant", constString("a")))

	err := reg.Register("const", "Again", constString("b"))
	assert.ErrorIs(t, err, domain.ErrDuplicateTypeID)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_UnknownTypeID(t *testing.T) {
	reg := registry.NewRegistry()
	_, err := reg.Create("nope")
	assert.ErrorIs(t, err, domain.ErrUnknownTypeID)
}

func TestRegistry_RejectsInvalidSignature(t *testing.T) {
	reg := registry.NewRegistry()
	err := reg.Register("bad", "Bad", func() graph.Behavior {
		return graph.Define(
			schema.Signature{Inputs: []schema.PortDef{schema.In("x", domain.KindVoid)}},
			func(*graph.ExecContext) (any, error) { return nil, nil },
		)
	})
	assert.Error(t, err)
	assert.False(t, reg.Has("bad"))
}

func TestRegistry_ListIsOrderedAndRestartable(t *testing.T) {
	reg := registry.NewRegistry()
	reg.MustRegister("b", "Bee", constString("b"))
	reg.MustRegister("a", "", constString("a"))

	collect := func() [][2]string {
		var out [][2]string
		for id, title := range reg.List() {
			out = append(out, [2]string{id, title})
		}
		return out
	}

	want := [][2]string{{"b", "Bee"}, {"a", "a"}}
	assert.Equal(t, want, collect())
	assert.Equal(t, want, collect(), "a second range yields the same sequence")

	for id := range reg.List() {
		assert.Equal(t, "b", id)
		break
	}
}

func TestRegistry_LookupExposesSignature(t *testing.T) {
	reg := registry.NewRegistry()
	reg.MustRegister("const", "Constant", constString("x"))

	e, ok := reg.Lookup("const")
	require.True(t, ok)
	def, ok := e.Signature.Output("out")
	require.True(t, ok)
	assert.Equal(t, domain.KindString, def.Kind)

	assert.Panics(t, func() { reg.MustRegister("const", "dup", constString("y")) })
}
