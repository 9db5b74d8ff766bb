package nodes_test

import (
	"testing"

	"github.com/aretw0/nodeweave/pkg/command"
	"github.com/aretw0/nodeweave/pkg/domain"
	"github.com/aretw0/nodeweave/pkg/graph"
	"github.com/aretw0/nodeweave/pkg/nodes"
	"github.com/aretw0/nodeweave/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	reg   *registry.Registry
	g     *graph.Graph
	out   *nodes.Buffer
	scene *command.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{out: &nodes.Buffer{}, scene: command.NewRecorder(nil)}
	reg, err := nodes.NewRegistry(nodes.Deps{Sink: f.out, Interpreter: f.scene})
	require.NoError(t, err)
	f.reg = reg
	f.g = graph.New(reg)
	return f
}

func (f *fixture) add(t *testing.T, typeID string) *graph.Node {
	t.Helper()
	n, err := f.reg.Create(typeID)
	require.NoError(t, err)
	require.NoError(t, f.g.AddNode(n))
	return n
}

func TestRegister_AllBuiltins(t *testing.T) {
	reg, err := nodes.NewRegistry(nodes.Deps{})
	require.NoError(t, err)

	var ids []string
	for id := range reg.List() {
		ids = append(ids, id)
	}
	assert.Equal(t, []string{
		nodes.ConstString, nodes.ConstBoolean, nodes.ConstInteger, nodes.ConstVector3,
		nodes.Print, nodes.PrintMulti, nodes.MathAdd, nodes.StringConcat, nodes.LogicNot,
		nodes.Vector3Compose, nodes.Vector3Split, nodes.Vector3Add, nodes.SceneJoint,
	}, ids)

	err = nodes.Register(reg, nodes.Deps{})
	assert.ErrorIs(t, err, domain.ErrDuplicateTypeID)
}

func TestConstIntoPrint(t *testing.T) {
	f := newFixture(t)
	c := f.add(t, nodes.ConstString)
	p := f.add(t, nodes.Print)

	require.NoError(t, c.MustInput("value").SetManualValue("hi"))
	require.NoError(t, f.g.Connect(c, "value", p, "text"))
	require.NoError(t, f.g.Evaluate(p))

	assert.Equal(t, []string{"hi"}, f.out.Lines())
}

func TestPrintMulti(t *testing.T) {
	f := newFixture(t)
	p := f.add(t, nodes.PrintMulti)
	require.NoError(t, p.MustInput("string").SetManualValue("ready"))
	require.NoError(t, p.MustInput("boolean").SetManualValue(true))

	require.NoError(t, f.g.Evaluate(p))
	assert.Equal(t, []string{"ready true"}, f.out.Lines())
}

func TestArithmeticChain(t *testing.T) {
	f := newFixture(t)
	a := f.add(t, nodes.ConstInteger)
	add := f.add(t, nodes.MathAdd)

	require.NoError(t, a.MustInput("value").SetManualValue(40))
	require.NoError(t, add.MustInput("b").SetManualValue(int64(2)))
	require.NoError(t, f.g.Connect(a, "value", add, "a"))

	v, err := f.g.Pull(add, "sum")
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
}

func TestStringConcatAndNot(t *testing.T) {
	f := newFixture(t)
	cat := f.add(t, nodes.StringConcat)
	require.NoError(t, cat.MustInput("a").SetManualValue("left"))
	require.NoError(t, cat.MustInput("b").SetManualValue("right"))
	require.NoError(t, cat.MustInput("separator").SetManualValue("_"))

	v, err := f.g.Pull(cat, "out")
	require.NoError(t, err)
	assert.Equal(t, "left_right", v)

	not := f.add(t, nodes.LogicNot)
	v, err = f.g.Pull(not, "out")
	require.NoError(t, err)
	assert.Equal(t, true, v)
}

func TestVectorComposeSplit(t *testing.T) {
	f := newFixture(t)
	compose := f.add(t, nodes.Vector3Compose)
	split := f.add(t, nodes.Vector3Split)

	require.NoError(t, compose.MustInput("x").SetManualValue(1))
	require.NoError(t, compose.MustInput("y").SetManualValue(-2))
	require.NoError(t, compose.MustInput("z").SetManualValue(3))
	require.NoError(t, f.g.Connect(compose, "vector", split, "vector"))

	require.NoError(t, f.g.Evaluate(split))
	for name, want := range map[string]int64{"x": 1, "y": -2, "z": 3} {
		v, ok := split.MustOutput(name).CachedValue()
		require.True(t, ok, name)
		assert.Equal(t, want, v, name)
	}
}

func TestVectorAdd(t *testing.T) {
	f := newFixture(t)
	add := f.add(t, nodes.Vector3Add)
	require.NoError(t, add.MustInput("a").SetManualValue(domain.Vector3{X: 1, Y: 2, Z: 3}))
	require.NoError(t, add.MustInput("b").SetManualValue(domain.Vector3{X: 1, Y: 1, Z: 1}))

	v, err := f.g.Pull(add, "sum")
	require.NoError(t, err)
	assert.Equal(t, domain.Vector3{X: 2, Y: 3, Z: 4}, v)
}

func TestSceneJoint_BuildsHierarchy(t *testing.T) {
	f := newFixture(t)
	name := f.add(t, nodes.ConstString)
	root := f.add(t, nodes.SceneJoint)
	child := f.add(t, nodes.SceneJoint)

	require.NoError(t, name.MustInput("value").SetManualValue("root"))
	require.NoError(t, f.g.Connect(name, "value", root, "name"))
	require.NoError(t, child.MustInput("name").SetManualValue("hip"))
	require.NoError(t, child.MustInput("position").SetManualValue(domain.Vector3{Y: 1}))
	require.NoError(t, f.g.Connect(root, "joint", child, "parent"))

	v, err := f.g.Pull(child, "joint")
	require.NoError(t, err)
	assert.Equal(t, "hip", v)

	assert.Equal(t, []command.Entity{
		{Name: "root", Kind: "joint"},
		{Name: "hip", Kind: "joint", Parent: "root", Position: domain.Vector3{Y: 1}},
	}, f.scene.Entities())
}

func TestSceneJoint_MissingParent(t *testing.T) {
	f := newFixture(t)
	j := f.add(t, nodes.SceneJoint)
	require.NoError(t, j.MustInput("parent").SetManualValue("ghost"))

	err := f.g.Evaluate(j)
	require.Error(t, err)
	assert.ErrorIs(t, err, command.ErrEntityNotFound)

	var execErr *graph.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, nodes.SceneJoint, execErr.TypeID)
}

func TestSceneJoint_NoInterpreter(t *testing.T) {
	reg, err := nodes.NewRegistry(nodes.Deps{})
	require.NoError(t, err)
	j, err := reg.Create(nodes.SceneJoint)
	require.NoError(t, err)

	err = j.ExecuteAndCache()
	assert.ErrorIs(t, err, nodes.ErrNoInterpreter)
}
