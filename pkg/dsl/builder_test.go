package dsl

import (
	"errors"
	"testing"

	"github.com/aretw0/nodeweave/pkg/domain"
	"github.com/aretw0/nodeweave/pkg/nodes"
	"github.com/aretw0/nodeweave/pkg/schema"
)

func TestBuilder_SimpleFlow(t *testing.T) {
	// Source declared after its consumer.
	b := New()
	b.Add("sum", nodes.MathAdd).
		At(200, 0).
		Wire("a", "k", "value").
		Set("b", 2)
	b.Add("k", nodes.ConstInteger).At(0, 0).Set("value", 40)

	reg, err := nodes.NewRegistry(nodes.Deps{})
	if err != nil {
		t.Fatal(err)
	}
	g, err := b.Build(reg)
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if g.Len() != 2 {
		t.Fatalf("Expected 2 nodes, got %d", g.Len())
	}

	sum, ok := g.FindNodeByInstanceID("sum")
	if !ok {
		t.Fatal("sum node missing")
	}
	if sum.Position != (domain.Position{X: 200}) {
		t.Errorf("Unexpected position %+v", sum.Position)
	}
	v, err := g.Pull(sum, "sum")
	if err != nil {
		t.Fatalf("Pull failed: %v", err)
	}
	if v != int64(42) {
		t.Errorf("Expected 42, got %v (%T)", v, v)
	}
}

func TestBuilder_DocumentKeepsOrder(t *testing.T) {
	b := New()
	b.Add("a", nodes.ConstBoolean).
		Add("b", nodes.LogicNot).Wire("in", "a", "value")
	// Re-adding returns the same builder.
	b.Add("a", nodes.ConstBoolean).Set("value", true)

	doc := b.Document()
	if len(doc.Items) != 2 || doc.Items[0].InstanceID != "a" || doc.Items[1].InstanceID != "b" {
		t.Fatalf("Unexpected items %+v", doc.Items)
	}
	if doc.Items[0].Inputs["value"].ManualValue != true {
		t.Errorf("Expected manual value true, got %v", doc.Items[0].Inputs["value"].ManualValue)
	}
	if !doc.Items[1].Inputs["in"].Connected() {
		t.Error("Expected b.in to be wired")
	}

	// Document returns a copy.
	doc.Items[0].Inputs["value"] = doc.Items[1].Inputs["in"]
	if b.Document().Items[0].Inputs["value"].Connected() {
		t.Error("Document shares state with the builder")
	}
}

func TestBuilder_Errors(t *testing.T) {
	reg, err := nodes.NewRegistry(nodes.Deps{})
	if err != nil {
		t.Fatal(err)
	}

	b := New()
	b.Add("x", nodes.ConstString)
	b.Add("x", nodes.ConstInteger)
	if _, err := b.Build(reg); !errors.Is(err, ErrTypeRedeclared) {
		t.Errorf("Expected ErrTypeRedeclared, got %v", err)
	}

	b = New()
	b.Add("p", nodes.Print).Wire("text", "ghost", "value")
	b.Add("q", "no.such.type")
	if _, err := b.Build(reg); err == nil {
		t.Error("Expected build error")
	}
	err = b.Validate(reg)
	if got := len(schema.ValidationErrors(err)); got != 2 {
		t.Errorf("Expected 2 validation errors, got %d: %v", got, err)
	}
}
