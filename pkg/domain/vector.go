package domain

import (
	"encoding/json"
	"fmt"
)

// Vector3 is the payload of KindVector3 ports.
type Vector3 struct {
	X float64 `json:"x" yaml:"x" mapstructure:"x"`
	Y float64 `json:"y" yaml:"y" mapstructure:"y"`
	Z float64 `json:"z" yaml:"z" mapstructure:"z"`
}

// Add returns the component-wise sum.
func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

func (v Vector3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}

// Position is the on-canvas location of a node. Display only.
// It is persisted as a two element array [x, y].
type Position struct {
	X float64
	Y float64
}

func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

func (p *Position) UnmarshalJSON(data []byte) error {
	var xy []float64
	if err := json.Unmarshal(data, &xy); err != nil {
		return fmt.Errorf("position: %w", err)
	}
	if len(xy) != 2 {
		return fmt.Errorf("position: expected [x, y], got %d elements", len(xy))
	}
	p.X, p.Y = xy[0], xy[1]
	return nil
}

func (p Position) MarshalYAML() (any, error) {
	return []float64{p.X, p.Y}, nil
}

func (p *Position) UnmarshalYAML(unmarshal func(any) error) error {
	var xy []float64
	if err := unmarshal(&xy); err != nil {
		return fmt.Errorf("position: %w", err)
	}
	if len(xy) != 2 {
		return fmt.Errorf("position: expected [x, y], got %d elements", len(xy))
	}
	p.X, p.Y = xy[0], xy[1]
	return nil
}
