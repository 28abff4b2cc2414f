package doom

import (
	"fmt"
	"math"
	"math/rand"
)

// Observation keys, in the order used by DictSpace.
const (
	KeyScreen        = "screen"
	KeyDepth         = "depth"
	KeyLabels        = "labels"
	KeyAutomap       = "automap"
	KeyGameVariables = "game_variables"
)

var observationKeyOrder = []string{KeyScreen, KeyDepth, KeyLabels, KeyAutomap,
	KeyGameVariables}

// Dtype is the element type of an Array.
type Dtype int

const (
	Uint8 Dtype = iota
	Float32
)

func (d Dtype) String() string {
	switch d {
	case Uint8:
		return "uint8"
	case Float32:
		return "float32"
	default:
		return fmt.Sprintf("Dtype(%d)", int(d))
	}
}

// An Array is a fixed-shape block of numbers.
//
// Exactly one of Uint8 and Float32 is used, depending on
// the dtype of the space that produced it.
type Array struct {
	Shape   []int
	Uint8   []uint8
	Float32 []float32
}

// Dtype returns the element type of the array.
func (a *Array) Dtype() Dtype {
	if a.Float32 != nil {
		return Float32
	}
	return Uint8
}

// Len returns the number of elements.
func (a *Array) Len() int {
	if a.Float32 != nil {
		return len(a.Float32)
	}
	return len(a.Uint8)
}

// Float64 converts the elements to float64.
func (a *Array) Float64() []float64 {
	res := make([]float64, a.Len())
	if a.Float32 != nil {
		for i, x := range a.Float32 {
			res[i] = float64(x)
		}
	} else {
		for i, x := range a.Uint8 {
			res[i] = float64(x)
		}
	}
	return res
}

// Observation maps observation keys to arrays.
type Observation map[string]*Array

// Box is a space of arrays with bounded elements.
type Box struct {
	Low   float64
	High  float64
	Shape []int
	Dtype Dtype
}

// NewImageBox creates a uint8 box of the given shape.
func NewImageBox(shape ...int) *Box {
	return &Box{Low: 0, High: 255, Shape: shape, Dtype: Uint8}
}

// NewFloatBox creates an unbounded float32 vector box.
func NewFloatBox(size int) *Box {
	return &Box{
		Low:   -math.MaxFloat32,
		High:  math.MaxFloat32,
		Shape: []int{size},
		Dtype: Float32,
	}
}

// Size returns the number of elements in the shape.
func (b *Box) Size() int {
	return shapeSize(b.Shape)
}

// Zero creates an all-zero array in the space.
func (b *Box) Zero() *Array {
	res := &Array{Shape: append([]int(nil), b.Shape...)}
	if b.Dtype == Float32 {
		res.Float32 = make([]float32, b.Size())
	} else {
		res.Uint8 = make([]uint8, b.Size())
	}
	return res
}

// Contains checks that the array has the right shape,
// dtype, and bounds.
func (b *Box) Contains(a *Array) bool {
	if a == nil || a.Dtype() != b.Dtype || !equalShapes(a.Shape, b.Shape) ||
		a.Len() != b.Size() {
		return false
	}
	if b.Dtype == Float32 {
		for _, x := range a.Float32 {
			if float64(x) < b.Low || float64(x) > b.High || math.IsNaN(float64(x)) {
				return false
			}
		}
	} else {
		for _, x := range a.Uint8 {
			if float64(x) < b.Low || float64(x) > b.High {
				return false
			}
		}
	}
	return true
}

// Discrete is a space of the integers [0, N).
type Discrete struct {
	N int
}

// Contains checks if the action is in range.
func (d Discrete) Contains(action int) bool {
	return action >= 0 && action < d.N
}

// Sample picks a uniformly random element.
// If gen is nil, the global source is used.
func (d Discrete) Sample(gen *rand.Rand) int {
	if gen == nil {
		return rand.Intn(d.N)
	}
	return gen.Intn(d.N)
}

// OneHot creates a vector with a 1 at the index of the
// action.
func (d Discrete) OneHot(action int) []float64 {
	res := make([]float64, d.N)
	res[action] = 1
	return res
}

// DictSpace is a space of Observations.
type DictSpace struct {
	Spaces map[string]*Box
}

// Keys returns the keys of the space in a fixed order.
func (d *DictSpace) Keys() []string {
	var res []string
	for _, key := range observationKeyOrder {
		if _, ok := d.Spaces[key]; ok {
			res = append(res, key)
		}
	}
	return res
}

// Zero creates an observation with every entry zeroed.
func (d *DictSpace) Zero() Observation {
	res := Observation{}
	for key, box := range d.Spaces {
		res[key] = box.Zero()
	}
	return res
}

// Contains checks that the observation has exactly the
// keys of the space and that every entry fits.
func (d *DictSpace) Contains(obs Observation) bool {
	if len(obs) != len(d.Spaces) {
		return false
	}
	for key, box := range d.Spaces {
		if !box.Contains(obs[key]) {
			return false
		}
	}
	return true
}

func shapeSize(shape []int) int {
	size := 1
	for _, x := range shape {
		size *= x
	}
	return size
}

func equalShapes(s1, s2 []int) bool {
	if len(s1) != len(s2) {
		return false
	}
	for i, x := range s1 {
		if s2[i] != x {
			return false
		}
	}
	return true
}
