// Package blockmodel loads block model and blockstate JSON and turns
// resolved model elements into block-local quad geometry.
package blockmodel

import "encoding/json"

// Model is the decoded block model file: an optional parent reference,
// texture variable bindings, and cuboid elements. Display transforms,
// item overrides, and element rotation present in the wire format are
// not modeled here; those fields are ignored on decode.
type Model struct {
	Parent           string            `json:"parent"`
	AmbientOcclusion *bool             `json:"ambientocclusion"`
	Textures         map[string]string `json:"textures"`
	Elements         []Element         `json:"elements"`
}

// Element is one axis-aligned cuboid in [0,16]³ model space.
type Element struct {
	From  [3]float32      `json:"from"`
	To    [3]float32      `json:"to"`
	Faces map[string]Face `json:"faces"`
}

// Face describes one side of an element: its texture reference (either
// resolved or a "#variable"), optional explicit UVs in [0,16] texture
// space, and the neighbor face that may hide it.
type Face struct {
	UV       [4]float32 `json:"uv"`
	Texture  string     `json:"texture"`
	CullFace string     `json:"cullface"`
}

// BlockState maps variant keys ("axis=y,powered=on") to candidate
// models for a block.
type BlockState struct {
	Variants map[string]BlockStateVariants `json:"variants"`
}

// BlockStateVariants absorbs the wire format's habit of encoding a
// variant as either a single object or an array of candidates.
type BlockStateVariants []Variant

func (v *BlockStateVariants) UnmarshalJSON(data []byte) error {
	var variants []Variant
	if err := json.Unmarshal(data, &variants); err == nil {
		*v = variants
		return nil
	}

	var single Variant
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*v = []Variant{single}
	return nil
}

// Variant names one model a blockstate key can resolve to.
type Variant struct {
	Model string `json:"model"`
}
