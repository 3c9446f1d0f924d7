package blockmodel

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Loader reads block models and blockstate files from an assets
// directory, resolving parent chains and texture variables. Loaded
// files are cached; the loader is not safe for concurrent use.
type Loader struct {
	assetsPath string
	modelCache map[string]*Model
	stateCache map[string]*BlockState
}

func NewLoader(assetsPath string) *Loader {
	return &Loader{
		assetsPath: assetsPath,
		modelCache: make(map[string]*Model),
		stateCache: make(map[string]*BlockState),
	}
}

// LoadModel loads a model by name ("block/stone", "stone" or
// "minecraft:block/stone"), following the parent chain and merging
// inherited elements and textures.
func (l *Loader) LoadModel(name string) (*Model, error) {
	name = stripNamespace(name)
	if !strings.Contains(name, "/") {
		name = "block/" + name
	}

	if model, ok := l.modelCache[name]; ok {
		return model, nil
	}

	path := filepath.Join(l.assetsPath, "models", name+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read model file: %w", err)
	}

	var model Model
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("could not unmarshal model json: %w", err)
	}

	if model.Parent != "" {
		parentName := stripNamespace(model.Parent)
		if strings.HasPrefix(parentName, "builtin/") {
			l.modelCache[name] = &model
			return &model, nil
		}

		parent, err := l.LoadModel(parentName)
		if err != nil {
			return nil, fmt.Errorf("could not load parent model '%s': %w", parentName, err)
		}

		if model.AmbientOcclusion == nil {
			model.AmbientOcclusion = parent.AmbientOcclusion
		}
		if len(model.Elements) == 0 {
			// Inherited elements are cloned so resolving texture variables
			// in this model cannot rewrite the parent's cached faces.
			model.Elements = cloneElements(parent.Elements)
		}
		if model.Textures == nil && len(parent.Textures) > 0 {
			model.Textures = make(map[string]string, len(parent.Textures))
		}
		for key, val := range parent.Textures {
			if _, ok := model.Textures[key]; !ok {
				model.Textures[key] = val
			}
		}
	}

	l.resolveTextures(&model)
	l.modelCache[name] = &model
	return &model, nil
}

func (l *Loader) resolveTextures(m *Model) {
	for i := range m.Elements {
		for faceName, face := range m.Elements[i].Faces {
			originalTexture := face.Texture
			resolvedTexture := l.ResolveTexture(originalTexture, m)
			if resolvedTexture != originalTexture {
				face.Texture = resolvedTexture
				m.Elements[i].Faces[faceName] = face
			}
		}
	}
}

// ResolveTexture follows "#variable" references through the model's
// texture map, bounded against reference cycles.
func (l *Loader) ResolveTexture(textureName string, m *Model) string {
	for i := 0; i < 10 && strings.HasPrefix(textureName, "#"); i++ {
		key := strings.TrimPrefix(textureName, "#")
		if resolved, ok := m.Textures[key]; ok {
			textureName = resolved
		} else {
			break
		}
	}
	return textureName
}

// LoadBlockState loads the blockstate file for a block name.
func (l *Loader) LoadBlockState(name string) (*BlockState, error) {
	name = stripNamespace(name)
	if bs, ok := l.stateCache[name]; ok {
		return bs, nil
	}

	path := filepath.Join(l.assetsPath, "blockstates", name+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read blockstate file: %w", err)
	}

	var blockState BlockState
	if err := json.Unmarshal(data, &blockState); err != nil {
		return nil, fmt.Errorf("could not unmarshal blockstate json: %w", err)
	}

	l.stateCache[name] = &blockState
	return &blockState, nil
}

func cloneElements(src []Element) []Element {
	out := make([]Element, len(src))
	copy(out, src)
	for i := range out {
		faces := make(map[string]Face, len(src[i].Faces))
		for k, v := range src[i].Faces {
			faces[k] = v
		}
		out[i].Faces = faces
	}
	return out
}

func stripNamespace(name string) string {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}
	return name
}
