// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Scene    SceneConfig    `yaml:"scene"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width  int  `yaml:"width"`
	Height int  `yaml:"height"`
	VSync  bool `yaml:"vsync"`
	// MaxBatchVertices is the hard per-batch vertex ceiling; oversized
	// chunk meshes are split before upload. Zero disables splitting.
	MaxBatchVertices int `yaml:"max_batch_vertices"`
}

// SceneConfig holds structure and asset locations.
type SceneConfig struct {
	// AssetsPath points at a resource-pack style directory holding
	// models/ and blockstates/ JSON trees.
	AssetsPath string `yaml:"assets_path"`
	// StructurePath is the gzip-compressed NBT structure file to view.
	StructurePath string `yaml:"structure_path"`
	// ChunkSize is the edge length of a chunk cell in blocks.
	ChunkSize int `yaml:"chunk_size"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:            1280,
			Height:           720,
			VSync:            true,
			MaxBatchVertices: 65532,
		},
		Scene: SceneConfig{
			AssetsPath: "assets",
			ChunkSize:  16,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
