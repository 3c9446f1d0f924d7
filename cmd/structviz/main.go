package main

import (
	"flag"
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/xlab/closer"

	"structviz/internal/blockmeta"
	"structviz/internal/config"
	"structviz/internal/graphics"
	"structviz/internal/logger"
	"structviz/internal/meshing"
	"structviz/internal/profiling"
	"structviz/internal/render"
	"structviz/internal/structure"
	"structviz/pkg/blockmodel"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "path to a yaml config file")
	structurePath := flag.String("structure", "", "structure file to view (overrides config)")
	assetsPath := flag.String("assets", "", "assets directory (overrides config)")
	fontPath := flag.String("font", "", "ttf font for the stats overlay (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		closer.Fatalln("config:", err)
	}
	if *structurePath != "" {
		cfg.Scene.StructurePath = *structurePath
	}
	if *assetsPath != "" {
		cfg.Scene.AssetsPath = *assetsPath
	}
	if cfg.Scene.StructurePath == "" {
		closer.Fatalln("no structure file given (use -structure or scene.structure_path)")
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		closer.Fatalln("logger:", err)
	}
	closer.Bind(logger.Sync)

	if err := run(cfg, *fontPath); err != nil {
		logger.Sugar.Errorw("viewer exited with error", "err", err)
		closer.Fatalln(err)
	}
	closer.Close()
}

func run(cfg *config.Config, fontPath string) error {
	st, err := structure.Load(cfg.Scene.StructurePath)
	if err != nil {
		return fmt.Errorf("load structure: %w", err)
	}
	size := st.Size()
	logger.Sugar.Infow("structure loaded",
		"path", cfg.Scene.StructurePath,
		"size", fmt.Sprintf("%dx%dx%d", size.X, size.Y, size.Z),
		"blocks", st.Len(),
	)

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}
	defer glfw.Terminate()

	window, err := setupWindow(cfg)
	if err != nil {
		return err
	}

	if err := gl.Init(); err != nil {
		return fmt.Errorf("gl init: %w", err)
	}
	gl.ClearColor(0.53, 0.72, 0.87, 1.0)

	atlas, err := graphics.BuildBlockAtlas(filepath.Join(cfg.Scene.AssetsPath, "textures", "block"))
	if err != nil {
		logger.Sugar.Warnw("block atlas unavailable, rendering flat-shaded", "err", err)
		atlas = nil
	}

	loader := blockmodel.NewLoader(cfg.Scene.AssetsPath)
	resolver := blockmodel.NewResolver(loader, atlas)
	registry := blockmeta.NewRegistry(resolver)
	registerDefaults(registry)

	builder, err := meshing.NewChunkBuilder(cfg.Scene.ChunkSize, resolver, meshing.NewFluidResolver(), registry)
	if err != nil {
		return err
	}
	if err := builder.UpdateStructureBuffers(st); err != nil {
		return fmt.Errorf("build structure geometry: %w", err)
	}
	if errs := builder.BlockErrors(); len(errs) > 0 {
		logger.Sugar.Warnw("some blocks could not be meshed", "count", len(errs))
	}

	renderer, err := render.NewStructureRenderer(builder, atlas, cfg.Graphics.MaxBatchVertices)
	if err != nil {
		return err
	}
	if err := renderer.Init(); err != nil {
		return err
	}
	defer renderer.Dispose()

	camera := graphics.NewCamera(cfg.Graphics.Width, cfg.Graphics.Height)
	camera.Target = mgl32.Vec3{float32(size.X) / 2, float32(size.Y) / 2, float32(size.Z) / 2}
	camera.Distance = float32(max3(size.X, size.Y, size.Z)) * 1.8
	if camera.Distance < 8 {
		camera.Distance = 8
	}

	hud := setupHUD(fontPath, cfg)
	setupInput(window, camera)

	lastTime := glfw.GetTime()
	var elapsed float32
	for !window.ShouldClose() {
		profiling.ResetFrame()
		now := glfw.GetTime()
		dt := float32(now - lastTime)
		lastTime = now
		elapsed += dt

		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

		ctx := render.Context{
			View:      camera.GetViewMatrix(),
			Proj:      camera.GetProjectionMatrix(),
			CameraPos: camera.Position(),
			Time:      elapsed,
		}
		renderer.Render(ctx)

		if hud != nil {
			hud.RenderLines([]string{
				fmt.Sprintf("%.0f fps  chunks:%d", 1/float64(dt+1e-6), builder.ChunkCount()),
				profiling.TopN(3),
			}, 8, 20, 18, 1, mgl32.Vec3{1, 1, 1})
		}

		window.SwapBuffers()
		glfw.PollEvents()
	}
	return nil
}

func setupWindow(cfg *config.Config) (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(cfg.Graphics.Width, cfg.Graphics.Height, "structviz", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}
	window.MakeContextCurrent()

	if cfg.Graphics.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	return window, nil
}

func setupHUD(fontPath string, cfg *config.Config) *graphics.FontRenderer {
	if fontPath == "" {
		return nil
	}
	atlas, err := graphics.BuildFontAtlas(fontPath, 16)
	if err != nil {
		logger.Sugar.Warnw("font atlas unavailable, HUD disabled", "err", err)
		return nil
	}
	hud, err := graphics.NewFontRenderer(atlas, cfg.Graphics.Width, cfg.Graphics.Height)
	if err != nil {
		logger.Sugar.Warnw("font renderer unavailable, HUD disabled", "err", err)
		return nil
	}
	return hud
}

func setupInput(window *glfw.Window, camera *graphics.Camera) {
	var lastX, lastY float64
	var dragging, panning bool

	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		pressed := action == glfw.Press
		switch button {
		case glfw.MouseButtonLeft:
			dragging = pressed
		case glfw.MouseButtonRight, glfw.MouseButtonMiddle:
			panning = pressed
		}
		if pressed {
			lastX, lastY = w.GetCursorPos()
		}
	})

	window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		dx := float32(xpos - lastX)
		dy := float32(ypos - lastY)
		lastX, lastY = xpos, ypos
		if dragging {
			camera.Rotate(-dx*0.4, dy*0.4)
		} else if panning {
			camera.Pan(-dx*0.05, dy*0.05)
		}
	})

	window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		camera.Zoom(float32(yoff) * camera.Distance * 0.1)
	})

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		gl.Viewport(0, 0, int32(width), int32(height))
		camera.SetViewport(width, height)
	})

	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
		}
	})
}

// registerDefaults seeds per-name metadata for blocks whose rendering
// cannot be inferred from model shape alone.
func registerDefaults(r *blockmeta.Registry) {
	for _, name := range []string{"minecraft:water", "minecraft:bubble_column"} {
		r.Register(&blockmeta.Definition{
			Name:            name,
			Opaque:          blockmeta.Bool(false),
			SemiTransparent: blockmeta.Bool(true),
			SelfCulling:     true,
			DefaultProperties: map[string]string{
				"level": "0",
			},
		})
	}
	for _, name := range []string{"minecraft:glass", "minecraft:ice", "minecraft:tinted_glass"} {
		r.Register(&blockmeta.Definition{
			Name:            name,
			Opaque:          blockmeta.Bool(false),
			SemiTransparent: blockmeta.Bool(true),
			SelfCulling:     true,
		})
	}
	r.Register(&blockmeta.Definition{
		Name:   "minecraft:oak_leaves",
		Opaque: blockmeta.Bool(false),
		DefaultProperties: map[string]string{
			"waterlogged": "false",
		},
	})
}

func max3(a, b, c int) int {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
