// Command oxy-viewer opens a window and renders the scene described by the compiled-in
// manifest from a free-flying camera. WASD moves, the mouse or the arrow keys look, the
// wheel zooms and ESC quits.
package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/config"
	"github.com/Carmen-Shannon/oxy-viewer/engine"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/importer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader/builtin"
	"github.com/Carmen-Shannon/oxy-viewer/engine/skybox"
	"github.com/Carmen-Shannon/oxy-viewer/engine/texture"
	"github.com/Carmen-Shannon/oxy-viewer/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

func main() {
	os.Exit(run())
}

func run() (code int) {
	manifest, err := config.Default()
	if err != nil {
		slog.Error("scene manifest", "err", err)
		return 1
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: manifest.Level()})))
	logger := slog.Default().With("component", "main")

	// window and GPU setup panic on failure
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("initialization failed", "err", rec)
			code = 1
		}
	}()

	win := window.NewWindow(windowOptions(manifest.Window)...)
	defer win.Close()

	r := renderer.NewRenderer(win, rendererOptions(manifest.Render)...)

	modelProgram, skyboxProgram, err := loadPrograms(manifest.Shaders)
	if err != nil {
		logger.Error("shader programs", "err", err)
		r.Release()
		return 1
	}
	programs := map[shader.Program][]pipeline.PipelineBuilderOption{
		modelProgram:  modelPipelineOptions(manifest.Render),
		skyboxProgram: skyboxPipelineOptions(),
	}
	for _, p := range []shader.Program{modelProgram, skyboxProgram} {
		if err := r.RegisterProgram(p, programs[p]...); err != nil {
			logger.Error("register program", "program", p.Key(), "err", err)
			r.Release()
			return 1
		}
	}

	roots := config.AssetRoots()
	loader := texture.NewLoader(r,
		texture.WithPathCache(manifest.Render.TextureCache),
		texture.WithWorkers(manifest.Render.DecodeWorkers),
	)
	imp := importer.NewImporter(r, loader, importer.WithFlipUVs(*manifest.Render.FlipUVs))

	objects := make([]model.SceneObject, 0, len(manifest.Objects))
	for _, o := range manifest.Objects {
		obj := imp.Import(config.Resolve(roots, o.Path))
		if obj.Empty() {
			logger.Warn("object has no meshes", "name", o.Name, "path", o.Path)
		}
		obj.Name = o.Name
		obj.Position = mgl32.Vec3(o.Position)
		obj.Scale = mgl32.Vec3(o.ScaleOrUnit())
		objects = append(objects, obj)
	}

	var faces [texture.FaceCount]string
	for i := range faces {
		faces[i] = config.Resolve(roots, manifest.Skybox.Faces[i])
	}
	sky := skybox.NewSkybox(r, loader, faces)

	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithRenderer(r),
		engine.WithCamera(camera.NewCamera(cameraOptions(manifest.Camera)...)),
		engine.WithModelProgram(modelProgram),
		engine.WithSkybox(sky, skyboxProgram),
		engine.WithObjects(objects...),
		engine.WithClipPlanes(manifest.Render.Near, manifest.Render.Far),
		engine.WithProfiling(manifest.Render.Profiling),
		engine.WithProfileInterval(time.Duration(manifest.Render.ProfileInterval*float64(time.Second))),
		engine.WithRenderFrameLimit(manifest.Render.FrameLimit),
	)
	defer eng.Release()

	eng.Run()
	return 0
}

func rendererOptions(rc config.RenderConfig) []renderer.RendererBuilderOption {
	var opts []renderer.RendererBuilderOption
	if rc.PresentMode == "uncapped" {
		opts = append(opts, renderer.WithPresentMode(renderer.PresentModeUncapped))
	} else {
		opts = append(opts, renderer.WithPresentMode(renderer.PresentModeVSync))
	}
	switch rc.MSAA {
	case 1:
		opts = append(opts, renderer.WithMSAA(renderer.MSAAOff))
	case 4:
		opts = append(opts, renderer.WithMSAA(renderer.MSAA4x))
	}
	return append(opts,
		renderer.WithForceSoftwareRenderer(rc.Software),
		renderer.WithUniformArenaSize(rc.UniformArenaSize),
	)
}

func windowOptions(wc config.WindowConfig) []window.WindowBuilderOption {
	opts := []window.WindowBuilderOption{
		window.WithTitle(wc.Title),
		window.WithSize(wc.Width, wc.Height),
		window.WithCursorCaptured(wc.CaptureCursor),
	}
	if wc.MinWidth > 0 || wc.MinHeight > 0 {
		minWidth, minHeight := window.DontCare, window.DontCare
		if wc.MinWidth > 0 {
			minWidth = wc.MinWidth
		}
		if wc.MinHeight > 0 {
			minHeight = wc.MinHeight
		}
		opts = append(opts, window.WithSizeLimits(minWidth, minHeight, window.DontCare, window.DontCare))
	}
	return opts
}

func modelPipelineOptions(rc config.RenderConfig) []pipeline.PipelineBuilderOption {
	cull := wgpu.CullModeNone
	switch rc.CullMode {
	case "back":
		cull = wgpu.CullModeBack
	case "front":
		cull = wgpu.CullModeFront
	}
	front := wgpu.FrontFaceCCW
	if rc.FrontFace == "cw" {
		front = wgpu.FrontFaceCW
	}
	return []pipeline.PipelineBuilderOption{
		pipeline.WithCullMode(cull),
		pipeline.WithFrontFace(front),
		pipeline.WithBlendEnabled(rc.AlphaBlend),
	}
}

// skyboxPipelineOptions keeps the skybox out of the depth buffer; it is drawn at the far
// plane before the models.
func skyboxPipelineOptions() []pipeline.PipelineBuilderOption {
	return []pipeline.PipelineBuilderOption{
		pipeline.WithDepthWriteEnabled(false),
	}
}

func cameraOptions(cc config.CameraConfig) []camera.CameraBuilderOption {
	opts := []camera.CameraBuilderOption{
		camera.WithPosition(mgl32.Vec3(cc.Position)),
		camera.WithYawPitch(cc.Yaw, cc.Pitch),
	}
	if cc.Speed > 0 {
		opts = append(opts, camera.WithSpeed(cc.Speed))
	}
	if cc.Sensitivity > 0 {
		opts = append(opts, camera.WithSensitivity(cc.Sensitivity))
	}
	if cc.Zoom > 0 {
		opts = append(opts, camera.WithZoom(cc.Zoom))
	}
	return opts
}

// loadPrograms links the model and skybox programs, reading any stage the manifest
// overrides from disk.
func loadPrograms(sc config.ShaderConfig) (shader.Program, shader.Program, error) {
	modelProgram, err := linkProgram(builtin.ModelProgramKey, sc.Model, builtin.ModelVertexSource, builtin.ModelFragmentSource)
	if err != nil {
		return nil, nil, err
	}
	skyboxProgram, err := linkProgram(builtin.SkyboxProgramKey, sc.Skybox, builtin.SkyboxVertexSource, builtin.SkyboxFragmentSource)
	if err != nil {
		return nil, nil, err
	}
	return modelProgram, skyboxProgram, nil
}

func linkProgram(key string, pc config.ProgramConfig, vertexSource, fragmentSource string) (shader.Program, error) {
	roots := config.AssetRoots()
	stage := func(shaderType shader.ShaderType, suffix, path, source string) (shader.Shader, error) {
		if path == "" {
			return shader.NewShader(key+suffix, shaderType, source), nil
		}
		s, err := shader.NewShaderFromFile(key+suffix, shaderType, config.Resolve(roots, path))
		return s, errors.Wrapf(err, "%s shader", key+suffix)
	}

	vertex, err := stage(shader.ShaderTypeVertex, ".vert", pc.Vertex, vertexSource)
	if err != nil {
		return nil, err
	}
	fragment, err := stage(shader.ShaderTypeFragment, ".frag", pc.Fragment, fragmentSource)
	if err != nil {
		return nil, err
	}

	var opts []shader.ProgramBuilderOption
	if pc.Uniforms != nil {
		opts = append(opts, shader.WithUniformBinding(pc.Uniforms[0], pc.Uniforms[1]))
	}
	if pc.TextureGroup != nil {
		opts = append(opts, shader.WithTextureGroup(*pc.TextureGroup))
	}
	p, err := shader.NewProgram(key, vertex, fragment, opts...)
	return p, errors.Wrapf(err, "link %s program", key)
}
