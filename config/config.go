// Package config holds the scene manifest compiled into the viewer: window and camera
// settings, render options, the skybox faces and the models to place.
package config

import (
	"bytes"
	_ "embed"
	"io"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// SkyboxFaceCount is the number of cubemap faces a manifest must list.
const SkyboxFaceCount = 6

//go:embed scene.yaml
var embeddedScene []byte

// Manifest is the parsed scene description.
type Manifest struct {
	LogLevel string       `yaml:"logLevel,omitempty"`
	Window   WindowConfig `yaml:"window"`
	Camera   CameraConfig `yaml:"camera"`
	Render   RenderConfig `yaml:"render"`
	Skybox   SkyboxConfig `yaml:"skybox"`
	Shaders  ShaderConfig `yaml:"shaders,omitempty"`
	Objects  []Object     `yaml:"objects"`
}

// WindowConfig is the initial window. MinWidth and MinHeight bound interactive resizing
// when set.
type WindowConfig struct {
	Title         string `yaml:"title"`
	Width         int    `yaml:"width"`
	Height        int    `yaml:"height"`
	MinWidth      int    `yaml:"minWidth,omitempty"`
	MinHeight     int    `yaml:"minHeight,omitempty"`
	CaptureCursor bool   `yaml:"captureCursor"`
}

type CameraConfig struct {
	Position    [3]float32 `yaml:"position"`
	Yaw         float32    `yaml:"yaw"`
	Pitch       float32    `yaml:"pitch"`
	Speed       float32    `yaml:"speed,omitempty"`
	Sensitivity float32    `yaml:"sensitivity,omitempty"`
	Zoom        float32    `yaml:"zoom,omitempty"`
}

// RenderConfig holds renderer and loading options. PresentMode is "vsync" or "uncapped";
// TextureCache shares GPU textures between meshes loading the same path.
//
// CullMode ("none", "back" or "front") and FrontFace ("ccw" or "cw") set the model
// pipeline's face culling, and AlphaBlend blends model fragments by their alpha. Software
// asks for the CPU fallback adapter.
//
// ProfileInterval is in seconds. UniformArenaSize is the per-frame uniform buffer in bytes.
// FlipUVs flips the V coordinate of OBJ texture coordinates and defaults to true.
type RenderConfig struct {
	PresentMode      string  `yaml:"presentMode,omitempty"`
	MSAA             int     `yaml:"msaa,omitempty"`
	Near             float32 `yaml:"near,omitempty"`
	Far              float32 `yaml:"far,omitempty"`
	FrameLimit       float64 `yaml:"frameLimit,omitempty"`
	Profiling        bool    `yaml:"profiling,omitempty"`
	ProfileInterval  float64 `yaml:"profileInterval,omitempty"`
	TextureCache     bool    `yaml:"textureCache,omitempty"`
	DecodeWorkers    int     `yaml:"decodeWorkers,omitempty"`
	Software         bool    `yaml:"software,omitempty"`
	CullMode         string  `yaml:"cullMode,omitempty"`
	FrontFace        string  `yaml:"frontFace,omitempty"`
	AlphaBlend       bool    `yaml:"alphaBlend,omitempty"`
	UniformArenaSize uint64  `yaml:"uniformArenaSize,omitempty"`
	FlipUVs          *bool   `yaml:"flipUVs,omitempty"`
}

// SkyboxConfig lists the cubemap faces in +X, -X, +Y, -Y, +Z, -Z order.
type SkyboxConfig struct {
	Faces []string `yaml:"faces"`
}

// ShaderConfig overrides the compiled-in programs with WGSL files. Empty paths keep the
// built-in source for that stage.
type ShaderConfig struct {
	Model  ProgramConfig `yaml:"model,omitempty"`
	Skybox ProgramConfig `yaml:"skybox,omitempty"`
}

// ProgramConfig is one program's stage files and where its resources are bound. Uniforms
// is the [group, binding] of the vertex uniform struct, default [0, 0]; TextureGroup
// holds the textures and samplers, default 1.
type ProgramConfig struct {
	Vertex       string  `yaml:"vertex,omitempty"`
	Fragment     string  `yaml:"fragment,omitempty"`
	Uniforms     *[2]int `yaml:"uniforms,omitempty"`
	TextureGroup *int    `yaml:"textureGroup,omitempty"`
}

func (pc ProgramConfig) validate(name string) error {
	if pc.Uniforms != nil && (pc.Uniforms[0] < 0 || pc.Uniforms[1] < 0) {
		return errors.Errorf("%s program: uniform binding must not be negative, got %v", name, *pc.Uniforms)
	}
	if pc.TextureGroup != nil && *pc.TextureGroup < 0 {
		return errors.Errorf("%s program: texture group must not be negative, got %d", name, *pc.TextureGroup)
	}
	return nil
}

// Object is one model file placed in the scene. Scale defaults to (1, 1, 1) when omitted.
type Object struct {
	Name     string      `yaml:"name"`
	Path     string      `yaml:"path"`
	Position [3]float32  `yaml:"position"`
	Scale    *[3]float32 `yaml:"scale,omitempty"`
}

// ScaleOrUnit returns the object's scale, or unit scale when none is set.
//
// Returns:
//   - [3]float32: the per-axis scale
func (o Object) ScaleOrUnit() [3]float32 {
	if o.Scale == nil {
		return [3]float32{1, 1, 1}
	}
	return *o.Scale
}

// Level maps LogLevel to a slog level. Unknown or empty names give info.
//
// Returns:
//   - slog.Level: the level
func (m Manifest) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(m.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func (m *Manifest) normalize() {
	m.LogLevel = strings.ToLower(strings.TrimSpace(m.LogLevel))
	if m.Window.Title == "" {
		m.Window.Title = "Escena Multiplataforma"
	}
	if m.Render.PresentMode == "" {
		m.Render.PresentMode = "vsync"
	}
	m.Render.CullMode = strings.ToLower(strings.TrimSpace(m.Render.CullMode))
	if m.Render.CullMode == "" {
		m.Render.CullMode = "none"
	}
	m.Render.FrontFace = strings.ToLower(strings.TrimSpace(m.Render.FrontFace))
	if m.Render.FrontFace == "" {
		m.Render.FrontFace = "ccw"
	}
	if m.Render.FlipUVs == nil {
		flip := true
		m.Render.FlipUVs = &flip
	}
	if m.Render.Near == 0 {
		m.Render.Near = 0.1
	}
	if m.Render.Far == 0 {
		m.Render.Far = 100
	}
	for i := range m.Objects {
		if m.Objects[i].Name == "" {
			m.Objects[i].Name = m.Objects[i].Path
		}
	}
}

// Validate checks the manifest for values the viewer cannot start with.
//
// Returns:
//   - error: the first problem found, or nil
func (m Manifest) Validate() error {
	if m.Window.Width <= 0 || m.Window.Height <= 0 {
		return errors.Errorf("window size must be positive, got %dx%d", m.Window.Width, m.Window.Height)
	}
	if m.Window.MinWidth < 0 || m.Window.MinHeight < 0 {
		return errors.Errorf("minimum window size must not be negative, got %dx%d", m.Window.MinWidth, m.Window.MinHeight)
	}
	if len(m.Skybox.Faces) != SkyboxFaceCount {
		return errors.Errorf("skybox needs %d faces, got %d", SkyboxFaceCount, len(m.Skybox.Faces))
	}
	if len(m.Objects) == 0 {
		return errors.New("scene has no objects")
	}
	for i, o := range m.Objects {
		if o.Path == "" {
			return errors.Errorf("object %d (%s) has no path", i, o.Name)
		}
	}
	if m.Render.Near <= 0 || m.Render.Far <= m.Render.Near {
		return errors.Errorf("clip planes must satisfy 0 < near < far, got near=%g far=%g", m.Render.Near, m.Render.Far)
	}
	switch m.Render.PresentMode {
	case "vsync", "uncapped":
	default:
		return errors.Errorf("unknown present mode %q", m.Render.PresentMode)
	}
	switch m.Render.MSAA {
	case 0, 1, 4:
	default:
		return errors.Errorf("msaa must be 1 or 4, got %d", m.Render.MSAA)
	}
	switch m.Render.CullMode {
	case "none", "back", "front":
	default:
		return errors.Errorf("unknown cull mode %q", m.Render.CullMode)
	}
	switch m.Render.FrontFace {
	case "ccw", "cw":
	default:
		return errors.Errorf("unknown front face %q", m.Render.FrontFace)
	}
	if m.Render.FrameLimit < 0 {
		return errors.Errorf("frame limit must not be negative, got %g", m.Render.FrameLimit)
	}
	if m.Render.ProfileInterval < 0 {
		return errors.Errorf("profile interval must not be negative, got %g", m.Render.ProfileInterval)
	}
	if err := m.Shaders.Model.validate("model"); err != nil {
		return err
	}
	return m.Shaders.Skybox.validate("skybox")
}

// Parse decodes a YAML manifest, fills defaults and validates it. Unknown keys are rejected.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - Manifest: the parsed manifest
//   - error: error if the document is malformed or invalid
func Parse(data []byte) (Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return Manifest{}, errors.New("parse manifest: empty document")
		}
		return Manifest{}, errors.Wrap(err, "parse manifest")
	}
	m.normalize()
	if err := m.Validate(); err != nil {
		return Manifest{}, errors.Wrap(err, "invalid manifest")
	}
	return m, nil
}

// Default returns the manifest compiled into the binary.
//
// Returns:
//   - Manifest: the embedded manifest
//   - error: error if the embedded document is invalid
func Default() (Manifest, error) {
	return Parse(embeddedScene)
}
