package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/pointfield/camera"
	"github.com/pthm-cable/pointfield/scene"
)

// PointRenderer draws scene objects as instanced quads.
type PointRenderer struct {
	shader   rl.Shader
	mesh     rl.Mesh
	material rl.Material

	timeLoc    int32
	randomLoc  int32
	depthLoc   int32
	sizeLoc    int32
	scaleLoc   int32
	texSizeLoc int32
	tintLoc    int32

	initialized bool
}

// NewPointRenderer creates a point renderer. Call Init once the window is open.
func NewPointRenderer() *PointRenderer {
	return &PointRenderer{}
}

// Init compiles the shaders and builds the unit quad.
func (r *PointRenderer) Init() {
	if r.initialized {
		return
	}

	r.shader = rl.LoadShaderFromMemory(pointsVS, pointsFS)
	r.shader.UpdateLocation(rl.ShaderLocMatrixMvp, rl.GetShaderLocation(r.shader, "mvp"))
	r.shader.UpdateLocation(rl.ShaderLocMatrixModel, rl.GetShaderLocationAttrib(r.shader, "instanceTransform"))
	r.shader.UpdateLocation(rl.ShaderLocMapNormal, rl.GetShaderLocation(r.shader, "uTouch"))

	r.timeLoc = rl.GetShaderLocation(r.shader, "uTime")
	r.randomLoc = rl.GetShaderLocation(r.shader, "uRandom")
	r.depthLoc = rl.GetShaderLocation(r.shader, "uDepth")
	r.sizeLoc = rl.GetShaderLocation(r.shader, "uSize")
	r.scaleLoc = rl.GetShaderLocation(r.shader, "uScale")
	r.texSizeLoc = rl.GetShaderLocation(r.shader, "uTextureSize")
	r.tintLoc = rl.GetShaderLocation(r.shader, "uTint")

	r.mesh = rl.GenMeshPlane(1, 1, 1, 1)
	r.material = rl.LoadMaterialDefault()
	r.material.Shader = r.shader

	r.initialized = true
}

// Draw renders every visible object in sc as seen from cam.
func (r *PointRenderer) Draw(dev *Device, sc *scene.Scene, cam *camera.Camera) {
	if !r.initialized {
		r.Init()
	}

	rl.BeginMode3D(toRaylib(cam))
	rl.BeginBlendMode(rl.BlendAdditive)
	sc.Each(func(_ ecs.Entity, obj *scene.Object, tr *scene.Transform, mat *scene.Material) {
		if !mat.Visible || obj.Count == 0 || mat.Uniforms == nil {
			return
		}
		inst, ok := dev.instances[obj.Instances]
		if !ok {
			return
		}
		img, ok := dev.textures[obj.Texture]
		if !ok {
			return
		}

		u := mat.Uniforms
		rl.SetShaderValue(r.shader, r.timeLoc, []float32{u.Time}, rl.ShaderUniformFloat)
		rl.SetShaderValue(r.shader, r.randomLoc, []float32{u.Random}, rl.ShaderUniformFloat)
		rl.SetShaderValue(r.shader, r.depthLoc, []float32{u.Depth}, rl.ShaderUniformFloat)
		rl.SetShaderValue(r.shader, r.sizeLoc, []float32{u.Size}, rl.ShaderUniformFloat)
		rl.SetShaderValue(r.shader, r.scaleLoc, []float32{tr.ScaleY}, rl.ShaderUniformFloat)
		rl.SetShaderValue(r.shader, r.texSizeLoc, []float32{u.TextureW, u.TextureH}, rl.ShaderUniformVec2)
		rl.SetShaderValue(r.shader, r.tintLoc, tint(obj.Kind), rl.ShaderUniformVec3)

		r.material.GetMap(rl.MapDiffuse).Texture = img.tex
		if touch, ok := dev.textures[obj.Touch]; ok {
			r.material.GetMap(rl.MapNormal).Texture = touch.tex
		}

		rl.DrawMeshInstanced(r.mesh, r.material, inst.transforms, len(inst.transforms))
	})
	rl.EndBlendMode()
	rl.EndMode3D()
}

func tint(k scene.Kind) []float32 {
	if k == scene.KindSecondary {
		return []float32{1, 0.2, 0.2}
	}
	return []float32{1, 1, 1}
}

// toRaylib converts cam to a raylib perspective camera.
func toRaylib(cam *camera.Camera) rl.Camera3D {
	p := cam.Position
	return rl.Camera3D{
		Position:   rl.NewVector3(p.X(), p.Y(), p.Z()),
		Target:     rl.NewVector3(p.X(), p.Y(), 0),
		Up:         rl.NewVector3(0, 1, 0),
		Fovy:       mgl32.RadToDeg(cam.FOV),
		Projection: rl.CameraPerspective,
	}
}

// Unload frees the shader and mesh.
func (r *PointRenderer) Unload() {
	if !r.initialized {
		return
	}
	rl.UnloadShader(r.shader)
	rl.UnloadMesh(&r.mesh)
	r.initialized = false
}
