package renderer

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rajveermalviya/go-webgpu/wgpu"

	"meshviewer/internal/assets"
	"meshviewer/internal/camera"
	"meshviewer/internal/scene"
)

const (
	DepthFormat = wgpu.TextureFormat_Depth24Plus

	placeholderSize  = 256
	placeholderCells = 8
)

// Options are the renderer settings taken from the configuration
type Options struct {
	PointSize      float32
	LightPosition  mgl32.Vec3
	MaxTextureSize int
}

// Texture holds GPU resources for a sampled image
type Texture struct {
	Texture *wgpu.Texture
	View    *wgpu.TextureView
}

func (t *Texture) release() {
	if t == nil {
		return
	}
	t.View.Release()
	t.Texture.Release()
}

// Renderer handles all WebGPU rendering
type Renderer struct {
	device          *wgpu.Device
	queue           *wgpu.Queue
	surface         *wgpu.Surface
	adapter         *wgpu.Adapter
	swapChain       *wgpu.SwapChain
	swapChainFormat wgpu.TextureFormat
	depth           *Texture

	pointPipeline    *wgpu.RenderPipeline
	linePipeline     *wgpu.RenderPipeline
	trianglePipeline *wgpu.RenderPipeline
	sampler          *wgpu.Sampler
	bindGroupLayout  *wgpu.BindGroupLayout

	cornerBuffer *wgpu.Buffer
	meshBuffer   *wgpu.Buffer
	meshCount    uint32

	placeholder *Texture
	texture     *Texture

	opts Options

	width  uint32
	height uint32
}

// NewRenderer creates a new WebGPU renderer
func NewRenderer(adapter *wgpu.Adapter, device *wgpu.Device, queue *wgpu.Queue, surface *wgpu.Surface, width, height uint32, opts Options) (*Renderer, error) {
	r := &Renderer{
		adapter: adapter,
		device:  device,
		queue:   queue,
		surface: surface,
		width:   width,
		height:  height,
		opts:    opts,
	}

	if err := r.init(); err != nil {
		r.Release()
		return nil, err
	}

	return r, nil
}

func (r *Renderer) init() error {
	// Get preferred format
	r.swapChainFormat = r.surface.GetPreferredFormat(r.adapter)

	if err := r.createTargets(); err != nil {
		return err
	}

	shader, err := r.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "scene_shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: SceneShader},
	})
	if err != nil {
		return fmt.Errorf("shader creation failed: %w", err)
	}
	defer shader.Release()

	// Create sampler
	r.sampler, err = r.device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:   wgpu.AddressMode_Repeat,
		AddressModeV:   wgpu.AddressMode_Repeat,
		AddressModeW:   wgpu.AddressMode_ClampToEdge,
		MagFilter:      wgpu.FilterMode_Linear,
		MinFilter:      wgpu.FilterMode_Linear,
		MipmapFilter:   wgpu.MipmapFilterMode_Nearest,
		MaxAnisotrophy: 1,
	})
	if err != nil {
		return fmt.Errorf("sampler creation failed: %w", err)
	}

	// Create bind group layout
	r.bindGroupLayout, err = r.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "scene_bind_group_layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStage_Vertex | wgpu.ShaderStage_Fragment,
				Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingType_Uniform},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStage_Fragment,
				Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingType_Filtering},
			},
			{
				Binding:    2,
				Visibility: wgpu.ShaderStage_Fragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleType_Float,
					ViewDimension: wgpu.TextureViewDimension_2D,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("bind group layout creation failed: %w", err)
	}

	pipelineLayout, err := r.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "scene_pipeline_layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{r.bindGroupLayout},
	})
	if err != nil {
		return fmt.Errorf("pipeline layout creation failed: %w", err)
	}
	defer pipelineLayout.Release()

	vertexLayout := wgpu.VertexBufferLayout{
		ArrayStride: uint64(unsafe.Sizeof(scene.Vertex{})),
		StepMode:    wgpu.VertexStepMode_Vertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormat_Float32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormat_Float32x3, Offset: 12, ShaderLocation: 1},
			{Format: wgpu.VertexFormat_Float32x3, Offset: 24, ShaderLocation: 2},
			{Format: wgpu.VertexFormat_Float32x2, Offset: 36, ShaderLocation: 3},
		},
	}

	// Point sprites read one scene vertex per instance and a quad corner per vertex
	instanceLayout := vertexLayout
	instanceLayout.StepMode = wgpu.VertexStepMode_Instance
	cornerLayout := wgpu.VertexBufferLayout{
		ArrayStride: uint64(unsafe.Sizeof([2]float32{})),
		StepMode:    wgpu.VertexStepMode_Vertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormat_Float32x2, Offset: 0, ShaderLocation: 4},
		},
	}

	r.pointPipeline, err = r.createPipeline("point_pipeline", shader, pipelineLayout, "vs_point",
		[]wgpu.VertexBufferLayout{instanceLayout, cornerLayout}, wgpu.PrimitiveTopology_TriangleList)
	if err != nil {
		return err
	}
	r.linePipeline, err = r.createPipeline("line_pipeline", shader, pipelineLayout, "vs_main",
		[]wgpu.VertexBufferLayout{vertexLayout}, wgpu.PrimitiveTopology_LineList)
	if err != nil {
		return err
	}
	r.trianglePipeline, err = r.createPipeline("triangle_pipeline", shader, pipelineLayout, "vs_main",
		[]wgpu.VertexBufferLayout{vertexLayout}, wgpu.PrimitiveTopology_TriangleList)
	if err != nil {
		return err
	}

	r.cornerBuffer, err = r.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "point_corners",
		Contents: wgpu.ToBytes(pointCorners),
		Usage:    wgpu.BufferUsage_Vertex,
	})
	if err != nil {
		return fmt.Errorf("corner buffer creation failed: %w", err)
	}

	// Create placeholder texture
	r.placeholder, err = r.createTexture(Checkerboard(placeholderSize, placeholderCells))
	if err != nil {
		return fmt.Errorf("placeholder creation failed: %w", err)
	}

	return nil
}

func (r *Renderer) createPipeline(label string, shader *wgpu.ShaderModule, layout *wgpu.PipelineLayout, entry string, buffers []wgpu.VertexBufferLayout, topology wgpu.PrimitiveTopology) (*wgpu.RenderPipeline, error) {
	pipeline, err := r.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  label,
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: entry,
			Buffers:    buffers,
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    r.swapChainFormat,
				Blend:     &wgpu.BlendState_Replace,
				WriteMask: wgpu.ColorWriteMask_All,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  topology,
			FrontFace: wgpu.FrontFace_CCW,
			CullMode:  wgpu.CullMode_None,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            DepthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunction_LessEqual,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunction_Always},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunction_Always},
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s creation failed: %w", label, err)
	}
	return pipeline, nil
}

// createTargets (re)creates the swap chain and the matching depth buffer
func (r *Renderer) createTargets() error {
	var err error
	r.swapChain, err = r.device.CreateSwapChain(r.surface, &wgpu.SwapChainDescriptor{
		Usage:       wgpu.TextureUsage_RenderAttachment,
		Format:      r.swapChainFormat,
		Width:       r.width,
		Height:      r.height,
		PresentMode: wgpu.PresentMode_Fifo,
	})
	if err != nil {
		return fmt.Errorf("swap chain creation failed: %w", err)
	}

	texture, err := r.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "depth_texture",
		Size: wgpu.Extent3D{
			Width:              r.width,
			Height:             r.height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension_2D,
		Format:        DepthFormat,
		Usage:         wgpu.TextureUsage_RenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("depth texture creation failed: %w", err)
	}
	view, err := texture.CreateView(&wgpu.TextureViewDescriptor{
		Format:          DepthFormat,
		Dimension:       wgpu.TextureViewDimension_2D,
		MipLevelCount:   1,
		ArrayLayerCount: 1,
		Aspect:          wgpu.TextureAspect_DepthOnly,
	})
	if err != nil {
		texture.Release()
		return fmt.Errorf("depth view creation failed: %w", err)
	}
	r.depth = &Texture{Texture: texture, View: view}
	return nil
}

func (r *Renderer) releaseTargets() {
	r.depth.release()
	r.depth = nil
	if r.swapChain != nil {
		r.swapChain.Release()
		r.swapChain = nil
	}
}

func (r *Renderer) createTexture(img *image.RGBA) (*Texture, error) {
	texture, err := r.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "scene_texture",
		Size: wgpu.Extent3D{
			Width:              uint32(img.Bounds().Dx()),
			Height:             uint32(img.Bounds().Dy()),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension_2D,
		Format:        wgpu.TextureFormat_RGBA8UnormSrgb,
		Usage:         wgpu.TextureUsage_TextureBinding | wgpu.TextureUsage_CopyDst,
	})
	if err != nil {
		return nil, err
	}

	r.queue.WriteTexture(
		&wgpu.ImageCopyTexture{Texture: texture, MipLevel: 0, Origin: wgpu.Origin3D{}, Aspect: wgpu.TextureAspect_All},
		img.Pix,
		&wgpu.TextureDataLayout{Offset: 0, BytesPerRow: uint32(img.Stride), RowsPerImage: uint32(img.Bounds().Dy())},
		&wgpu.Extent3D{Width: uint32(img.Bounds().Dx()), Height: uint32(img.Bounds().Dy()), DepthOrArrayLayers: 1},
	)

	view, err := texture.CreateView(&wgpu.TextureViewDescriptor{
		Format:          wgpu.TextureFormat_RGBA8UnormSrgb,
		Dimension:       wgpu.TextureViewDimension_2D,
		BaseMipLevel:    0,
		MipLevelCount:   1,
		BaseArrayLayer:  0,
		ArrayLayerCount: 1,
		Aspect:          wgpu.TextureAspect_All,
	})
	if err != nil {
		texture.Release()
		return nil, err
	}

	return &Texture{Texture: texture, View: view}, nil
}

// SetTexture uploads the image sampled in textured modes, replacing any
// previous one
func (r *Renderer) SetTexture(img image.Image) error {
	tex, err := r.createTexture(assets.FitImage(img, r.opts.MaxTextureSize))
	if err != nil {
		return fmt.Errorf("texture upload failed: %w", err)
	}
	r.texture.release()
	r.texture = tex
	return nil
}

// SetMesh uploads the mesh triangle list drawn when a frame asks for it
func (r *Renderer) SetMesh(vertices []scene.Vertex) error {
	if r.meshBuffer != nil {
		r.meshBuffer.Release()
		r.meshBuffer = nil
		r.meshCount = 0
	}
	if len(vertices) == 0 {
		return nil
	}

	buf, err := r.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "mesh_vertices",
		Contents: wgpu.ToBytes(vertices),
		Usage:    wgpu.BufferUsage_Vertex,
	})
	if err != nil {
		return fmt.Errorf("mesh buffer creation failed: %w", err)
	}
	r.meshBuffer = buf
	r.meshCount = uint32(len(vertices))
	return nil
}

func (r *Renderer) textureView() *wgpu.TextureView {
	if r.texture != nil {
		return r.texture.View
	}
	return r.placeholder.View
}

// frameResources collects the per-frame buffers and bind groups released
// after submission
type frameResources struct {
	buffers    []*wgpu.Buffer
	bindGroups []*wgpu.BindGroup
}

func (f *frameResources) release() {
	for _, bg := range f.bindGroups {
		bg.Release()
	}
	for _, b := range f.buffers {
		b.Release()
	}
}

func (r *Renderer) vertexBuffer(res *frameResources, label string, vertices []scene.Vertex) (*wgpu.Buffer, error) {
	buf, err := r.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label,
		Contents: wgpu.ToBytes(vertices),
		Usage:    wgpu.BufferUsage_Vertex,
	})
	if err != nil {
		return nil, err
	}
	res.buffers = append(res.buffers, buf)
	return buf, nil
}

func (r *Renderer) bindGroup(res *frameResources, label string, u Uniforms) (*wgpu.BindGroup, error) {
	uniformBuffer, err := r.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label + "_uniform",
		Contents: wgpu.ToBytes([]Uniforms{u}),
		Usage:    wgpu.BufferUsage_Uniform,
	})
	if err != nil {
		return nil, err
	}
	res.buffers = append(res.buffers, uniformBuffer)

	bg, err := r.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  label + "_bind_group",
		Layout: r.bindGroupLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: uniformBuffer, Size: uint64(unsafe.Sizeof(Uniforms{}))},
			{Binding: 1, Sampler: r.sampler},
			{Binding: 2, TextureView: r.textureView()},
		},
	})
	if err != nil {
		return nil, err
	}
	res.bindGroups = append(res.bindGroups, bg)
	return bg, nil
}

// Render draws one frame: the axes, then the frame's primitives with its model
// transform
func (r *Renderer) Render(frame scene.Frame, cam *camera.Camera) error {
	if r.swapChain == nil || r.depth == nil {
		return fmt.Errorf("no render target")
	}
	view, err := r.swapChain.GetCurrentTextureView()
	if err != nil {
		return err
	}
	defer view.Release()

	res := &frameResources{}
	defer res.release()

	viewProj := cam.ViewProjection()
	params := DrawParams{
		ViewProjection: viewProj,
		Model:          mgl32.Ident4(),
		Light:          r.opts.LightPosition,
		PointSize:      r.opts.PointSize,
		Width:          r.width,
		Height:         r.height,
	}
	axesGroup, err := r.bindGroup(res, "axes", NewUniforms(params))
	if err != nil {
		return err
	}
	params.Model = frame.Model
	params.Lit = frame.Lit
	params.Textured = frame.Textured
	objectGroup, err := r.bindGroup(res, "object", NewUniforms(params))
	if err != nil {
		return err
	}

	encoder, err := r.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{})
	if err != nil {
		return err
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOp_Clear,
			StoreOp:    wgpu.StoreOp_Store,
			ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1.0},
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            r.depth.View,
			DepthLoadOp:     wgpu.LoadOp_Clear,
			DepthStoreOp:    wgpu.StoreOp_Store,
			DepthClearValue: 1.0,
		},
	})

	draw := func(pipeline *wgpu.RenderPipeline, group *wgpu.BindGroup, label string, vertices []scene.Vertex) error {
		if len(vertices) == 0 {
			return nil
		}
		buf, err := r.vertexBuffer(res, label, vertices)
		if err != nil {
			return err
		}
		pass.SetPipeline(pipeline)
		pass.SetBindGroup(0, group, nil)
		pass.SetVertexBuffer(0, buf, 0, wgpu.WholeSize)
		pass.Draw(uint32(len(vertices)), 1, 0, 0)
		return nil
	}

	var drawErr error
	if err := draw(r.linePipeline, axesGroup, "axes", frame.Axes); err != nil {
		drawErr = err
	}
	if err := draw(r.linePipeline, objectGroup, "lines", frame.Lines); err != nil {
		drawErr = err
	}
	if err := draw(r.trianglePipeline, objectGroup, "triangles", frame.Triangles); err != nil {
		drawErr = err
	}

	if len(frame.Points) > 0 {
		buf, err := r.vertexBuffer(res, "points", frame.Points)
		if err != nil {
			drawErr = err
		} else {
			pass.SetPipeline(r.pointPipeline)
			pass.SetBindGroup(0, objectGroup, nil)
			pass.SetVertexBuffer(0, buf, 0, wgpu.WholeSize)
			pass.SetVertexBuffer(1, r.cornerBuffer, 0, wgpu.WholeSize)
			pass.Draw(uint32(len(pointCorners)), uint32(len(frame.Points)), 0, 0)
		}
	}

	if frame.DrawMesh && r.meshBuffer != nil {
		pass.SetPipeline(r.trianglePipeline)
		pass.SetBindGroup(0, objectGroup, nil)
		pass.SetVertexBuffer(0, r.meshBuffer, 0, wgpu.WholeSize)
		pass.Draw(r.meshCount, 1, 0, 0)
	}

	pass.End()
	if drawErr != nil {
		return fmt.Errorf("vertex upload failed: %w", drawErr)
	}

	cmdBuffer, err := encoder.Finish(&wgpu.CommandBufferDescriptor{})
	if err != nil {
		return err
	}
	defer cmdBuffer.Release()

	r.queue.Submit(cmdBuffer)
	r.swapChain.Present()

	return nil
}

// Resize handles window resize
func (r *Renderer) Resize(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	r.width = width
	r.height = height

	r.releaseTargets()
	if err := r.createTargets(); err != nil {
		fmt.Printf("Failed to recreate render targets: %v\n", err)
	}
}

// Release frees all GPU resources
func (r *Renderer) Release() {
	r.texture.release()
	r.texture = nil
	r.placeholder.release()
	r.placeholder = nil

	if r.meshBuffer != nil {
		r.meshBuffer.Release()
		r.meshBuffer = nil
	}
	if r.cornerBuffer != nil {
		r.cornerBuffer.Release()
		r.cornerBuffer = nil
	}
	for _, p := range []**wgpu.RenderPipeline{&r.pointPipeline, &r.linePipeline, &r.trianglePipeline} {
		if *p != nil {
			(*p).Release()
			*p = nil
		}
	}
	if r.bindGroupLayout != nil {
		r.bindGroupLayout.Release()
		r.bindGroupLayout = nil
	}
	if r.sampler != nil {
		r.sampler.Release()
		r.sampler = nil
	}
	r.releaseTargets()
}
