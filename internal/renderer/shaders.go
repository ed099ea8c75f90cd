package renderer

// SceneShader draws points, lines and triangles. Points are instanced quads
// expanded in clip space by vs_point.
const SceneShader = `
struct Uniforms {
    mvp: mat4x4<f32>,
    model: mat4x4<f32>,
    light: vec4<f32>,
    // x: lit, y: textured, z: point size in pixels
    params: vec4<f32>,
    // xy: framebuffer size in pixels
    viewport: vec4<f32>,
}

@group(0) @binding(0) var<uniform> u: Uniforms;
@group(0) @binding(1) var texSampler: sampler;
@group(0) @binding(2) var tex: texture_2d<f32>;

struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(1) normal: vec3<f32>,
    @location(2) color: vec3<f32>,
    @location(3) uv: vec2<f32>,
}

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) color: vec3<f32>,
    @location(1) normal: vec3<f32>,
    @location(2) worldPos: vec3<f32>,
    @location(3) uv: vec2<f32>,
}

fn transform(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.position = u.mvp * vec4<f32>(in.position, 1.0);
    out.worldPos = (u.model * vec4<f32>(in.position, 1.0)).xyz;
    out.normal = (u.model * vec4<f32>(in.normal, 0.0)).xyz;
    out.color = in.color;
    out.uv = in.uv;
    return out;
}

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    return transform(in);
}

@vertex
fn vs_point(in: VertexInput, @location(4) corner: vec2<f32>) -> VertexOutput {
    var out = transform(in);
    let px = u.params.z / u.viewport.xy;
    out.position = vec4<f32>(out.position.xy + corner * px * out.position.w, out.position.zw);
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    let texel = textureSample(tex, texSampler, in.uv);
    var base = mix(in.color, texel.rgb, u.params.y);

    if (u.params.x > 0.5) {
        var diffuse = 0.0;
        if (length(in.normal) > 1e-6) {
            let n = normalize(in.normal);
            let l = normalize(u.light.xyz - in.worldPos);
            // Two-sided: back faces are lit as if facing the light
            diffuse = abs(dot(n, l));
        }
        base = base * min(0.2 + diffuse, 1.0);
    }
    return vec4<f32>(base, 1.0);
}
`
