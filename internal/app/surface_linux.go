//go:build linux && !wayland

package app

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/rajveermalviya/go-webgpu/wgpu"
)

const instanceBackends = wgpu.InstanceBackend_Vulkan

// CreateSurface wraps the window's X11 handle in a WebGPU surface
func CreateSurface(instance *wgpu.Instance, window *glfw.Window) *wgpu.Surface {
	display := glfw.GetX11Display()
	if display == nil {
		fmt.Println("Error: no X11 display")
		return nil
	}

	return instance.CreateSurface(&wgpu.SurfaceDescriptor{
		Label: "MeshViewerSurface",
		XlibWindow: &wgpu.SurfaceDescriptorFromXlibWindow{
			Display: unsafe.Pointer(display),
			Window:  uint32(window.GetX11Window()),
		},
	})
}
