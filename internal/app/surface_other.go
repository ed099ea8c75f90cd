//go:build !darwin && !(linux && !wayland)

package app

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/rajveermalviya/go-webgpu/wgpu"
)

const instanceBackends = wgpu.InstanceBackend_Vulkan

// CreateSurface reports that this build has no window surface; only macOS
// (Metal) and X11 Linux (Vulkan) builds can present
func CreateSurface(instance *wgpu.Instance, window *glfw.Window) *wgpu.Surface {
	fmt.Printf("Error: no WebGPU window surface for %s/%s in this build\n", runtime.GOOS, runtime.GOARCH)
	return nil
}
