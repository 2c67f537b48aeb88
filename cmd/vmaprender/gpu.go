//go:build !nogpu

package main

// GPU acceleration for overlay rasterization. Build with -tags nogpu for a
// CPU-only binary.
import _ "github.com/gogpu/gg/gpu"
