// Package softgl provides a small, predictable software 3D engine.
//
// It covers what a single-model viewer needs: a flat scene graph, a perspective
// camera, ambient and directional lights, Lambert materials, linear fog, a
// directional shadow map and an orbit controller. It is not a game engine and
// does not provide a GPU abstraction.
//
// Pipeline (fixed):
//
//	Scene → Shadow pass → Transform → Projection → Flat shading → Rasterization → Surface.
//
// The renderer owns an *image.RGBA surface and can also draw into any Target.
// Rasterization is split into row bands that run on separate goroutines when
// more than one worker is configured.
package softgl
