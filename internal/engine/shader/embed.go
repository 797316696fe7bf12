package shader

import _ "embed"

// DefaultVertexShader transforms lit, textured geometry by the object and
// pass constant blocks.
//
//go:embed default.vert
var DefaultVertexShader string

// DefaultFragmentShader shades with the material block and three
// directional lights.
//
//go:embed default.frag
var DefaultFragmentShader string
