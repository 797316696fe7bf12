package glgpu

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/slash/internal/engine/gpu"
	"github.com/Faultbox/slash/internal/engine/shader"
)

// Pipeline is a linked program with its uniform blocks bound to the root
// slot binding points.
type Pipeline struct {
	program uint32
}

// NewPipeline compiles and links a program. Block names are ObjectCB,
// MaterialCB and PassCB; the diffuse sampler is uDiffuseMap.
func (d *Device) NewPipeline(vertexSrc, fragmentSrc string) (*Pipeline, error) {
	program, err := shader.CompileProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline: %w", err)
	}

	blocks := map[string]gpu.RootSlot{
		"ObjectCB":   gpu.RootObject,
		"MaterialCB": gpu.RootMaterial,
		"PassCB":     gpu.RootPass,
	}
	for name, slot := range blocks {
		if !shader.BindUniformBlock(program, name, blockBindings[slot]) {
			d.log.Warn("uniform block not active", zap.String("block", name))
		}
	}

	gl.UseProgram(program)
	if loc := shader.GetUniform(program, "uDiffuseMap"); loc >= 0 {
		gl.Uniform1i(loc, 0)
	}
	gl.UseProgram(0)

	d.log.Debug("pipeline created", zap.Uint32("program", program))
	return &Pipeline{program: program}, nil
}

// NewDefaultPipeline builds the lit, textured pipeline.
func (d *Device) NewDefaultPipeline() (*Pipeline, error) {
	return d.NewPipeline(shader.DefaultVertexShader, shader.DefaultFragmentShader)
}

// Release deletes the program.
func (p *Pipeline) Release() {
	if p.program != 0 {
		gl.DeleteProgram(p.program)
		p.program = 0
	}
}
