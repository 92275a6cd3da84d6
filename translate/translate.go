// Package translate converts WebGL shaders to the desktop GLSL dialect
// understood by an OpenGL 3.3 core context.
package translate

import (
	"context"
	"fmt"
	"sync"

	gst "github.com/richinsley/goshadertranslator"

	"github.com/polyfloyd/glinit/program"
)

var (
	translatorOnce sync.Once
	translator     *gst.ShaderTranslator
	translatorErr  error
)

func getTranslator(ctx context.Context) (*gst.ShaderTranslator, error) {
	translatorOnce.Do(func() {
		translator, translatorErr = gst.NewShaderTranslator(ctx)
	})
	return translator, translatorErr
}

func stageName(stage program.Stage) (string, error) {
	switch stage {
	case program.StageVertex:
		return "vertex", nil
	case program.StageFragment:
		return "fragment", nil
	}
	return "", fmt.Errorf("invalid pipeline stage: %q", stage)
}

// WebGL translates the concatenated sources of a WebGL shader to GLSL 330.
func WebGL(ctx context.Context, stage program.Stage, sources ...program.Source) (program.Source, error) {
	name, err := stageName(stage)
	if err != nil {
		return nil, err
	}

	var src string
	for _, s := range sources {
		c, err := s.Contents()
		if err != nil {
			return nil, err
		}
		src += string(c) + "\n"
	}

	t, err := getTranslator(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not start the shader translator: %w", err)
	}
	out, err := t.TranslateShader(src, name, gst.ShaderSpecWebGL2, gst.OutputFormatGLSL330)
	if err != nil {
		return nil, fmt.Errorf("%s shader translation failed: %w", name, err)
	}
	return program.SourceBuf(out.Code), nil
}
