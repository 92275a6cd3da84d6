package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"regexp"
	"runtime"
	"sort"
	"strconv"

	"github.com/polyfloyd/glinit/egl"
	"github.com/polyfloyd/glinit/program"
	"github.com/polyfloyd/glinit/translate"
	"github.com/polyfloyd/glinit/window"
)

func main() {
	log.SetOutput(os.Stderr)
	// Lock this goroutine to the current thread. This is required because
	// OpenGL contexts are bound to threads.
	runtime.LockOSThread()

	var vertFiles, fragFiles arrayFlags
	flag.Var(&vertFiles, "vert", "The vertex shader file(s) to use")
	flag.Var(&fragFiles, "frag", "The fragment shader file(s) to use")
	geometry := flag.String("g", "1x1", "The size of the drawing surface in WIDTHxHEIGHT format. If \"env\", look for the GLINIT_GEOMETRY variable")
	headless := flag.Bool("headless", true, "Use an offscreen EGL surface instead of a window")
	debug := flag.Bool("debug", true, "Check every OpenGL call for errors")
	webgl := flag.Bool("webgl", false, "Translate the sources from WebGL GLSL before compiling")
	watch := flag.Bool("w", false, "Watch the shader source files for changes")
	color := flag.Bool("color", isTerminal(os.Stderr), "Use colors when printing compile errors")
	flag.Parse()

	if len(vertFiles) == 0 || len(fragFiles) == 0 {
		log.Fatalf("Please specify at least one vertex shader with -vert and one fragment shader with -frag")
	}

	width, height, err := parseGeometry(*geometry)
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt)
		<-sig
		signal.Stop(sig)
		cancel()
	}()

	b := builder{
		vertFiles: vertFiles,
		fragFiles: fragFiles,
		webgl:     *webgl,
		out:       os.Stdout,
		errOut:    os.Stderr,
		color:     *color,
	}
	if err := run(ctx, b, width, height, *headless, *debug, *watch); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, b builder, width, height uint, headless, debug, watch bool) error {
	surface, err := openSurface(width, height, headless)
	if err != nil {
		log.Printf("Could not create a surface: %v", err)
		return err
	}
	defer surface.Close()

	b.cx, err = program.GetContext(surface, program.Debug(debug))
	if err != nil {
		log.Printf("Could not get an OpenGL context: %v", err)
		return err
	}
	defer b.cx.Close()

	if watch {
		watchSources(ctx, b.build)
		return nil
	}
	_, err = b.build(ctx)
	return err
}

type surface interface {
	program.Surface
	io.Closer
}

func openSurface(width, height uint, headless bool) (surface, error) {
	if headless {
		h, err := egl.NewHeadless(width, height)
		if err != nil {
			return nil, err
		}
		log.Printf("EGL vendor: %s, client APIs: %v", h.Display.Vendor(), h.Display.ClientAPIs())
		return h, nil
	}
	win, err := window.New(int(width), int(height), "glinit", false)
	if err != nil {
		return nil, err
	}
	return windowSurface{win}, nil
}

type windowSurface struct {
	*window.Window
}

func (w windowSurface) Close() error {
	w.Window.Close()
	window.Terminate()
	return nil
}

// builder links the program from the configured files.
type builder struct {
	cx        *program.Context
	vertFiles []string
	fragFiles []string
	webgl     bool

	out    io.Writer
	errOut io.Writer
	color  bool
}

// build (re)links the program, prints its variables and returns the files
// that were read.
func (b builder) build(ctx context.Context) ([]string, error) {
	vert, vertDeps, err := loadSources(ctx, program.StageVertex, b.vertFiles, b.webgl)
	if err != nil {
		log.Println(err)
		return vertDeps, err
	}
	frag, fragDeps, err := loadSources(ctx, program.StageFragment, b.fragFiles, b.webgl)
	files := append(vertDeps, fragDeps...)
	if err != nil {
		log.Println(err)
		return files, err
	}

	if err := program.InitShaders(b.cx, vert, frag); err != nil {
		var cerr program.CompileError
		if errors.As(err, &cerr) {
			cerr.PrettyPrint(b.errOut, b.color)
		}
		return files, err
	}
	program.LoadVariableLocations(b.cx, b.cx.Program)
	printVariables(b.out, b.cx.Program)
	return files, nil
}

func loadSources(ctx context.Context, stage program.Stage, filenames []string, webgl bool) ([]program.Source, []string, error) {
	files, err := program.Includes(filenames...)
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Filename
	}
	if err != nil {
		// Still watch the files as given so a fix is picked up.
		return nil, filenames, err
	}
	sources := program.SourceFiles(files...)
	if !webgl {
		return sources, names, nil
	}
	translated, err := translate.WebGL(ctx, stage, sources...)
	if err != nil {
		return nil, names, err
	}
	return []program.Source{translated}, names, nil
}

func printVariables(out io.Writer, p *program.Program) {
	attribs := make([]program.Attribute, 0, len(p.Attribs))
	for _, a := range p.Attribs {
		attribs = append(attribs, a)
	}
	sort.Slice(attribs, func(i, j int) bool { return attribs[i].Location < attribs[j].Location })
	for _, a := range attribs {
		fmt.Fprintln(out, a)
	}

	names := make([]string, 0, len(p.Uniforms))
	for name := range p.Uniforms {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintln(out, p.Uniforms[name])
	}
}

func parseGeometry(geom string) (uint, uint, error) {
	if geom == "env" {
		geom = os.Getenv("GLINIT_GEOMETRY")
		if geom == "" {
			return 0, 0, fmt.Errorf("GLINIT_GEOMETRY is empty while instructed to load the surface geometry from the environment")
		}
	}

	re := regexp.MustCompile(`^(\d+)x(\d+)$`)
	matches := re.FindStringSubmatch(geom)
	if matches == nil {
		return 0, 0, fmt.Errorf("invalid geometry: %q", geom)
	}
	w, _ := strconv.ParseUint(matches[1], 10, 32)
	h, _ := strconv.ParseUint(matches[2], 10, 32)
	if w == 0 || h == 0 {
		return 0, 0, fmt.Errorf("no geometry dimension can be 0, got (%d, %d)", w, h)
	}
	return uint(w), uint(h), nil
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

type arrayFlags []string

func (i *arrayFlags) String() string {
	return "more of the same"
}

func (i *arrayFlags) Set(value string) error {
	*i = append(*i, value)
	return nil
}
