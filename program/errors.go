package program

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// CreationError is returned when the context refuses to allocate an object.
type CreationError struct {
	Object string
}

func (err *CreationError) Error() string {
	return fmt.Sprintf("unable to create %s", err.Object)
}

type CompileError struct {
	sources []Source

	stage Stage
	log   string
}

func (err CompileError) Stage() Stage { return err.stage }

// Log returns the driver's info log.
func (err CompileError) Log() string { return err.log }

func (err CompileError) Error() (str string) {
	if err.stage == StageVertex {
		str += "Error compiling vertex shader:\n"
	} else if err.stage == StageFragment {
		str += "Error compiling fragment shader:\n"
	}
	str += err.log
	return
}

var (
	// Mesa: "0:3(2): error: ..."
	mesaMarkerRe = regexp.MustCompile(`^(\d+):(\d+)\(\d+\):`)
	// NVIDIA: "0(3) : error C0000: ..."
	nvidiaMarkerRe = regexp.MustCompile(`^(\d+)\((\d+)\)\s*:`)
)

type marker struct {
	fileno int
	lineno int
	msg    string
}

// markers locates the source and the line within that source of every line
// in the log that refers to a position.
func (err CompileError) markers() []marker {
	// All sources are uploaded as one string, so the driver reports lines
	// relative to the concatenation.
	starts := make([]int, len(err.sources))
	line := 1
	for i, s := range err.sources {
		starts[i] = line
		c, _ := s.Contents()
		line += strings.Count(string(c), "\n") + strings.Count(sourceSeparator, "\n")
	}

	var markers []marker
	for _, l := range strings.Split(err.log, "\n") {
		m := mesaMarkerRe.FindStringSubmatch(l)
		if m == nil {
			m = nvidiaMarkerRe.FindStringSubmatch(l)
		}
		if m == nil {
			continue
		}
		global, _ := strconv.Atoi(m[2])
		fileno := 0
		for i, start := range starts {
			if start <= global {
				fileno = i
			}
		}
		lineno := global
		if len(starts) > 0 {
			lineno = global - starts[fileno] + 1
		}
		markers = append(markers, marker{
			fileno: fileno,
			lineno: lineno,
			msg:    strings.TrimSpace(l[len(m[0]):]),
		})
	}
	return markers
}

// PrettyPrint writes every error in the log along with the offending line of
// source.
func (err CompileError) PrettyPrint(out io.Writer, color bool) {
	bold, red, reset := "", "", ""
	if color {
		bold, red, reset = "\x1b[1m", "\x1b[31m", "\x1b[0m"
	}
	fmt.Fprintf(out, "%sError compiling %s shader:%s\n", bold, err.stage, reset)

	markers := err.markers()
	if len(markers) == 0 {
		fmt.Fprintln(out, err.log)
		return
	}
	for _, m := range markers {
		name := fmt.Sprintf("<source %d>", m.fileno)
		var text string
		if m.fileno < len(err.sources) {
			if sf, ok := err.sources[m.fileno].(SourceFile); ok {
				name = sf.Filename
			}
			text = sourceLine(err.sources[m.fileno], m.lineno)
		}
		fmt.Fprintf(out, "%s%s:%d:%s %s%s%s\n", bold, name, m.lineno, reset, red, m.msg, reset)
		if text != "" {
			fmt.Fprintf(out, "    %s\n", strings.TrimSpace(text))
		}
	}
}

func sourceLine(s Source, lineno int) string {
	c, err := s.Contents()
	if err != nil {
		return ""
	}
	scanner := bufio.NewScanner(strings.NewReader(string(c)))
	for n := 1; scanner.Scan(); n++ {
		if n == lineno {
			return scanner.Text()
		}
	}
	return ""
}

type LinkError struct {
	log string
}

// Log returns the driver's info log.
func (err LinkError) Log() string { return err.log }

func (err LinkError) Error() (str string) {
	return "Error linking program:\n" + err.log
}
