package program

import (
	"os"
	"path/filepath"
	"regexp"
)

var ppIncludeRe = regexp.MustCompile(`(?im)^#pragma\s+use\s+"([^"]+)"$`)

// A Source provides shader source text.
type Source interface {
	Contents() ([]byte, error)
}

type SourceBuf string

func (s SourceBuf) Contents() ([]byte, error) {
	return []byte(s), nil
}

type SourceFile struct {
	Filename string
}

func (s SourceFile) Contents() ([]byte, error) {
	return os.ReadFile(s.Filename)
}

// SourceFiles converts a list of files to a list of sources.
func SourceFiles(files ...SourceFile) []Source {
	sources := make([]Source, len(files))
	for i, f := range files {
		sources[i] = f
	}
	return sources
}

// Includes recursively resolves `#pragma use "file"` directives in the
// specified files. Paths are relative to the including file.
//
// Every dependency is placed before the file that uses it and the argument
// files are included in the returned list. A file is only listed once.
func Includes(filenames ...string) ([]SourceFile, error) {
	return processRecursive(filenames, []SourceFile{}, nil)
}

func processRecursive(filenames []string, sources []SourceFile, including []SourceFile) ([]SourceFile, error) {
	for _, filename := range filenames {
		absFilename, err := filepath.Abs(filename)
		if err != nil {
			return nil, err
		}
		currentFile := SourceFile{Filename: absFilename}
		if containsSource(sources, currentFile) {
			continue
		}
		shaderSource, err := currentFile.Contents()
		if err != nil {
			return nil, err
		}

		// The current file and the files that are including it are only
		// appended after their includes, but take part in the cycle check.
		stack := append(append([]SourceFile{}, including...), currentFile)
		checkset := append(append([]SourceFile{}, sources...), stack...)

		includeMatches := ppIncludeRe.FindAllSubmatch(shaderSource, -1)
		includes := make([]string, 0, len(includeMatches))
		for _, submatch := range includeMatches {
			includedFile := string(submatch[1])
			if !filepath.IsAbs(includedFile) {
				includedFile = filepath.Join(filepath.Dir(absFilename), includedFile)
			} else {
				includedFile = filepath.Clean(includedFile)
			}
			if containsSource(checkset, SourceFile{Filename: includedFile}) {
				continue
			}
			includes = append(includes, includedFile)
		}

		sources, err = processRecursive(includes, sources, stack)
		if err != nil {
			return nil, err
		}
		sources = append(sources, currentFile)
	}
	return sources, nil
}

func containsSource(set []SourceFile, file SourceFile) bool {
	for _, f := range set {
		if f.Filename == file.Filename {
			return true
		}
	}
	return false
}
