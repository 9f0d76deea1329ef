package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhamidi/apisurf/jar"
	"github.com/dhamidi/apisurf/javasrc"
	"github.com/dhamidi/apisurf/model"
	"github.com/dhamidi/apisurf/signature"
)

// loadCodebase builds one codebase from one input: a signature file
// (.txt or .api), a jar, a .java file or a source directory.
func loadCodebase(path string) (*model.Codebase, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		log.Infof("reading sources under %s", path)
		return javasrc.Read(path)
	}
	switch filepath.Ext(path) {
	case ".jar", ".zip":
		log.Infof("reading jar %s", path)
		return jar.Read(path)
	case ".java":
		log.Infof("reading source file %s", path)
		return javasrc.Read(path)
	case ".txt", ".api":
		log.Infof("reading signature file %s", path)
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		cb, _, err := signature.Parse(path, f)
		return cb, err
	}
	return nil, fmt.Errorf("unsupported input %s (expected a signature file, jar, .java file or source directory)", path)
}

// loadMerged builds one codebase from several inputs of the same kind.
// Signature files merge last-wins; jars resolve like a classpath;
// source paths are read as one tree.
func loadMerged(paths []string) (*model.Codebase, error) {
	if len(paths) == 1 {
		return loadCodebase(paths[0])
	}
	kind, err := inputKind(paths[0])
	if err != nil {
		return nil, err
	}
	for _, path := range paths[1:] {
		k, err := inputKind(path)
		if err != nil {
			return nil, err
		}
		if k != kind {
			return nil, fmt.Errorf("mixed input kinds: %s is %s, %s is %s", paths[0], kind, path, k)
		}
	}
	switch kind {
	case "signature":
		return signature.ParseFiles(paths...)
	case "jar":
		return jar.ReadAll(paths...)
	default:
		return javasrc.Read(paths...)
	}
}

func inputKind(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "source", nil
	}
	switch filepath.Ext(path) {
	case ".jar", ".zip":
		return "jar", nil
	case ".java":
		return "source", nil
	case ".txt", ".api":
		return "signature", nil
	}
	return "", fmt.Errorf("unsupported input %s", path)
}

// outputWriter opens the -o target, stdout when empty.
func outputWriter(path string) (*os.File, func(), error) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

func describeInputs(paths []string) string {
	return strings.Join(paths, ", ")
}
