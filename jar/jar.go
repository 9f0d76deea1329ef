// Package jar loads .jar archives into frozen bytecode-backed
// codebases.
package jar

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/flate"

	"github.com/dhamidi/apisurf/classfile"
	"github.com/dhamidi/apisurf/model"
)

// Jars are deflate-heavy; the faster decompressor pays off on
// framework-sized archives. Registered per reader because the global
// zip.RegisterDecompressor panics on the stdlib's own Deflate entry.
func registerDeflate(r *zip.Reader) {
	r.RegisterDecompressor(zip.Deflate, func(r io.Reader) io.ReadCloser {
		return flate.NewReader(r)
	})
}

// Read loads every class of one jar into a new frozen codebase.
func Read(jarPath string) (*model.Codebase, error) {
	return ReadAll(jarPath)
}

// ReadAll loads several jars into one codebase, earlier jars winning on
// duplicate classes the way a classpath does. The result is
// post-processed and frozen.
func ReadAll(jarPaths ...string) (*model.Codebase, error) {
	if len(jarPaths) == 0 {
		return nil, fmt.Errorf("no jar files given")
	}
	cb := model.NewCodebase(strings.Join(jarPaths, ":"), model.OriginBytecode)
	for _, jarPath := range jarPaths {
		if err := readInto(cb, jarPath); err != nil {
			return nil, err
		}
	}
	if err := cb.PostProcess(); err != nil {
		return nil, err
	}
	cb.Freeze()
	return cb, nil
}

func readInto(cb *model.Codebase, jarPath string) error {
	archive, err := zip.OpenReader(jarPath)
	if err != nil {
		return fmt.Errorf("failed to open jar %s: %w", jarPath, err)
	}
	defer archive.Close()
	registerDeflate(&archive.Reader)

	for _, entry := range archive.File {
		if !wantEntry(entry.Name) {
			continue
		}
		if err := loadEntry(cb, jarPath, entry); err != nil {
			return err
		}
	}
	return nil
}

func wantEntry(name string) bool {
	if !strings.HasSuffix(name, ".class") {
		return false
	}
	if strings.HasPrefix(name, "META-INF/") {
		return false
	}
	base := path.Base(name)
	return base != "module-info.class" && base != "package-info.class"
}

func loadEntry(cb *model.Codebase, jarPath string, entry *zip.File) error {
	rc, err := entry.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s!%s: %w", jarPath, entry.Name, err)
	}
	defer rc.Close()

	cf, err := classfile.Parse(rc)
	if err != nil {
		return fmt.Errorf("failed to parse %s!%s: %w", jarPath, entry.Name, err)
	}

	// First definition wins across jars, like classpath resolution.
	if dup := duplicateOf(cb, cf); dup {
		return nil
	}
	return AddClass(cb, cf, jarPath+"!"+entry.Name)
}

func duplicateOf(cb *model.Codebase, cf *classfile.Class) bool {
	pkgName, fullName, ok := splitInternalName(cf.Name)
	if !ok {
		return false
	}
	qualified := fullName
	if pkgName != "" {
		qualified = pkgName + "." + fullName
	}
	existing := cb.FindClass(qualified)
	return existing != nil && !existing.IsStub()
}
