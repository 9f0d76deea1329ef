package jar

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/dhamidi/apisurf/classfile"
	"github.com/dhamidi/apisurf/model"
)

func TestSplitInternalName(t *testing.T) {
	tests := []struct {
		internal string
		pkg      string
		name     string
		ok       bool
	}{
		{"test/pkg/Foo", "test.pkg", "Foo", true},
		{"test/pkg/Outer$Inner", "test.pkg", "Outer.Inner", true},
		{"Foo", "", "Foo", true},
		{"test/pkg/Foo$1", "", "", false},
		{"test/pkg/Foo$1Local", "", "", false},
	}
	for _, tt := range tests {
		pkg, name, ok := splitInternalName(tt.internal)
		if pkg != tt.pkg || name != tt.name || ok != tt.ok {
			t.Errorf("splitInternalName(%q) = %q, %q, %v, want %q, %q, %v",
				tt.internal, pkg, name, ok, tt.pkg, tt.name, tt.ok)
		}
	}
}

func buildCodebase(t *testing.T, classes ...*classfile.Class) *model.Codebase {
	t.Helper()
	cb := model.NewCodebase("test.jar", model.OriginBytecode)
	for _, cf := range classes {
		if err := AddClass(cb, cf, "test.jar!"+cf.Name+".class"); err != nil {
			t.Fatalf("AddClass(%s) failed: %v", cf.Name, err)
		}
	}
	if err := cb.PostProcess(); err != nil {
		t.Fatalf("PostProcess failed: %v", err)
	}
	cb.Freeze()
	return cb
}

func TestAddClassBuildsModel(t *testing.T) {
	cf := &classfile.Class{
		AccessFlags: classfile.AccPublic | classfile.AccSuper,
		Name:        "test/pkg/Foo",
		SuperClass:  "java/lang/Object",
		Interfaces:  []string{"java/lang/Runnable"},
		Fields: []classfile.Field{
			{
				AccessFlags:   classfile.AccPublic | classfile.AccStatic | classfile.AccFinal,
				Name:          "LIMIT",
				Descriptor:    "I",
				ConstantValue: "42",
				HasConstant:   true,
			},
		},
		Methods: []classfile.Method{
			{
				AccessFlags: classfile.AccPublic,
				Name:        "<init>",
				Descriptor:  "()V",
			},
			{
				AccessFlags: classfile.AccPublic,
				Name:        "run",
				Descriptor:  "()V",
				Exceptions:  []string{"java/io/IOException"},
				Deprecated:  true,
			},
			{
				AccessFlags: classfile.AccPublic | classfile.AccBridge | classfile.AccSynthetic,
				Name:        "compareTo",
				Descriptor:  "(Ljava/lang/Object;)I",
			},
			{
				AccessFlags: classfile.AccStatic,
				Name:        "<clinit>",
				Descriptor:  "()V",
			},
		},
	}

	cb := buildCodebase(t, cf)
	cls := cb.FindClass("test.pkg.Foo")
	if cls == nil {
		t.Fatal("class test.pkg.Foo not built")
	}
	if cls.Origin() != model.OriginBytecode {
		t.Errorf("got origin %q, want bytecode", cls.Origin())
	}
	if cls.SuperClassType() != nil {
		t.Errorf("got superclass %v, want none for direct Object subclass", cls.SuperClassType())
	}
	if len(cls.InterfaceTypes()) != 1 || cls.InterfaceTypes()[0].String() != "java.lang.Runnable" {
		t.Errorf("got interfaces %v, want [java.lang.Runnable]", cls.InterfaceTypes())
	}

	if len(cls.Constructors()) != 1 {
		t.Fatalf("got %d constructors, want 1", len(cls.Constructors()))
	}
	ctor := cls.Constructors()[0]
	if ctor.Name() != "Foo" || !ctor.IsConstructor() {
		t.Errorf("got constructor %q, want Foo", ctor.Name())
	}

	if len(cls.Methods()) != 2 {
		t.Fatalf("got %d methods, want 2 (static initializer dropped)", len(cls.Methods()))
	}
	run := cls.Methods()[0]
	if run.Name() != "run" {
		t.Fatalf("got first method %q, want run", run.Name())
	}
	if !run.Deprecated() {
		t.Error("deprecation lost on run()")
	}
	if len(run.ThrowsTypes()) != 1 || run.ThrowsTypes()[0].String() != "java.io.IOException" {
		t.Errorf("got throws %v, want [java.io.IOException]", run.ThrowsTypes())
	}
	bridge := cls.Methods()[1]
	if !bridge.Synthetic() {
		t.Error("bridge method not marked synthetic")
	}

	if len(cls.Fields()) != 1 {
		t.Fatalf("got %d fields, want 1", len(cls.Fields()))
	}
	limit := cls.Fields()[0]
	if limit.ConstantValue() != "42" {
		t.Errorf("got constant %q, want 42", limit.ConstantValue())
	}
	if limit.Type().String() != "int" {
		t.Errorf("got field type %q, want int", limit.Type().String())
	}
}

func TestAddClassGenerics(t *testing.T) {
	cf := &classfile.Class{
		AccessFlags: classfile.AccPublic,
		Name:        "test/pkg/Box",
		SuperClass:  "java/lang/Object",
		Interfaces:  []string{"java/lang/Comparable"},
		Signature:   "<T:Ljava/lang/Object;>Ljava/lang/Object;Ljava/lang/Comparable<TT;>;",
		Methods: []classfile.Method{
			{
				AccessFlags: classfile.AccPublic,
				Name:        "put",
				Descriptor:  "(Ljava/lang/Object;)Ljava/lang/Object;",
				Signature:   "(TT;)TT;",
			},
		},
	}

	cb := buildCodebase(t, cf)
	cls := cb.FindClass("test.pkg.Box")
	if cls == nil {
		t.Fatal("class test.pkg.Box not built")
	}
	if got := cls.TypeParameters().String(); got != "<T>" {
		t.Errorf("got type parameters %q, want <T>", got)
	}
	if len(cls.InterfaceTypes()) != 1 || cls.InterfaceTypes()[0].String() != "java.lang.Comparable<T>" {
		t.Errorf("got interfaces %v, want [java.lang.Comparable<T>]", cls.InterfaceTypes())
	}

	put := cls.Methods()[0]
	if got := put.ReturnType().String(); got != "T" {
		t.Errorf("got return type %q, want T", got)
	}
	if got := put.Parameters()[0].Type().Kind; got != model.TypeVariable {
		t.Errorf("got parameter kind %v, want type variable", got)
	}
}

func TestAddClassUsesInnerClassFlags(t *testing.T) {
	cf := &classfile.Class{
		// Nested classes lose protected/static at the class level.
		AccessFlags: classfile.AccPublic,
		Name:        "test/pkg/Outer$Inner",
		SuperClass:  "java/lang/Object",
		InnerClasses: []classfile.InnerClass{
			{
				Inner:       "test/pkg/Outer$Inner",
				Outer:       "test/pkg/Outer",
				InnerName:   "Inner",
				AccessFlags: classfile.AccProtected | classfile.AccStatic,
			},
		},
	}
	outer := &classfile.Class{
		AccessFlags: classfile.AccPublic,
		Name:        "test/pkg/Outer",
		SuperClass:  "java/lang/Object",
	}

	cb := buildCodebase(t, outer, cf)
	inner := cb.FindClass("test.pkg.Outer.Inner")
	if inner == nil {
		t.Fatal("nested class not built")
	}
	if inner.Modifiers().Visibility() != model.VisibilityProtected {
		t.Errorf("got visibility %v, want protected from InnerClasses entry", inner.Modifiers().Visibility())
	}
	if !inner.Modifiers().IsStatic() {
		t.Error("static flag lost from InnerClasses entry")
	}
}

func TestAddClassSkipsSyntheticAndAnonymous(t *testing.T) {
	anonymous := &classfile.Class{
		AccessFlags: classfile.AccPublic,
		Name:        "test/pkg/Foo$1",
		SuperClass:  "java/lang/Object",
	}
	synthetic := &classfile.Class{
		AccessFlags: classfile.AccPublic | classfile.AccSynthetic,
		Name:        "test/pkg/Generated",
		SuperClass:  "java/lang/Object",
	}

	cb := buildCodebase(t, anonymous, synthetic)
	if len(cb.AllClasses()) != 0 {
		t.Errorf("got %d classes, want 0", len(cb.AllClasses()))
	}
}

// minimalClassBytes is a bare public class test/Foo extends Object.
func minimalClassBytes() []byte {
	var out bytes.Buffer
	u2 := func(v uint16) {
		var buf [2]byte
		binary.BigEndian.PutUint16(buf[:], v)
		out.Write(buf[:])
	}
	u4 := func(v uint32) {
		var buf [4]byte
		binary.BigEndian.PutUint32(buf[:], v)
		out.Write(buf[:])
	}
	utf8 := func(s string) {
		out.WriteByte(1)
		u2(uint16(len(s)))
		out.WriteString(s)
	}

	u4(0xCAFEBABE)
	u2(0)  // minor
	u2(52) // major
	u2(5)  // pool count
	utf8("test/Foo")
	out.WriteByte(7) // class -> #1
	u2(1)
	utf8("java/lang/Object")
	out.WriteByte(7) // class -> #3
	u2(3)
	u2(0x0021) // public super
	u2(2)      // this
	u2(4)      // super
	u2(0)      // interfaces
	u2(0)      // fields
	u2(0)      // methods
	u2(0)      // attributes
	return out.Bytes()
}

func TestReadArchive(t *testing.T) {
	jarPath := filepath.Join(t.TempDir(), "test.jar")
	var archive bytes.Buffer
	w := zip.NewWriter(&archive)
	entry, err := w.Create("test/Foo.class")
	if err != nil {
		t.Fatalf("creating zip entry: %v", err)
	}
	if _, err := entry.Write(minimalClassBytes()); err != nil {
		t.Fatalf("writing zip entry: %v", err)
	}
	if _, err := w.Create("META-INF/MANIFEST.MF"); err != nil {
		t.Fatalf("creating manifest entry: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	if err := os.WriteFile(jarPath, archive.Bytes(), 0o644); err != nil {
		t.Fatalf("writing jar: %v", err)
	}

	cb, err := Read(jarPath)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !cb.Frozen() {
		t.Error("codebase not frozen after load")
	}
	if cls := cb.FindClass("test.Foo"); cls == nil {
		t.Error("class test.Foo not loaded from jar")
	}
}

func TestReadMissingJar(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "absent.jar")); err == nil {
		t.Fatal("missing jar accepted")
	}
}
