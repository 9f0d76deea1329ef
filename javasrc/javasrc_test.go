package javasrc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dhamidi/apisurf/model"
)

func mustRead(t *testing.T, src string) *model.Codebase {
	t.Helper()
	cb, err := ReadSource("Test.java", []byte(src))
	if err != nil {
		t.Fatalf("ReadSource failed: %v", err)
	}
	return cb
}

func findMethod(t *testing.T, cls *model.ClassItem, name string) *model.MethodItem {
	t.Helper()
	for _, m := range cls.Methods() {
		if m.Name() == name {
			return m
		}
	}
	t.Fatalf("method %s not found on %s", name, cls.QualifiedName())
	return nil
}

func findField(t *testing.T, cls *model.ClassItem, name string) *model.FieldItem {
	t.Helper()
	for _, f := range cls.Fields() {
		if f.Name() == name {
			return f
		}
	}
	t.Fatalf("field %s not found on %s", name, cls.QualifiedName())
	return nil
}

func TestReadSourceBuildsModel(t *testing.T) {
	cb := mustRead(t, `
package test.pkg;

import java.io.IOException;
import java.util.List;

/**
 * A worker.
 */
public class Foo implements Runnable {
    public static final int MAX = 42;

    /** @deprecated scheduled for removal */
    @Deprecated
    public void stop() {}

    public void run() {}

    public List<String> names(int count, String... prefixes) throws IOException {
        return null;
    }

    public static class Builder {
        public Foo build() { return null; }
    }
}
`)
	if !cb.Frozen() {
		t.Error("codebase not frozen after load")
	}
	if cb.Origin() != model.OriginSource {
		t.Errorf("got origin %q, want source", cb.Origin())
	}

	cls := cb.FindClass("test.pkg.Foo")
	if cls == nil {
		t.Fatal("class test.pkg.Foo not built")
	}
	if doc := cls.Documentation(); doc == "" {
		t.Error("class doc comment lost")
	}
	if len(cls.InterfaceTypes()) != 1 || cls.InterfaceTypes()[0].String() != "java.lang.Runnable" {
		t.Errorf("got interfaces %v, want [java.lang.Runnable]", cls.InterfaceTypes())
	}
	if cls.SuperClassType() != nil {
		t.Errorf("got superclass %v, want none", cls.SuperClassType())
	}

	max := findField(t, cls, "MAX")
	if max.ConstantValue() != "42" {
		t.Errorf("got constant %q, want 42", max.ConstantValue())
	}
	if max.Type().String() != "int" {
		t.Errorf("got field type %q, want int", max.Type().String())
	}

	stop := findMethod(t, cls, "stop")
	if !stop.Deprecated() || !stop.OriginallyDeprecated() {
		t.Error("deprecation lost on stop()")
	}

	names := findMethod(t, cls, "names")
	if got := names.ReturnType().String(); got != "java.util.List<java.lang.String>" {
		t.Errorf("got return type %q, want java.util.List<java.lang.String>", got)
	}
	if len(names.Parameters()) != 2 {
		t.Fatalf("got %d parameters, want 2", len(names.Parameters()))
	}
	if got := names.Parameters()[1].Name(); got != "prefixes" {
		t.Errorf("got parameter name %q, want prefixes", got)
	}
	if got := names.Parameters()[1].Type().String(); got != "java.lang.String[]" {
		t.Errorf("got parameter type %q, want java.lang.String[]", got)
	}
	if !names.Modifiers().IsVarargs() {
		t.Error("varargs flag lost")
	}
	if len(names.ThrowsTypes()) != 1 || names.ThrowsTypes()[0].String() != "java.io.IOException" {
		t.Errorf("got throws %v, want [java.io.IOException]", names.ThrowsTypes())
	}

	builder := cb.FindClass("test.pkg.Foo.Builder")
	if builder == nil {
		t.Fatal("nested class not built")
	}
	if !builder.Modifiers().IsStatic() {
		t.Error("static flag lost on nested class")
	}
	build := findMethod(t, builder, "build")
	if got := build.ReturnType().String(); got != "test.pkg.Foo" {
		t.Errorf("got return type %q, want test.pkg.Foo", got)
	}
}

func TestGenerics(t *testing.T) {
	cb := mustRead(t, `
package test.pkg;

public class Box<T> {
    public <R> R map(T value) { return null; }
}
`)
	cls := cb.FindClass("test.pkg.Box")
	if cls == nil {
		t.Fatal("class test.pkg.Box not built")
	}
	if got := cls.TypeParameters().String(); got != "<T>" {
		t.Errorf("got type parameters %q, want <T>", got)
	}
	mapped := findMethod(t, cls, "map")
	if got := mapped.TypeParameters().String(); got != "<R>" {
		t.Errorf("got method type parameters %q, want <R>", got)
	}
	if got := mapped.ReturnType().Kind; got != model.TypeVariable {
		t.Errorf("got return kind %v, want type variable", got)
	}
	if got := mapped.Parameters()[0].Type().Kind; got != model.TypeVariable {
		t.Errorf("got parameter kind %v, want type variable", got)
	}
}

func TestEnumConstants(t *testing.T) {
	cb := mustRead(t, `
package test.pkg;

public enum Color {
    RED,
    @Deprecated GREEN;

    public Color invert() { return null; }
}
`)
	cls := cb.FindClass("test.pkg.Color")
	if cls == nil {
		t.Fatal("enum not built")
	}
	if !cls.IsEnum() {
		t.Errorf("got kind %q, want enum", cls.Kind())
	}
	red := findField(t, cls, "RED")
	if !red.IsEnumConstant() {
		t.Error("RED not marked as enum constant")
	}
	if got := red.Type().String(); got != "test.pkg.Color" {
		t.Errorf("got constant type %q, want test.pkg.Color", got)
	}
	green := findField(t, cls, "GREEN")
	if !green.Deprecated() {
		t.Error("deprecation lost on GREEN")
	}
	findMethod(t, cls, "invert")
}

func TestInterfaceImplicitModifiers(t *testing.T) {
	cb := mustRead(t, `
package test.pkg;

public interface Flag {
    int LIMIT = 10;

    void raise();

    default void lower() {}
}
`)
	cls := cb.FindClass("test.pkg.Flag")
	if cls == nil {
		t.Fatal("interface not built")
	}
	limit := findField(t, cls, "LIMIT")
	mods := limit.Modifiers()
	if mods.Visibility() != model.VisibilityPublic || !mods.IsStatic() || !mods.IsFinal() {
		t.Error("interface field not an implicit public constant")
	}
	if limit.ConstantValue() != "10" {
		t.Errorf("got constant %q, want 10", limit.ConstantValue())
	}
	raise := findMethod(t, cls, "raise")
	if raise.Modifiers().Visibility() != model.VisibilityPublic {
		t.Errorf("got visibility %v, want implicit public", raise.Modifiers().Visibility())
	}
	lower := findMethod(t, cls, "lower")
	if !lower.Modifiers().IsDefault() {
		t.Error("default flag lost")
	}
}

func TestHideTag(t *testing.T) {
	cb := mustRead(t, `
package test.pkg;

/**
 * Internal plumbing.
 * @hide
 */
public class Secret {
    public void leak() {}
}
`)
	cls := cb.FindClass("test.pkg.Secret")
	if cls == nil {
		t.Fatal("class not built")
	}
	if !cls.Hidden() || !cls.OriginallyHidden() {
		t.Error("@hide tag not applied")
	}
}

func TestRecordMembers(t *testing.T) {
	cb := mustRead(t, `
package test.pkg;

public record Point(int x, int y) {
    public int x() { return x; }
}
`)
	cls := cb.FindClass("test.pkg.Point")
	if cls == nil {
		t.Fatal("record not built")
	}
	if !cls.Modifiers().IsFinal() {
		t.Error("record not implicitly final")
	}
	if len(cls.Constructors()) != 1 {
		t.Fatalf("got %d constructors, want canonical constructor", len(cls.Constructors()))
	}
	ctor := cls.Constructors()[0]
	if len(ctor.Parameters()) != 2 {
		t.Errorf("got %d constructor parameters, want 2", len(ctor.Parameters()))
	}
	// The explicit accessor wins; y() is generated.
	if got := len(cls.Methods()); got != 2 {
		t.Fatalf("got %d methods, want 2 accessors", got)
	}
	y := findMethod(t, cls, "y")
	if got := y.ReturnType().String(); got != "int" {
		t.Errorf("got accessor return type %q, want int", got)
	}
}

func TestAnnotationTypeMembers(t *testing.T) {
	cb := mustRead(t, `
package test.pkg;

public @interface Marker {
    String value() default "none";

    int weight() default 3;
}
`)
	cls := cb.FindClass("test.pkg.Marker")
	if cls == nil {
		t.Fatal("annotation type not built")
	}
	if !cls.IsAnnotation() {
		t.Errorf("got kind %q, want annotation", cls.Kind())
	}
	value := findMethod(t, cls, "value")
	if got := value.DefaultValue(); got != `"none"` {
		t.Errorf("got default %q, want \"none\"", got)
	}
	weight := findMethod(t, cls, "weight")
	if got := weight.DefaultValue(); got != "3" {
		t.Errorf("got default %q, want 3", got)
	}
}

func TestComputedInitializerIsNotConstant(t *testing.T) {
	cb := mustRead(t, `
package test.pkg;

public class Limits {
    public static final int DOUBLED = 2 * 21;
    public static final int PLAIN = 21;
}
`)
	cls := cb.FindClass("test.pkg.Limits")
	if findField(t, cls, "DOUBLED").HasConstantValue() {
		t.Error("computed initializer reported as constant")
	}
	if got := findField(t, cls, "PLAIN").ConstantValue(); got != "21" {
		t.Errorf("got constant %q, want 21", got)
	}
}

func TestCrossFileResolution(t *testing.T) {
	dir := t.TempDir()
	writeSource := func(name, src string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	writeSource("Shape.java", `
package test.pkg;

public class Shape {
    public Outline outline() { return null; }
}
`)
	writeSource("Outline.java", `
package test.pkg;

public class Outline {
    public static class Segment {}

    public Segment first() { return null; }
}
`)

	cb, err := Read(dir)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	shape := cb.FindClass("test.pkg.Shape")
	if shape == nil {
		t.Fatal("class test.pkg.Shape not built")
	}
	outline := findMethod(t, shape, "outline")
	if got := outline.ReturnType().String(); got != "test.pkg.Outline" {
		t.Errorf("got return type %q, want test.pkg.Outline", got)
	}
	first := findMethod(t, cb.FindClass("test.pkg.Outline"), "first")
	if got := first.ReturnType().String(); got != "test.pkg.Outline.Segment" {
		t.Errorf("got return type %q, want test.pkg.Outline.Segment", got)
	}
}

func TestReadRejectsMissingPath(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("missing path accepted")
	}
}

func TestMethodBodiesAreSkipped(t *testing.T) {
	cb := mustRead(t, `
package test.pkg;

public class Tricky {
    public int count() {
        String s = "not } a close";
        char c = '}';
        if (s.length() > 0) { return 1; }
        return 0;
    }

    public void after() {}
}
`)
	cls := cb.FindClass("test.pkg.Tricky")
	if cls == nil {
		t.Fatal("class not built")
	}
	if len(cls.Methods()) != 2 {
		t.Errorf("got %d methods, want 2", len(cls.Methods()))
	}
}
