package signature

import (
	"strings"
	"testing"

	"github.com/dhamidi/apisurf/model"
)

func mustParse(t *testing.T, input string) (*model.Codebase, FileFormat) {
	t.Helper()
	cb, format, err := Parse("test.txt", strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return cb, format
}

func roundTrip(t *testing.T, input string) {
	t.Helper()
	cb, format, err := Parse("test.txt", strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	var out strings.Builder
	p := &Printer{Format: format}
	if err := p.Print(&out, cb); err != nil {
		t.Fatalf("Print failed: %v", err)
	}
	if out.String() != input {
		t.Errorf("round trip changed the file:\n--- in ---\n%s\n--- out ---\n%s", input, out.String())
	}
}

func TestParseMinimalFile(t *testing.T) {
	input := "// Signature format: 2.0\n" +
		"package test.pkg {\n" +
		"\n" +
		"  public class Foo {\n" +
		"    ctor public Foo();\n" +
		"  }\n" +
		"\n" +
		"}\n"

	cb, format := mustParse(t, input)
	if format.Version != Version2 {
		t.Errorf("format version = %v, want 2.0", format.Version)
	}

	foo := cb.FindClass("test.pkg.Foo")
	if foo == nil {
		t.Fatal("test.pkg.Foo not found")
	}
	if !foo.Modifiers().IsPublic() {
		t.Error("Foo is not public")
	}
	if got := len(foo.Constructors()); got != 1 {
		t.Fatalf("got %d constructors, want 1", got)
	}
	ctor := foo.Constructors()[0]
	if !ctor.IsConstructor() || !ctor.Modifiers().IsPublic() || len(ctor.Parameters()) != 0 {
		t.Errorf("constructor parsed wrong: %s", ctor.Describe())
	}
	if len(foo.Methods()) != 0 || len(foo.Fields()) != 0 {
		t.Error("Foo has members beyond the constructor")
	}
	if !cb.Frozen() {
		t.Error("parsed codebase is not frozen")
	}

	roundTrip(t, input)
}

func TestRoundTripVersion2(t *testing.T) {
	input := "// Signature format: 2.0\n" +
		"package test.pkg {\n" +
		"\n" +
		"  public abstract class Container<T> implements java.lang.Iterable<T> {\n" +
		"    ctor public Container();\n" +
		"    ctor public Container(int);\n" +
		"    method public abstract T get(int);\n" +
		"    method public int size();\n" +
		"    field public static final int DEFAULT_CAPACITY = 16;\n" +
		"  }\n" +
		"\n" +
		"  public enum Kind {\n" +
		"    enum_constant public static final test.pkg.Kind PRIMARY;\n" +
		"    enum_constant public static final test.pkg.Kind SECONDARY;\n" +
		"  }\n" +
		"\n" +
		"  public interface Listener {\n" +
		"    method public void close() throws java.io.IOException;\n" +
		"    method public void onChange(test.pkg.Container<java.lang.String>);\n" +
		"  }\n" +
		"\n" +
		"  public @interface Marker {\n" +
		"    method public abstract int priority() default 0;\n" +
		"  }\n" +
		"\n" +
		"}\n"

	roundTrip(t, input)

	cb, _ := mustParse(t, input)
	kind := cb.FindClass("test.pkg.Kind")
	if kind == nil || !kind.IsEnum() {
		t.Fatal("test.pkg.Kind did not parse as an enum")
	}
	primary := kind.FindField("PRIMARY")
	if primary == nil || !primary.IsEnumConstant() {
		t.Error("PRIMARY is not an enum constant")
	}

	marker := cb.FindClass("test.pkg.Marker")
	if marker == nil || !marker.IsAnnotation() {
		t.Fatal("test.pkg.Marker did not parse as an annotation type")
	}
	priority := marker.FindMethod("priority", "")
	if priority == nil || priority.DefaultValue() != "0" {
		t.Error("priority() default value not parsed")
	}

	container := cb.FindClass("test.pkg.Container")
	get := container.FindMethod("get", "int")
	if get == nil || get.ReturnType().Kind != model.TypeVariable {
		t.Error("get(int) return type did not resolve to the class type variable")
	}
}

func TestRoundTripKotlinStyleNulls(t *testing.T) {
	input := "// Signature format: 3.0\n" +
		"package test.pkg {\n" +
		"\n" +
		"  public final class Text {\n" +
		"    ctor public Text(java.lang.String?);\n" +
		"    method public java.lang.String! legacy();\n" +
		"    method public java.lang.String value();\n" +
		"  }\n" +
		"\n" +
		"}\n"

	roundTrip(t, input)

	cb, format := mustParse(t, input)
	if !format.KotlinStyleNulls {
		t.Error("3.0 header did not enable kotlin-style-nulls")
	}
	text := cb.FindClass("test.pkg.Text")

	// Bare types default to non-null in kotlin-style files.
	if got := text.FindMethod("value", "").ReturnType().Null; got != model.NullNonNull {
		t.Errorf("value() nullness = %d, want NullNonNull", got)
	}
	if got := text.FindMethod("legacy", "").ReturnType().Null; got != model.NullPlatform {
		t.Errorf("legacy() nullness = %d, want NullPlatform", got)
	}
	ctor := text.Constructors()[0]
	if got := ctor.Parameters()[0].Type().Null; got != model.NullNullable {
		t.Errorf("constructor parameter nullness = %d, want NullNullable", got)
	}
}

func TestParseNullnessAnnotations(t *testing.T) {
	input := "// Signature format: 2.0\n" +
		"package test.pkg {\n" +
		"\n" +
		"  public class Text {\n" +
		"    method @Nullable public java.lang.String maybe();\n" +
		"  }\n" +
		"\n" +
		"}\n"

	cb, _ := mustParse(t, input)
	m := cb.FindClass("test.pkg.Text").FindMethod("maybe", "")
	if m == nil {
		t.Fatal("maybe() not found")
	}
	if m.ReturnType().Null != model.NullNullable {
		t.Errorf("nullness annotation not folded into the type: %d", m.ReturnType().Null)
	}
	if len(m.Modifiers().Annotations()) != 0 {
		t.Error("nullness annotation also kept as a modifier annotation")
	}

	// Annotation-style output spells the marker back out.
	var out strings.Builder
	p := &Printer{Format: Defaults(Version2)}
	if err := p.Print(&out, cb); err != nil {
		t.Fatalf("Print failed: %v", err)
	}
	if !strings.Contains(out.String(), "@androidx.annotation.Nullable java.lang.String maybe()") {
		t.Errorf("output lacks annotation-style nullness:\n%s", out.String())
	}
}

func TestMergeDuplicateMemberLastWins(t *testing.T) {
	first := "// Signature format: 2.0\n" +
		"package test.pkg {\n" +
		"\n" +
		"  public class Foo {\n" +
		"    method public void stable();\n" +
		"    method public void touched();\n" +
		"  }\n" +
		"\n" +
		"}\n"
	second := "// Signature format: 2.0\n" +
		"package test.pkg {\n" +
		"\n" +
		"  public class Foo {\n" +
		"    method public deprecated void touched();\n" +
		"    field public static final int ADDED = 1;\n" +
		"  }\n" +
		"\n" +
		"}\n"

	cb := model.NewCodebase("merged", model.OriginSignature)
	for i, input := range []string{first, second} {
		if _, err := ParseInto(cb, "file.txt", strings.NewReader(input)); err != nil {
			t.Fatalf("ParseInto file %d failed: %v", i+1, err)
		}
	}
	if err := cb.PostProcess(); err != nil {
		t.Fatalf("PostProcess failed: %v", err)
	}
	cb.Freeze()

	foo := cb.FindClass("test.pkg.Foo")
	if got := len(foo.Methods()); got != 2 {
		t.Fatalf("got %d methods after merge, want 2", got)
	}
	touched := foo.FindMethod("touched", "")
	if touched == nil || !touched.Deprecated() {
		t.Error("later declaration of touched() did not win")
	}
	stable := foo.FindMethod("stable", "")
	if stable == nil || stable.Deprecated() {
		t.Error("stable() was disturbed by the merge")
	}
	if foo.FindField("ADDED") == nil {
		t.Error("field from the second file is missing")
	}
}

func TestParseErrorsCarryPathAndLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
	}{
		{
			name:  "missing header",
			input: "package test.pkg {\n}\n",
			line:  1,
		},
		{
			name: "missing semicolon",
			input: "// Signature format: 2.0\n" +
				"package test.pkg {\n" +
				"  public class Foo {\n" +
				"    method public void bar()\n" +
				"  }\n" +
				"}\n",
			line: 4,
		},
		{
			name: "garbage member keyword",
			input: "// Signature format: 2.0\n" +
				"package test.pkg {\n" +
				"  public class Foo {\n" +
				"    banana public void bar();\n" +
				"  }\n" +
				"}\n",
			line: 4,
		},
		{
			name: "unknown format property",
			input: "// Signature format: 2.0\n" +
				"// - frobnicate=yes\n" +
				"package test.pkg {\n" +
				"}\n",
			line: 2,
		},
		{
			name: "structural property on 1.0 header",
			input: "// Signature format: 1.0\n" +
				"// - kotlin-style-nulls=yes\n" +
				"package test.pkg {\n" +
				"}\n",
			line: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse("api.txt", strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("Parse succeeded, want error")
			}
			fe, ok := err.(*FormatError)
			if !ok {
				t.Fatalf("error type %T, want *FormatError (%v)", err, err)
			}
			if fe.Path != "api.txt" || fe.Line != tt.line {
				t.Errorf("error at %s:%d, want api.txt:%d (%s)", fe.Path, fe.Line, tt.line, fe.Message)
			}
		})
	}
}

func TestHeaderPropertyVersionGate(t *testing.T) {
	// Structural properties require a 2.0+ header; migrating does not
	// change the emitted structure and is read on any version.
	input := "// Signature format: 1.0\n" +
		"// - migrating=moving to 2.0\n" +
		"package test.pkg {\n" +
		"}\n"
	_, format := mustParse(t, input)
	if format.Migrating != "moving to 2.0" {
		t.Errorf("Migrating = %q, want %q", format.Migrating, "moving to 2.0")
	}

	input = "// Signature format: 2.0\n" +
		"// - kotlin-style-nulls=yes\n" +
		"package test.pkg {\n" +
		"}\n"
	_, format = mustParse(t, input)
	if !format.KotlinStyleNulls {
		t.Error("2.0 header did not accept kotlin-style-nulls")
	}
}

func TestOverloadedMethodOrder(t *testing.T) {
	// Declaration order deliberately differs from signature order.
	input := "// Signature format: 2.0\n" +
		"package test.pkg {\n" +
		"\n" +
		"  public class Foo {\n" +
		"    method public void run(java.lang.String);\n" +
		"    method public void run();\n" +
		"    method public void run(int);\n" +
		"  }\n" +
		"\n" +
		"}\n"

	cb, _ := mustParse(t, input)

	print := func(format FileFormat) string {
		var out strings.Builder
		p := &Printer{Format: format}
		if err := p.Print(&out, cb); err != nil {
			t.Fatalf("Print failed: %v", err)
		}
		return out.String()
	}

	bySignature := print(Defaults(Version2))
	wantSig := "    method public void run();\n" +
		"    method public void run(int);\n" +
		"    method public void run(java.lang.String);\n"
	if !strings.Contains(bySignature, wantSig) {
		t.Errorf("signature order output wrong:\n%s", bySignature)
	}

	sourceOrder := Defaults(Version2)
	sourceOrder.OverloadedMethodOrder = OrderSource
	bySource := print(sourceOrder)
	wantSrc := "    method public void run(java.lang.String);\n" +
		"    method public void run();\n" +
		"    method public void run(int);\n"
	if !strings.Contains(bySource, wantSrc) {
		t.Errorf("source order output wrong:\n%s", bySource)
	}
}

func TestConciseDefaultValues(t *testing.T) {
	input := "// Signature format: 4.0\n" +
		"package test.pkg {\n" +
		"\n" +
		"  public final class Greeter {\n" +
		"    method public void greet(optional java.lang.String name);\n" +
		"  }\n" +
		"\n" +
		"}\n"

	roundTrip(t, input)

	cb, _ := mustParse(t, input)
	m := cb.FindClass("test.pkg.Greeter").FindMethod("greet", "java.lang.String")
	if m == nil {
		t.Fatal("greet not found")
	}
	param := m.Parameters()[0]
	if !param.HasDefaultValue() {
		t.Error("optional marker did not record a default")
	}
	if param.DefaultValue() != "" {
		t.Errorf("concise default kept an expression: %q", param.DefaultValue())
	}
}

func TestHiddenClassesAreNotPrinted(t *testing.T) {
	input := "// Signature format: 2.0\n" +
		"package test.pkg {\n" +
		"\n" +
		"  public class Shown {\n" +
		"    method public void keep() throws test.pkg.Gone;\n" +
		"  }\n" +
		"\n" +
		"}\n"

	cb, format := mustParse(t, input)

	// Gone was only referenced, so PostProcess created a stub for it; the
	// stub must not leak into output.
	if cb.FindClass("test.pkg.Gone") == nil {
		t.Fatal("referenced class was not stubbed")
	}
	var out strings.Builder
	p := &Printer{Format: format}
	if err := p.Print(&out, cb); err != nil {
		t.Fatalf("Print failed: %v", err)
	}
	if strings.Contains(out.String(), "class Gone") {
		t.Errorf("stub class leaked into output:\n%s", out.String())
	}
	if out.String() != input {
		t.Errorf("output differs from input:\n%s", out.String())
	}
}

func TestNestedClassBlocks(t *testing.T) {
	input := "// Signature format: 2.0\n" +
		"package test.pkg {\n" +
		"\n" +
		"  public class Outer {\n" +
		"  }\n" +
		"\n" +
		"  public static class Outer.Inner {\n" +
		"    ctor public Outer.Inner();\n" +
		"  }\n" +
		"\n" +
		"}\n"

	roundTrip(t, input)

	cb, _ := mustParse(t, input)
	inner := cb.FindClass("test.pkg.Outer.Inner")
	if inner == nil {
		t.Fatal("nested class not found")
	}
	if inner.ContainingClass() != cb.FindClass("test.pkg.Outer") {
		t.Error("nested class not wired to its outer class")
	}
}
