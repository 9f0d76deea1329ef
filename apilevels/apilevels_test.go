package apilevels

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/dhamidi/apisurf/model"
	"github.com/dhamidi/apisurf/signature"
)

func parseSnapshot(t *testing.T, body string) *model.Codebase {
	t.Helper()
	input := "// Signature format: 2.0\n" + body
	cb, _, err := signature.Parse("snapshot.txt", strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return cb
}

func TestElementUpdate(t *testing.T) {
	t.Run("since is the oldest level", func(t *testing.T) {
		e := newElement("x", 3, false)
		e.Update(1, false)
		e.Update(2, false)
		if e.Since() != 1 {
			t.Errorf("got since %d, want 1", e.Since())
		}
		if e.LastPresentIn() != 3 {
			t.Errorf("got lastPresentIn %d, want 3", e.LastPresentIn())
		}
	})

	t.Run("deprecatedIn keeps the first deprecated level", func(t *testing.T) {
		e := newElement("x", 1, false)
		e.Update(2, true)
		e.Update(3, true)
		if e.DeprecatedIn() != 2 {
			t.Errorf("got deprecatedIn %d, want 2", e.DeprecatedIn())
		}
	})

	t.Run("un-deprecation at a later level clears deprecatedIn", func(t *testing.T) {
		e := newElement("x", 1, true)
		e.Update(2, false)
		if e.DeprecatedIn() != 0 {
			t.Errorf("got deprecatedIn %d, want 0", e.DeprecatedIn())
		}
	})
}

func TestFromCodebases(t *testing.T) {
	v1 := parseSnapshot(t, "package test.pkg {\n"+
		"  public class Foo {\n"+
		"    ctor public Foo();\n"+
		"    method public void stay();\n"+
		"    method public void gone();\n"+
		"  }\n"+
		"}\n")
	v2 := parseSnapshot(t, "package test.pkg {\n"+
		"  public class Foo {\n"+
		"    ctor public Foo();\n"+
		"    method public void stay();\n"+
		"    method public deprecated void fresh(int);\n"+
		"  }\n"+
		"}\n")

	api := FromCodebases([]*model.Codebase{v1, v2}, InternalNames)
	if api.MaxVersion() != 2 {
		t.Fatalf("got max version %d, want 2", api.MaxVersion())
	}

	cls := api.FindClass("test/pkg/Foo")
	if cls == nil {
		t.Fatal("class test/pkg/Foo not recorded")
	}
	if cls.Since() != 1 || cls.LastPresentIn() != 2 {
		t.Errorf("got class history since=%d last=%d, want 1 and 2", cls.Since(), cls.LastPresentIn())
	}

	checks := []struct {
		key          string
		since        int
		last         int
		deprecatedIn int
	}{
		{"<init>()V", 1, 2, 0},
		{"stay()V", 1, 2, 0},
		{"gone()V", 1, 1, 0},
		{"fresh(I)V", 2, 2, 2},
	}
	for _, c := range checks {
		m := cls.FindMethod(c.key)
		if m == nil {
			t.Errorf("method %q not recorded", c.key)
			continue
		}
		if m.Since() != c.since || m.LastPresentIn() != c.last || m.DeprecatedIn() != c.deprecatedIn {
			t.Errorf("method %q: got since=%d last=%d deprecated=%d, want %d %d %d",
				c.key, m.Since(), m.LastPresentIn(), m.DeprecatedIn(), c.since, c.last, c.deprecatedIn)
		}
	}
}

func TestMethodDescriptors(t *testing.T) {
	cb := parseSnapshot(t, "package test.pkg {\n"+
		"  public class Foo {\n"+
		"    method public <T> T pick(int, java.lang.String, long[], T);\n"+
		"    method public boolean check(test.pkg.Foo.Inner);\n"+
		"  }\n"+
		"  public static class Foo.Inner {\n"+
		"  }\n"+
		"}\n")

	api := NewApi(1)
	AddApisFromCodebase(api, 1, cb, InternalNames)
	cls := api.FindClass("test/pkg/Foo")
	if cls == nil {
		t.Fatal("class test/pkg/Foo not recorded")
	}
	for _, key := range []string{
		"pick(ILjava/lang/String;[JLjava/lang/Object;)Ljava/lang/Object;",
		"check(Ltest/pkg/Foo$Inner;)Z",
	} {
		if cls.FindMethod(key) == nil {
			t.Errorf("method %q not recorded; have %v", key, methodNames(cls))
		}
	}
}

func methodNames(cls *ApiClass) []string {
	var names []string
	for _, m := range cls.Methods() {
		names = append(names, m.Name())
	}
	return names
}

func TestSourceNameStyle(t *testing.T) {
	cb := parseSnapshot(t, "package test.pkg {\n"+
		"  public class Foo {\n"+
		"    method public void run(int, java.lang.String);\n"+
		"  }\n"+
		"}\n")

	api := NewApi(1)
	AddApisFromCodebase(api, 1, cb, SourceNames)
	cls := api.FindClass("test.pkg.Foo")
	if cls == nil {
		t.Fatal("class test.pkg.Foo not recorded")
	}
	if cls.FindMethod("run(int,java.lang.String)") == nil {
		t.Errorf("source-style method key missing; have %v", methodNames(cls))
	}
}

func TestRemoveOverridingMethods(t *testing.T) {
	api := NewApi(1)
	base := api.AddClass("test/pkg/Base", 1, false)
	base.AddMethod("run()V", 1, false)
	base.AddMethod("stop()V", 1, true)

	sub := api.AddClass("test/pkg/Sub", 1, false)
	sub.AddSuperClass("test/pkg/Base", 1)
	sub.AddMethod("run()V", 1, false)
	sub.AddMethod("stop()V", 1, false)
	sub.AddMethod("<init>()V", 1, false)

	api.RemoveOverridingMethods()

	if sub.FindMethod("run()V") != nil {
		t.Error("redundant override run()V survived")
	}
	if sub.FindMethod("stop()V") == nil {
		t.Error("override with different deprecation history was dropped")
	}
	if sub.FindMethod("<init>()V") == nil {
		t.Error("constructor was dropped")
	}
}

func TestRemoveImplicitInterfaces(t *testing.T) {
	api := NewApi(1)
	base := api.AddClass("test/pkg/Base", 1, false)
	base.AddInterface("java/lang/Runnable", 1)
	api.AddClass("java/lang/Runnable", 1, false)

	sub := api.AddClass("test/pkg/Sub", 1, false)
	sub.AddSuperClass("test/pkg/Base", 1)
	sub.AddInterface("java/lang/Runnable", 1)
	sub.AddInterface("java/io/Closeable", 1)

	api.RemoveImplicitInterfaces()

	var names []string
	for _, iface := range sub.Interfaces() {
		names = append(names, iface.Name())
	}
	if len(names) != 1 || names[0] != "java/io/Closeable" {
		t.Errorf("got interfaces %v, want [java/io/Closeable]", names)
	}
}

func TestPrunePackagePrivateClasses(t *testing.T) {
	api := NewApi(1)
	api.AddClass("test/pkg/Root", 1, false)

	middle := api.AddClass("test/pkg/Middle", 1, false)
	middle.MarkPackagePrivate()
	middle.AddSuperClass("test/pkg/Root", 1)

	leaf := api.AddClass("test/pkg/Leaf", 1, false)
	leaf.AddSuperClass("test/pkg/Middle", 1)

	api.PrunePackagePrivateClasses()

	if api.FindClass("test/pkg/Middle") != nil {
		t.Error("package-private class survived pruning")
	}
	supers := leaf.SuperClasses()
	if len(supers) != 1 || supers[0].Name() != "test/pkg/Root" {
		t.Errorf("got superclasses %v, want relink to test/pkg/Root", superNames(leaf))
	}
}

func superNames(cls *ApiClass) []string {
	var names []string
	for _, s := range cls.SuperClasses() {
		names = append(names, s.Name())
	}
	return names
}

func TestInlineFromHiddenSuperClasses(t *testing.T) {
	api := NewApi(1)
	hidden := api.AddClass("test/pkg/HiddenBase", 1, false)
	hidden.MarkHidden()
	hidden.AddMethod("inherited()V", 1, false)
	hidden.AddField("LIMIT", 1, false)

	sub := api.AddClass("test/pkg/Sub", 2, false)
	sub.AddSuperClass("test/pkg/HiddenBase", 2)
	sub.AddMethod("own()V", 2, false)

	api.InlineFromHiddenSuperClasses()

	if sub.FindMethod("inherited()V") == nil {
		t.Error("hidden superclass method was not inlined")
	}
	if sub.FindField("LIMIT") == nil {
		t.Error("hidden superclass field was not inlined")
	}
	if got := sub.FindMethod("inherited()V").Since(); got != 1 {
		t.Errorf("inlined method since = %d, want 1 from the hidden class history", got)
	}
}

func TestVerifyNoMissingClasses(t *testing.T) {
	api := NewApi(1)
	cls := api.AddClass("test/pkg/Foo", 1, false)
	cls.AddSuperClass("test/pkg/Vanished", 1)
	cls.AddInterface("test/pkg/AlsoGone", 1)

	err := api.VerifyNoMissingClasses()
	if err == nil {
		t.Fatal("dangling references were not reported")
	}
	msg := err.Error()
	for _, want := range []string{"2 missing classes", "test/pkg/Vanished", "test/pkg/AlsoGone", "test/pkg/Foo"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q does not mention %q", msg, want)
		}
	}

	api.RemoveMissingClasses()
	if err := api.VerifyNoMissingClasses(); err != nil {
		t.Errorf("references survived RemoveMissingClasses: %v", err)
	}
}

func TestWriteXML(t *testing.T) {
	api := NewApi(1)
	cls := api.AddClass("test/pkg/Foo", 1, false)
	api.AddClass("test/pkg/Foo", 2, false)
	cls.AddMethod("stay()V", 1, false)
	cls.AddMethod("gone()V", 1, false)
	cls.AddMethod("fresh()V", 2, false)
	cls.FindMethod("stay()V").Update(2, false)
	cls.FindMethod("fresh()V").Update(2, true)
	cls.AddField("LIMIT", 1, false)
	cls.FindField("LIMIT").Update(2, false)

	var out strings.Builder
	sdks := []SdkIdentifier{{ID: 30, ShortName: "R-ext", Name: "R Extensions"}}
	if err := WriteXML(&out, api, sdks); err != nil {
		t.Fatalf("WriteXML failed: %v", err)
	}
	got := out.String()

	if !strings.HasPrefix(got, "<?xml version=\"1.0\" encoding=\"utf-8\"?>\n") {
		t.Errorf("output missing XML declaration:\n%s", got)
	}
	for _, want := range []string{
		`<api version="3">`,
		`<sdk id="30" shortname="R-ext" name="R Extensions">`,
		`<class name="test/pkg/Foo" since="1">`,
		`<method name="stay()V">`,
		`<method name="gone()V" removed="2">`,
		`<method name="fresh()V" since="2" deprecated="2">`,
		`<field name="LIMIT">`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestWriteXMLMinAttribute(t *testing.T) {
	api := NewApi(21)
	api.AddClass("test/pkg/Foo", 21, false)

	var out strings.Builder
	if err := WriteXML(&out, api, nil); err != nil {
		t.Fatalf("WriteXML failed: %v", err)
	}
	if !strings.Contains(out.String(), `<api version="3" min="21">`) {
		t.Errorf("output missing min attribute:\n%s", out.String())
	}
}

func TestWriteJSON(t *testing.T) {
	api := NewApi(1)
	cls := api.AddClass("test.pkg.Foo", 1, false)
	api.AddClass("test.pkg.Foo", 2, false)
	cls.AddMethod("run(int)", 1, false)
	cls.FindMethod("run(int)").Update(2, true)
	cls.AddField("LIMIT", 2, false)

	var out strings.Builder
	if err := WriteJSON(&out, api, []string{"1.0.0", "2.0.0"}); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	var decoded []struct {
		Class        string `json:"class"`
		AddedIn      string `json:"addedIn"`
		DeprecatedIn string `json:"deprecatedIn"`
		Methods      []struct {
			Method       string `json:"method"`
			AddedIn      string `json:"addedIn"`
			DeprecatedIn string `json:"deprecatedIn"`
		} `json:"methods"`
		Fields []struct {
			Field   string `json:"field"`
			AddedIn string `json:"addedIn"`
		} `json:"fields"`
	}
	if err := json.Unmarshal([]byte(out.String()), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out.String())
	}
	if len(decoded) != 1 {
		t.Fatalf("got %d classes, want 1", len(decoded))
	}
	got := decoded[0]
	if got.Class != "test.pkg.Foo" || got.AddedIn != "1.0.0" || got.DeprecatedIn != "" {
		t.Errorf("got class entry %+v, want test.pkg.Foo added in 1.0.0", got)
	}
	if len(got.Methods) != 1 || got.Methods[0].AddedIn != "1.0.0" || got.Methods[0].DeprecatedIn != "2.0.0" {
		t.Errorf("got methods %+v, want run(int) added 1.0.0 deprecated 2.0.0", got.Methods)
	}
	if len(got.Fields) != 1 || got.Fields[0].AddedIn != "2.0.0" {
		t.Errorf("got fields %+v, want LIMIT added 2.0.0", got.Fields)
	}
}

func TestCleanDropsDanglingSupertypes(t *testing.T) {
	cb := parseSnapshot(t, "package test.pkg {\n"+
		"  public class Foo extends test.pkg.Base {\n"+
		"  }\n"+
		"  public class Base {\n"+
		"  }\n"+
		"}\n")

	api := FromCodebases([]*model.Codebase{cb}, InternalNames)
	api.Clean()

	foo := api.FindClass("test/pkg/Foo")
	supers := superNames(foo)
	if len(supers) != 1 || supers[0] != "test/pkg/Base" {
		t.Errorf("got superclasses %v, want only the recorded test/pkg/Base", supers)
	}
	base := api.FindClass("test/pkg/Base")
	if len(base.SuperClasses()) != 0 {
		t.Errorf("implicit java.lang.Object reference survived Clean: %v", superNames(base))
	}
}
