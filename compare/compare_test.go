package compare

import (
	"fmt"
	"strings"
	"testing"

	"github.com/dhamidi/apisurf/model"
	"github.com/dhamidi/apisurf/signature"
)

func parseAPI(t *testing.T, body string) *model.Codebase {
	t.Helper()
	input := "// Signature format: 2.0\n" + body
	cb, _, err := signature.Parse("test.txt", strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return cb
}

// recorder captures every event as a readable line.
type recorder struct {
	Base
	events []string
}

func (r *recorder) log(format string, args ...interface{}) {
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recorder) AddedPackage(p *model.PackageItem)   { r.log("added package %s", p.Name()) }
func (r *recorder) RemovedPackage(p *model.PackageItem) { r.log("removed package %s", p.Name()) }
func (r *recorder) AddedClass(c *model.ClassItem)       { r.log("added class %s", c.QualifiedName()) }
func (r *recorder) RemovedClass(c *model.ClassItem)     { r.log("removed class %s", c.QualifiedName()) }
func (r *recorder) ChangedClass(old, new *model.ClassItem) {
	r.log("changed class %s", old.QualifiedName())
}
func (r *recorder) AddedConstructor(m *model.MethodItem) {
	r.log("added ctor %s", m.Describe())
}
func (r *recorder) RemovedConstructor(m *model.MethodItem) {
	r.log("removed ctor %s", m.Describe())
}
func (r *recorder) AddedMethod(m *model.MethodItem)   { r.log("added method %s", m.Describe()) }
func (r *recorder) RemovedMethod(m *model.MethodItem) { r.log("removed method %s", m.Describe()) }
func (r *recorder) ChangedMethod(old, new *model.MethodItem) {
	r.log("changed method %s", old.Describe())
}
func (r *recorder) AddedField(f *model.FieldItem)   { r.log("added field %s", f.Describe()) }
func (r *recorder) RemovedField(f *model.FieldItem) { r.log("removed field %s", f.Describe()) }
func (r *recorder) ChangedField(old, new *model.FieldItem) {
	r.log("changed field %s", old.Describe())
}

func diff(t *testing.T, oldBody, newBody string, filter Filter) []string {
	t.Helper()
	oldCB := parseAPI(t, oldBody)
	newCB := parseAPI(t, newBody)
	r := &recorder{}
	Codebases(oldCB, newCB, r, filter)
	return r.events
}

func assertEvents(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got events %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got events %v, want %v", got, want)
		}
	}
}

func TestRemovedMethodIsASingleEvent(t *testing.T) {
	oldAPI := "package test.pkg {\n" +
		"  public class Foo {\n" +
		"    method public void keep();\n" +
		"    method public void gone(int);\n" +
		"  }\n" +
		"}\n"
	newAPI := "package test.pkg {\n" +
		"  public class Foo {\n" +
		"    method public void keep();\n" +
		"  }\n" +
		"}\n"

	events := diff(t, oldAPI, newAPI, nil)
	assertEvents(t, events, []string{"removed method test.pkg.Foo.gone(int)"})
}

func TestAddedAndRemovedClasses(t *testing.T) {
	oldAPI := "package test.pkg {\n" +
		"  public class Old {\n" +
		"  }\n" +
		"  public class Shared {\n" +
		"  }\n" +
		"}\n"
	newAPI := "package test.pkg {\n" +
		"  public class New {\n" +
		"  }\n" +
		"  public class Shared {\n" +
		"  }\n" +
		"}\n"

	events := diff(t, oldAPI, newAPI, nil)
	assertEvents(t, events, []string{
		"added class test.pkg.New",
		"removed class test.pkg.Old",
	})
}

func TestChangedMethodModifiers(t *testing.T) {
	oldAPI := "package test.pkg {\n" +
		"  public class Foo {\n" +
		"    method public void run();\n" +
		"  }\n" +
		"}\n"
	newAPI := "package test.pkg {\n" +
		"  public class Foo {\n" +
		"    method public final void run();\n" +
		"  }\n" +
		"}\n"

	events := diff(t, oldAPI, newAPI, nil)
	assertEvents(t, events, []string{"changed method test.pkg.Foo.run()"})
}

func TestDeprecationIsAChange(t *testing.T) {
	oldAPI := "package test.pkg {\n" +
		"  public class Foo {\n" +
		"    field public static final int LIMIT = 10;\n" +
		"  }\n" +
		"}\n"
	newAPI := "package test.pkg {\n" +
		"  public class Foo {\n" +
		"    field public deprecated static final int LIMIT = 10;\n" +
		"  }\n" +
		"}\n"

	events := diff(t, oldAPI, newAPI, nil)
	assertEvents(t, events, []string{"changed field test.pkg.Foo.LIMIT"})
}

func TestSuperclassChangeIsAClassEvent(t *testing.T) {
	oldAPI := "package test.pkg {\n" +
		"  public class Base {\n" +
		"  }\n" +
		"  public class Foo extends test.pkg.Base {\n" +
		"  }\n" +
		"}\n"
	newAPI := "package test.pkg {\n" +
		"  public class Base {\n" +
		"  }\n" +
		"  public class Foo {\n" +
		"  }\n" +
		"}\n"

	events := diff(t, oldAPI, newAPI, nil)
	assertEvents(t, events, []string{"changed class test.pkg.Foo"})
}

func TestIdenticalCodebasesProduceNoEvents(t *testing.T) {
	api := "package test.pkg {\n" +
		"  public class Foo extends test.pkg.Base implements java.lang.Cloneable {\n" +
		"    ctor public Foo();\n" +
		"    method public int size();\n" +
		"    field public static final int LIMIT = 10;\n" +
		"  }\n" +
		"  public class Base {\n" +
		"  }\n" +
		"}\n"

	if events := diff(t, api, api, nil); len(events) != 0 {
		t.Errorf("identical inputs produced events: %v", events)
	}
}

func TestSymmetry(t *testing.T) {
	oldAPI := "package test.pkg {\n" +
		"  public class Foo {\n" +
		"    method public void gone();\n" +
		"  }\n" +
		"}\n"
	newAPI := "package test.pkg {\n" +
		"  public class Foo {\n" +
		"    method public void fresh();\n" +
		"  }\n" +
		"}\n"

	forward := diff(t, oldAPI, newAPI, nil)
	backward := diff(t, newAPI, oldAPI, nil)

	assertEvents(t, forward, []string{
		"added method test.pkg.Foo.fresh()",
		"removed method test.pkg.Foo.gone()",
	})
	assertEvents(t, backward, []string{
		"removed method test.pkg.Foo.fresh()",
		"added method test.pkg.Foo.gone()",
	})
}

func TestFilterHidesItemsFromBothSides(t *testing.T) {
	oldAPI := "package test.pkg {\n" +
		"  public class Foo {\n" +
		"    method public void gone();\n" +
		"  }\n" +
		"}\n" +
		"package other.pkg {\n" +
		"  public class Bar {\n" +
		"  }\n" +
		"}\n"
	newAPI := "package test.pkg {\n" +
		"  public class Foo {\n" +
		"  }\n" +
		"}\n"

	onlyOther := func(item model.Item) bool {
		if !DefaultFilter(item) {
			return false
		}
		return strings.HasPrefix(item.Describe(), "other.pkg")
	}
	events := diff(t, oldAPI, newAPI, onlyOther)
	assertEvents(t, events, []string{"removed package other.pkg"})
}

func TestPackageLevelEvents(t *testing.T) {
	oldAPI := "package gone.pkg {\n" +
		"  public class A {\n" +
		"  }\n" +
		"}\n"
	newAPI := "package fresh.pkg {\n" +
		"  public class B {\n" +
		"  }\n" +
		"}\n"

	events := diff(t, oldAPI, newAPI, nil)
	assertEvents(t, events, []string{
		"added package fresh.pkg",
		"removed package gone.pkg",
	})
}

func TestEventOrderIsDeterministic(t *testing.T) {
	oldAPI := "package b.pkg {\n" +
		"  public class Gone {\n" +
		"    method public void a();\n" +
		"    method public void b(int);\n" +
		"    field public int X;\n" +
		"  }\n" +
		"  public class Kept {\n" +
		"    method public void changed();\n" +
		"  }\n" +
		"}\n" +
		"package a.pkg {\n" +
		"  public class Old {\n" +
		"  }\n" +
		"}\n"
	newAPI := "package b.pkg {\n" +
		"  public class Kept {\n" +
		"    method public final void changed();\n" +
		"    method public void fresh();\n" +
		"  }\n" +
		"}\n" +
		"package c.pkg {\n" +
		"  public class New {\n" +
		"    field public int Y;\n" +
		"  }\n" +
		"}\n"

	// Fresh Codebase instances per run, so any map-iteration leak in
	// the walk would show up as a reordering.
	first := diff(t, oldAPI, newAPI, nil)
	second := diff(t, oldAPI, newAPI, nil)

	if len(first) == 0 {
		t.Fatal("no events recorded")
	}
	assertEvents(t, second, first)
}
