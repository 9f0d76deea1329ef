package model

import (
	"errors"
	"testing"
)

func TestDuplicateClassRejected(t *testing.T) {
	cb := NewCodebase("test", OriginSignature)
	mustCreateClass(t, cb, "test.pkg", "Foo", ClassKindClass)

	_, err := cb.CreateClass("test.pkg", "Foo", ClassKindClass)
	var dup *DuplicateClassError
	if !errors.As(err, &dup) {
		t.Fatalf("second CreateClass = %v, want DuplicateClassError", err)
	}
	if dup.QualifiedName != "test.pkg.Foo" {
		t.Errorf("DuplicateClassError.QualifiedName = %q, want test.pkg.Foo", dup.QualifiedName)
	}
}

func TestSplitQualifiedName(t *testing.T) {
	tests := []struct {
		input    string
		wantPkg  string
		wantName string
	}{
		{"java.lang.Object", "java.lang", "Object"},
		{"a.b.Outer.Inner", "a.b", "Outer.Inner"},
		{"TopLevel", "", "TopLevel"},
		{"lower.case.only", "lower.case", "only"},
	}
	for _, tt := range tests {
		pkg, name := splitQualifiedName(tt.input)
		if pkg != tt.wantPkg || name != tt.wantName {
			t.Errorf("splitQualifiedName(%q) = (%q, %q), want (%q, %q)",
				tt.input, pkg, name, tt.wantPkg, tt.wantName)
		}
	}
}

func TestStubCreation(t *testing.T) {
	cb := NewCodebase("test", OriginSignature)
	foo := mustCreateClass(t, cb, "test.pkg", "Foo", ClassKindClass)
	foo.SetSuperClassType(ClassType("missing.pkg.Base"))
	if err := cb.PostProcess(); err != nil {
		t.Fatalf("PostProcess failed: %v", err)
	}

	stub := cb.FindClass("missing.pkg.Base")
	if stub == nil {
		t.Fatal("unresolved superclass did not produce a stub")
	}
	if !stub.IsStub() {
		t.Error("placeholder class not flagged as stub")
	}
	if stub.Emit() {
		t.Error("stub class reports Emit() = true")
	}
	if foo.SuperClass() != stub {
		t.Error("superclass not resolved to the stub")
	}
}

type countingVisitor struct {
	BaseVisitor
	order []string
}

func (v *countingVisitor) VisitPackage(p *PackageItem) { v.order = append(v.order, "package "+p.Name()) }
func (v *countingVisitor) VisitClass(c *ClassItem)     { v.order = append(v.order, c.QualifiedName()) }
func (v *countingVisitor) VisitMethod(m *MethodItem)   { v.order = append(v.order, m.Signature()) }

func TestAcceptOrderIsDeterministic(t *testing.T) {
	// Insertion order differs from name order on purpose.
	cb := NewCodebase("test", OriginSignature)
	mustCreateClass(t, cb, "z.pkg", "Last", ClassKindClass)
	b := mustCreateClass(t, cb, "a.pkg", "B", ClassKindClass)
	mustCreateClass(t, cb, "a.pkg", "A", ClassKindClass)
	b.AddMethod(NewMethod(b, "m", PrimitiveType("void"), nil))

	v := &countingVisitor{}
	cb.Accept(v)

	want := []string{"package a.pkg", "a.pkg.A", "a.pkg.B", "m()", "package z.pkg", "z.pkg.Last"}
	if len(v.order) != len(want) {
		t.Fatalf("visit order %v, want %v", v.order, want)
	}
	for i := range want {
		if v.order[i] != want[i] {
			t.Fatalf("visit order %v, want %v", v.order, want)
		}
	}
}
