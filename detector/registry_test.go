package detector

import (
	"context"
	"testing"
)

type stubDetector struct{ name string }

func (d *stubDetector) Framework() string { return d.name }
func (d *stubDetector) Detect(context.Context, []string, map[string]string) DetectionResult {
	return DetectionResult{Framework: d.name}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register("beta", func() Detector { return &stubDetector{name: "beta"} })
	r.Register("alpha", func() Detector { return &stubDetector{name: "alpha"} })

	d, ok := r.Create("alpha")
	if !ok {
		t.Fatal("Create(alpha) not found")
	}
	if d.Framework() != "alpha" {
		t.Errorf("framework = %q", d.Framework())
	}

	if _, ok := r.Create("missing"); ok {
		t.Error("Create(missing) should not succeed")
	}

	all := r.All()
	if len(all) != 2 || all[0].Framework() != "alpha" || all[1].Framework() != "beta" {
		names := make([]string, len(all))
		for i, d := range all {
			names[i] = d.Framework()
		}
		t.Errorf("All() order = %v, want [alpha beta]", names)
	}

	frameworks := r.Frameworks()
	if len(frameworks) != 2 || frameworks[0] != "alpha" || frameworks[1] != "beta" {
		t.Errorf("Frameworks() = %v", frameworks)
	}
}

func TestRegistry_RegisterReplaces(t *testing.T) {
	r := NewRegistry()
	r.Register("x", func() Detector { return &stubDetector{name: "first"} })
	r.Register("x", func() Detector { return &stubDetector{name: "second"} })

	d, ok := r.Create("x")
	if !ok {
		t.Fatal("Create(x) not found")
	}
	if d.Framework() != "second" {
		t.Errorf("framework = %q, want second", d.Framework())
	}
}

func TestRegistry_CreateReturnsFreshInstances(t *testing.T) {
	r := NewRegistry()
	r.Register("x", func() Detector { return &stubDetector{name: "x"} })

	a, _ := r.Create("x")
	b, _ := r.Create("x")
	if a == b {
		t.Error("Create returned the same instance twice")
	}
}
