package route

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/idilsaglam/tada/internal/model"
)

type filterRecorder struct {
	got []model.Filter
}

func (r *filterRecorder) SetFilter(f model.Filter) { r.got = append(r.got, f) }

func (r *filterRecorder) last() model.Filter {
	if len(r.got) == 0 {
		return ""
	}
	return r.got[len(r.got)-1]
}

func TestParseFragment(t *testing.T) {
	cases := map[string]model.Filter{
		"#/":          model.FilterAll,
		"":            model.FilterAll,
		"#/active":    model.FilterActive,
		"/active":     model.FilterAll,
		"#active":     model.FilterAll,
		"active":      model.FilterAll,
		"#":           model.FilterAll,
		"#/completed": model.FilterCompleted,
		"#/Active":    model.FilterAll,
		"#/active/x":  model.FilterAll,
		"#/bogus":     model.FilterAll,
	}
	for in, want := range cases {
		if got := ParseFragment(in); got != want {
			t.Errorf("ParseFragment(%q) = %s; want %s", in, got, want)
		}
	}
	for _, f := range model.Filters {
		if got := ParseFragment(FragmentFor(f)); got != f {
			t.Errorf("round trip of %s gave %s", f, got)
		}
	}
}

func TestBridgeFollowsNavigation(t *testing.T) {
	h := NewHistory("#/active")
	view := &filterRecorder{}
	b := NewBridge(h, view)

	b.Start()
	if view.last() != model.FilterActive {
		t.Fatalf("expected initial fragment applied; got %v", view.got)
	}
	h.Navigate("#/completed")
	h.Navigate("#/whatever")
	if want := []model.Filter{model.FilterActive, model.FilterCompleted, model.FilterAll}; len(view.got) != 3 || view.got[1] != want[1] || view.got[2] != want[2] {
		t.Fatalf("expected %v; got %v", want, view.got)
	}

	b.Stop()
	h.Navigate("#/active")
	if len(view.got) != 3 {
		t.Fatalf("expected no updates after stop")
	}
}

func TestRepeatedMountsDoNotLeakListeners(t *testing.T) {
	h := NewHistory("#/")
	for i := 0; i < 10; i++ {
		b := NewBridge(h, &filterRecorder{})
		b.Start()
		b.Start()
		if h.Listeners() != 1 {
			t.Fatalf("mount %d: expected 1 listener; got %d", i, h.Listeners())
		}
		b.Stop()
		b.Stop()
	}
	if h.Listeners() != 0 {
		t.Fatalf("expected no listeners left; got %d", h.Listeners())
	}
}

func TestParseFragmentIsTotal(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := rapid.String().Draw(t, "fragment")
		got := ParseFragment(in)
		if !got.Valid() {
			t.Fatalf("ParseFragment(%q) = %q; not a known filter", in, got)
		}
		if got != model.FilterAll && in != "#/"+string(got) {
			t.Fatalf("ParseFragment(%q) = %s; only an exact match may select it", in, got)
		}
	})
}
