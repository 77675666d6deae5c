package engine

import (
	"strings"
	"testing"
)

func TestSynthesizeResources(t *testing.T) {
	t.Run("two skills no interests", func(t *testing.T) {
		got := SynthesizeResources([]string{"Python", "Design"}, nil)
		if len(got) != 8 {
			t.Fatalf("got %d resources, want 8", len(got))
		}
		// Stable order: 4 Python links first, then 4 Design links.
		if !strings.Contains(got[0].Title, "Python") || got[0].Platform != "Udemy" {
			t.Errorf("first resource = %+v, want Udemy Python", got[0])
		}
		if !strings.Contains(got[4].Title, "Design") {
			t.Errorf("fifth resource = %+v, want Design", got[4])
		}
		wantTypes := []string{"course", "course", "video", "certificate"}
		for i, typ := range wantTypes {
			if got[i].Type != typ {
				t.Errorf("resource[%d].Type = %q, want %q", i, got[i].Type, typ)
			}
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		a := SynthesizeResources([]string{"Go"}, []string{"Music"})
		b := SynthesizeResources([]string{"Go"}, []string{"Music"})
		if len(a) != len(b) {
			t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
		}
		for i := range a {
			if a[i] != b[i] {
				t.Errorf("resource[%d] differs: %+v vs %+v", i, a[i], b[i])
			}
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if got := SynthesizeResources(nil, nil); len(got) != 0 {
			t.Errorf("got %d resources for empty input, want 0", len(got))
		}
	})

	t.Run("interests capped at three", func(t *testing.T) {
		got := SynthesizeResources(nil, []string{"A", "B", "C", "D", "E"})
		if len(got) != 6 {
			t.Errorf("got %d resources, want 6 (3 interests x 2)", len(got))
		}
	})

	t.Run("interest pair shape", func(t *testing.T) {
		got := SynthesizeResources(nil, []string{"Philosophy"})
		if len(got) != 2 {
			t.Fatalf("got %d resources, want 2", len(got))
		}
		if got[0].Type != "community" || got[1].Type != "reading" {
			t.Errorf("types = %q, %q, want community, reading", got[0].Type, got[1].Type)
		}
	})

	t.Run("url encoding", func(t *testing.T) {
		got := SynthesizeResources([]string{"Machine Learning"}, nil)
		for _, r := range got {
			if strings.Contains(r.URL, " ") {
				t.Errorf("unencoded space in URL %q", r.URL)
			}
			if !strings.Contains(r.URL, "Machine+Learning") {
				t.Errorf("URL %q missing escaped subject", r.URL)
			}
		}
	})

	t.Run("blank entries skipped", func(t *testing.T) {
		got := SynthesizeResources([]string{"Go", "  "}, []string{""})
		if len(got) != 4 {
			t.Errorf("got %d resources, want 4 (blanks skipped)", len(got))
		}
	})
}
