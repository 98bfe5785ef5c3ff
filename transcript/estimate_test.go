package transcript

import (
	"reflect"
	"testing"
)

func TestSplitSentences(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"One sentence", []string{"One sentence"}},
		{"First. Second! Third? Fourth", []string{"First.", "Second!", "Third?", "Fourth"}},
		{"Rates rose 0.5 points. Done.", []string{"Rates rose 0.5 points.", "Done."}},
		{"Wait...  what?\nYes.", []string{"Wait...", "what?", "Yes."}},
	}

	for _, c := range cases {
		got := SplitSentences(c.in)
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("SplitSentences(%q) = %q; want %q", c.in, got, c.want)
		}
	}
}

func TestFromTextEstimatesOrderedSegments(t *testing.T) {
	tr := FromText("Five words are right here. Two words.")
	if len(tr) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(tr))
	}
	if tr[0].Start != 0 || tr[0].End != 2 {
		t.Errorf("first segment = [%v, %v), want [0, 2)", tr[0].Start, tr[0].End)
	}
	if tr[1].Start != tr[0].End {
		t.Errorf("segments not contiguous: %v then %v", tr[0].End, tr[1].Start)
	}
	if err := Validate(tr); err != nil {
		t.Fatalf("estimated transcript invalid: %v", err)
	}
}
