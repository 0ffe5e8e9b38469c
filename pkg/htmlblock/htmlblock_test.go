package htmlblock

import (
	"reflect"
	"strings"
	"testing"
)

func TestInjectIDsNumbersBlocksInOrder(t *testing.T) {
	in := `<h2>Der Artikel</h2><p>Ein Text.</p><section>Eine Übung</section>`
	out, ids, err := InjectIDs(in)
	if err != nil {
		t.Fatalf("InjectIDs: %v", err)
	}
	want := []string{"block-1", "block-2", "block-3"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
	for _, id := range want {
		if !strings.Contains(out, `data-block-id="`+id+`"`) {
			t.Errorf("output missing %s: %s", id, out)
		}
	}
}

func TestInjectIDsIsIdempotent(t *testing.T) {
	in := `<p>Eins</p><div>Zwei</div>`
	first, ids1, err := InjectIDs(in)
	if err != nil {
		t.Fatalf("InjectIDs: %v", err)
	}
	second, ids2, err := InjectIDs(first)
	if err != nil {
		t.Fatalf("InjectIDs (second pass): %v", err)
	}
	if first != second {
		t.Errorf("second pass changed output:\n%s\n%s", first, second)
	}
	if !reflect.DeepEqual(ids1, ids2) {
		t.Errorf("ids changed: %v vs %v", ids1, ids2)
	}
}

func TestInjectIDsPreservesExistingIDs(t *testing.T) {
	in := `<p data-block-id="intro">Eins</p><p>Zwei</p>`
	_, ids, err := InjectIDs(in)
	if err != nil {
		t.Fatalf("InjectIDs: %v", err)
	}
	want := []string{"intro", "block-1"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
}

func TestInjectIDsSkipsTakenNumbers(t *testing.T) {
	in := `<p data-block-id="block-1">Eins</p><p>Zwei</p>`
	_, ids, err := InjectIDs(in)
	if err != nil {
		t.Fatalf("InjectIDs: %v", err)
	}
	want := []string{"block-1", "block-2"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
}

func TestInjectIDsIgnoresInlineAndNestedElements(t *testing.T) {
	in := `<div><p>Verschachtelt</p></div><span>inline</span>`
	_, ids, err := InjectIDs(in)
	if err != nil {
		t.Fatalf("InjectIDs: %v", err)
	}
	// Only the top-level div counts; the nested p and the span do not.
	if len(ids) != 1 {
		t.Errorf("ids = %v, want exactly one", ids)
	}
}

func TestExtractIDs(t *testing.T) {
	tagged, _, err := InjectIDs(`<p>A</p><section>B</section>`)
	if err != nil {
		t.Fatalf("InjectIDs: %v", err)
	}
	ids, err := ExtractIDs(tagged)
	if err != nil {
		t.Fatalf("ExtractIDs: %v", err)
	}
	want := []string{"block-1", "block-2"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
}

func TestInjectIDsEmptyFragment(t *testing.T) {
	out, ids, err := InjectIDs("")
	if err != nil {
		t.Fatalf("InjectIDs: %v", err)
	}
	if out != "" || len(ids) != 0 {
		t.Errorf("empty fragment produced out=%q ids=%v", out, ids)
	}
}
