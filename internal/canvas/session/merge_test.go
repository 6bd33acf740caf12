package session

import (
	"encoding/json"
	"reflect"
	"testing"
)

func element(id string, version int64, editedBy, data string) Element {
	return Element{ID: id, Version: version, EditedBy: editedBy, Data: json.RawMessage(data)}
}

func TestMergeElementsHigherVersionWins(t *testing.T) {
	local := []Element{element("a", 3, "client-1", `{"x":1}`)}
	remote := []Element{element("a", 5, "client-2", `{"x":2}`)}

	merged := MergeElements(local, remote)
	if len(merged) != 1 || merged[0].Version != 5 {
		t.Fatalf("merged = %+v, want remote version 5", merged)
	}

	// The lower remote version must not clobber a newer local element.
	merged = MergeElements(remote, local)
	if len(merged) != 1 || merged[0].Version != 5 {
		t.Fatalf("merged = %+v, want local version 5 kept", merged)
	}
}

func TestMergeElementsTieBreaksOnClientID(t *testing.T) {
	local := []Element{element("a", 4, "client-1", `{"x":1}`)}
	remote := []Element{element("a", 4, "client-2", `{"x":2}`)}

	merged := MergeElements(local, remote)
	if len(merged) != 1 || merged[0].EditedBy != "client-2" {
		t.Fatalf("merged = %+v, want client-2 to win the tie", merged)
	}

	merged = MergeElements(remote, local)
	if len(merged) != 1 || merged[0].EditedBy != "client-2" {
		t.Fatalf("merged = %+v, want client-2 to win regardless of side", merged)
	}
}

func TestMergeElementsKeepsDisjointElements(t *testing.T) {
	local := []Element{element("b", 1, "client-1", `{}`)}
	remote := []Element{element("a", 1, "client-2", `{}`), element("c", 2, "client-2", `{}`)}

	merged := MergeElements(local, remote)
	if len(merged) != 3 {
		t.Fatalf("merged %d elements, want 3", len(merged))
	}
	for i, wantID := range []string{"a", "b", "c"} {
		if merged[i].ID != wantID {
			t.Fatalf("merged[%d].ID = %s, want %s", i, merged[i].ID, wantID)
		}
	}
}

// Merging the same updates in any arrival order must converge on the same
// state.
func TestMergeElementsConverges(t *testing.T) {
	base := []Element{element("a", 1, "client-1", `{"v":"base"}`)}
	updates := [][]Element{
		{element("a", 2, "client-2", `{"v":"second"}`)},
		{element("a", 3, "client-1", `{"v":"third"}`), element("b", 1, "client-1", `{}`)},
		{element("a", 3, "client-3", `{"v":"tie"}`)},
	}

	orders := [][]int{
		{0, 1, 2},
		{0, 2, 1},
		{1, 0, 2},
		{1, 2, 0},
		{2, 0, 1},
		{2, 1, 0},
	}

	var want []Element
	for i, order := range orders {
		state := append([]Element(nil), base...)
		for _, idx := range order {
			state = MergeElements(state, updates[idx])
		}
		if i == 0 {
			want = state
			continue
		}
		if !reflect.DeepEqual(state, want) {
			t.Fatalf("order %v produced %+v, want %+v", order, state, want)
		}
	}

	if want[0].Version != 3 || want[0].EditedBy != "client-3" {
		t.Fatalf("converged element = %+v, want version 3 from client-3", want[0])
	}
}

func TestMergeElementsIdempotent(t *testing.T) {
	state := []Element{element("a", 2, "client-1", `{}`), element("b", 1, "client-2", `{}`)}

	once := MergeElements(state, state)
	if !reflect.DeepEqual(once, MergeElements(once, state)) {
		t.Fatal("re-merging the same elements changed the state")
	}
}
