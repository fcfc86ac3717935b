package genview

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestListViewDispatch(t *testing.T) {
	a, b := &note{ID: "1", Title: "a"}, &note{ID: "2", Title: "b"}
	store := newNoteStore(a, b)
	r := &recordingRenderer{}
	v, err := NewListView(ListConfig[*note]{Name: "note_list", Template: "notes.html", Renderer: r, Store: store})
	if err != nil {
		t.Fatal(err)
	}

	resp, err := v.Dispatch(NewTestRequest(http.MethodGet, nil, nil))
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if !resp.IsRendered() {
		t.Fatalf("Dispatch() = %+v, want a render", resp)
	}

	got, _ := r.last().data.Get("object_list")
	if diff := cmp.Diff([]*note{a, b}, got); diff != "" {
		t.Errorf("object_list mismatch (-want +got):\n%s", diff)
	}
}

func TestListViewEmpty(t *testing.T) {
	r := &recordingRenderer{}
	v, _ := NewListView(ListConfig[*note]{Name: "note_list", Template: "notes.html", Renderer: r, Store: newNoteStore()})

	if _, err := v.Dispatch(NewTestRequest(http.MethodGet, nil, nil)); err != nil {
		t.Fatal(err)
	}
	got, ok := r.last().data.Get("object_list")
	if !ok {
		t.Fatal("object_list should be present for an empty store")
	}
	if list := got.([]*note); len(list) != 0 {
		t.Errorf("object_list = %v, want empty", list)
	}
}

func TestListViewStoreError(t *testing.T) {
	boom := errors.New("disk on fire")
	store := newNoteStore()
	store.allErr = boom
	r := &recordingRenderer{}
	v, _ := NewListView(ListConfig[*note]{Name: "note_list", Template: "notes.html", Renderer: r, Store: store})

	_, err := v.Dispatch(NewTestRequest(http.MethodGet, nil, nil))
	if !errors.Is(err, boom) {
		t.Errorf("Dispatch() error = %v, want store error", err)
	}
	if r.count() != 0 {
		t.Error("nothing should render when the store fails")
	}
}

func TestNewListViewRequiresStore(t *testing.T) {
	_, err := NewListView(ListConfig[*note]{Name: "note_list", Template: "notes.html", Renderer: &recordingRenderer{}})
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Field != "store" {
		t.Errorf("NewListView() error = %v, want missing store", err)
	}
}
