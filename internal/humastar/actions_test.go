package humastar

import "testing"

func TestActionLinkHeader(t *testing.T) {
	a := Action{
		Rel:    "delete",
		Href:   "/api/v1/layers/rivers",
		Method: "DELETE",
		Title:  "Delete layer",
	}
	want := `</api/v1/layers/rivers>; rel="delete"; method="DELETE"; title="Delete layer"`
	if got := a.LinkHeader(); got != want {
		t.Errorf("LinkHeader()=%q, want %q", got, want)
	}
}

func TestActionLinkHeaderMinimal(t *testing.T) {
	a := Action{Rel: "preview", Href: "/api/v1/layers/rivers/preview"}
	want := `</api/v1/layers/rivers/preview>; rel="preview"`
	if got := a.LinkHeader(); got != want {
		t.Errorf("LinkHeader()=%q, want %q", got, want)
	}
}

func TestActionsFor(t *testing.T) {
	defs := []ActionDef{
		{Rel: "edit", Pattern: "/api/v1/layers/%s", Method: "PUT", Title: "Update layer"},
		{Rel: "move", Pattern: "/api/v1/layers/%s/move", Method: "POST", Title: "Reorder layer"},
	}
	actions := ActionsFor("rivers", defs)
	if len(actions) != 2 {
		t.Fatalf("len=%d, want 2", len(actions))
	}
	if actions[0].Href != "/api/v1/layers/rivers" {
		t.Errorf("href=%q", actions[0].Href)
	}
	if actions[1].Href != "/api/v1/layers/rivers/move" {
		t.Errorf("href=%q", actions[1].Href)
	}
	if actions[1].Method != "POST" {
		t.Errorf("method=%q", actions[1].Method)
	}
}
