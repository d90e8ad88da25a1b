package humastar

import (
	"fmt"
	"strings"
)

// Action is one state-dependent operation a response advertises, emitted
// as an RFC 8288 Link header with method/title/schema extension params:
//
//	</api/v1/layers/rivers>; rel="delete"; method="DELETE"; title="Delete layer"
//
// The layer catalog uses these so a client can offer edit, move and
// preview affordances without hard-coding route shapes.
type Action struct {
	Rel    string // link relation, IANA or custom ("move", "preview")
	Href   string // target URL
	Method string // HTTP method the action is invoked with
	Title  string // human-readable label
	Schema string // JSON Schema URL describing the request body, if any
}

// Actor marks response bodies that advertise actions on themselves.
type Actor interface {
	Actions() []Action
}

// LinkHeader serializes the action as a Link header value. Optional
// parameters are omitted when empty.
func (a Action) LinkHeader() string {
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(a.Href)
	b.WriteString(`>; rel="`)
	b.WriteString(a.Rel)
	b.WriteByte('"')
	for _, p := range [...][2]string{
		{"method", a.Method},
		{"title", a.Title},
		{"schema", a.Schema},
	} {
		if p[1] == "" {
			continue
		}
		b.WriteString(`; `)
		b.WriteString(p[0])
		b.WriteString(`="`)
		b.WriteString(p[1])
		b.WriteByte('"')
	}
	return b.String()
}

// ActionDef is an action template declared once per resource type. Pattern
// carries a single %s placeholder that expansion fills with the resource ID.
type ActionDef struct {
	Rel     string
	Pattern string
	Method  string
	Title   string
	Schema  string
}

// ActionsFor expands defs against one resource ID.
func ActionsFor(id string, defs []ActionDef) []Action {
	out := make([]Action, 0, len(defs))
	for _, d := range defs {
		out = append(out, Action{
			Rel:    d.Rel,
			Href:   fmt.Sprintf(d.Pattern, id),
			Method: d.Method,
			Title:  d.Title,
			Schema: d.Schema,
		})
	}
	return out
}
