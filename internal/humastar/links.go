package humastar

import (
	"fmt"
	"path"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// relTable maps operation paths to their static RFC 8288 Link header
// values, derived once from the route table at startup.
type relTable map[string][]string

var rels relTable

func (t relTable) add(from, to, rel string) {
	v := fmt.Sprintf(`<%s>; rel="%s"`, to, rel)
	for _, cur := range t[from] {
		if cur == v {
			return
		}
	}
	t[from] = append(t[from], v)
}

// entryPoint is the path whose links double as the API's front door.
const entryPoint = "/health"

// AutoLinks derives hypermedia Link headers from the registered route
// table: items link up to their collections, collections advertise their
// item template and create form, collections sharing a tag cross-link,
// and the entry point lists every collection plus the IANA discovery
// rels. Datastar panel routes are excluded; their responses are SSE
// streams, not resources. Call after every route is registered.
func AutoLinks(api huma.API) {
	oapi := api.OpenAPI()
	rels = relTable{}

	type route struct {
		path string
		item *huma.PathItem
		tags []string
	}
	var collections, items []route

	for p, pi := range oapi.Paths {
		r := route{path: p, item: pi, tags: routeTags(pi)}
		if hasTag(r.tags, "panel") {
			continue
		}
		if strings.Contains(p, "{") {
			items = append(items, r)
		} else {
			collections = append(collections, r)
		}
	}

	for _, it := range items {
		parent := path.Dir(it.path)
		if _, ok := oapi.Paths[parent]; ok {
			rels.add(it.path, parent, "collection")
			rels.add(it.path, parent, "up")
		}
		if it.item.Put != nil || it.item.Patch != nil {
			rels.add(it.path, it.path, "edit")
			rels.add(it.path, it.path, "edit-form")
		}
	}

	for _, c := range collections {
		for _, it := range items {
			if path.Dir(it.path) == c.path {
				rels.add(c.path, it.path, "item")
			}
		}
		if c.item.Post != nil {
			rels.add(c.path, c.path, "create-form")
		}
		if c.path != entryPoint {
			rels.add(c.path, entryPoint, "up")
			rels.add(entryPoint, c.path, lastSegment(c.path))
		}
	}

	// Collections sharing a tag advertise each other.
	for _, a := range collections {
		for _, b := range collections {
			if a.path != b.path && sharesTag(a.tags, b.tags) {
				rels.add(a.path, b.path, lastSegment(b.path))
			}
		}
	}

	rels.add(entryPoint, "/openapi.json", "describedby")
	rels.add(entryPoint, "/openapi.json", "service-desc")
	rels.add(entryPoint, "/docs", "service-doc")

	// Every resource points at its JSON Schema fragment.
	for _, rs := range [][]route{collections, items} {
		for _, r := range rs {
			if ref := successSchemaRef(r.item); ref != "" {
				rels.add(r.path, "/openapi.json#/components/schemas/"+ref, "describedby")
			}
		}
	}

	for p, pi := range oapi.Paths {
		headers := rels[p]
		if len(headers) == 0 {
			continue
		}
		for _, op := range operationsOf(pi) {
			if op != nil {
				documentLinks(op, headers)
			}
		}
	}
}

// LinkTransformer injects the derived Link headers at response time and
// folds in the dynamic ones: a resolved self link on item paths, page
// window rels from Pager bodies, and state-dependent Actor actions.
func LinkTransformer() huma.Transformer {
	return func(ctx huma.Context, status string, v any) (any, error) {
		op := ctx.Operation()
		if op == nil {
			return v, nil
		}
		for _, link := range rels[op.Path] {
			ctx.AppendHeader("Link", link)
		}
		if strings.Contains(op.Path, "{") {
			ctx.AppendHeader("Link", fmt.Sprintf(`<%s>; rel="self"`, ctx.URL().Path))
		}
		if p, ok := v.(Pager); ok {
			for _, link := range p.PaginationLinks(ctx.URL().Path) {
				ctx.AppendHeader("Link", link)
			}
		}
		if a, ok := v.(Actor); ok {
			for _, act := range a.Actions() {
				ctx.AppendHeader("Link", act.LinkHeader())
			}
		}
		return v, nil
	}
}

// RootLinks returns the entry point's Link headers, for handlers outside
// huma (the JSON service card at /).
func RootLinks() []string {
	return rels[entryPoint]
}

// documentLinks mirrors the runtime headers into the operation's 2xx
// response as OpenAPI Link objects, so the published document itself
// carries the relationships.
func documentLinks(op *huma.Operation, headers []string) {
	var resp *huma.Response
	for code, r := range op.Responses {
		if strings.HasPrefix(code, "2") {
			resp = r
			break
		}
	}
	if resp == nil {
		return
	}
	if resp.Links == nil {
		resp.Links = map[string]*huma.Link{}
	}
	for _, h := range headers {
		rel, href, ok := splitLink(h)
		if !ok {
			continue
		}
		resp.Links[rel] = &huma.Link{
			OperationRef: href,
			Description:  "Related: " + rel,
		}
	}
}

// splitLink parses the simple `<href>; rel="name"` form the rel table
// stores. Headers with extension parameters are not stored there.
func splitLink(h string) (rel, href string, ok bool) {
	href, rest, found := strings.Cut(h, ">; ")
	if !found {
		return "", "", false
	}
	rest, found = strings.CutPrefix(rest, `rel="`)
	if !found {
		return "", "", false
	}
	return strings.TrimSuffix(rest, `"`), strings.TrimPrefix(href, "<"), true
}

func successSchemaRef(pi *huma.PathItem) string {
	if pi.Get == nil {
		return ""
	}
	for code, resp := range pi.Get.Responses {
		if !strings.HasPrefix(code, "2") {
			continue
		}
		for _, mt := range resp.Content {
			if mt.Schema != nil && mt.Schema.Ref != "" {
				return mt.Schema.Ref[strings.LastIndexByte(mt.Schema.Ref, '/')+1:]
			}
		}
	}
	return ""
}

func routeTags(pi *huma.PathItem) []string {
	for _, op := range operationsOf(pi) {
		if op != nil && len(op.Tags) > 0 {
			return op.Tags
		}
	}
	return nil
}

func operationsOf(pi *huma.PathItem) []*huma.Operation {
	return []*huma.Operation{pi.Get, pi.Post, pi.Put, pi.Patch, pi.Delete}
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func sharesTag(a, b []string) bool {
	for _, at := range a {
		if hasTag(b, at) {
			return true
		}
	}
	return false
}

func lastSegment(p string) string {
	parts := strings.Split(strings.TrimRight(p, "/"), "/")
	return parts[len(parts)-1]
}
