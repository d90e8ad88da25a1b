package legend

import (
	"fmt"
	"reflect"

	"github.com/joeblew999/plat-legend/internal/errs"
	"github.com/joeblew999/plat-legend/internal/viewport"
)

// Provider is the legend capability a data source may implement.
// HasLegends answers cheaply whether entries exist at all; Legends returns
// them in display order. Sources without the capability are skipped.
type Provider interface {
	HasLegends() bool
	Legends() []Entry
}

// Titler optionally supplies a display title for the source's block.
type Titler interface {
	Title() string
}

// CollapsePreference lets a source veto the panel's collapse affordance,
// for displays that must keep the legend permanently open.
type CollapsePreference interface {
	LegendsCollapsible() bool
}

// Collector derives ordered legend content from a viewport frame.
// Stateless; the zero value is ready to use.
type Collector struct{}

// Collect walks frame layers in draw order and builds one block per
// visible, legend-bearing source. Layers that are out of view, have no
// source, lack the Provider capability or provide zero entries are skipped
// silently. A source shared by several layers contributes at most one
// block. Defects (a panicking capability, malformed entries) are returned
// as PROVIDER_DEFECT errors naming the layer; the offending source
// contributes nothing and the rest of the legend is unaffected.
//
// Output is deterministic: unchanged inputs yield value-identical content,
// which Panel's re-render diff relies on.
func (Collector) Collect(frame viewport.Frame) (Content, []error) {
	content := Content{Collapsible: true}
	var defects []error
	seen := make(map[any]bool)

	for _, ls := range frame.Layers {
		if !ls.InView || ls.Source == nil {
			continue
		}
		if isComparable(ls.Source) {
			if seen[ls.Source] {
				continue
			}
			seen[ls.Source] = true
		}
		block, collapsible, ok, err := probe(ls.Source)
		if err != nil {
			defects = append(defects, errs.Wrap(errs.ErrCodeProviderDefect, err, "layer %q", ls.ID))
			continue
		}
		if !ok {
			continue
		}
		if !collapsible {
			content.Collapsible = false
		}
		content.Blocks = append(content.Blocks, block)
	}
	return content, defects
}

// probe queries one source's legend capabilities. ok is false when the
// source has nothing to contribute. A panicking capability is an
// integration defect in the source; it is captured and reported rather
// than allowed to take down the rest of the legend.
func probe(src any) (block Block, collapsible bool, ok bool, err error) {
	collapsible = true
	defer func() {
		if r := recover(); r != nil {
			block, ok = Block{}, false
			err = fmt.Errorf("legend capability panicked: %v", r)
		}
	}()

	p, isProvider := src.(Provider)
	if !isProvider || !p.HasLegends() {
		return block, collapsible, false, nil
	}
	entries := p.Legends()
	if len(entries) == 0 {
		return block, collapsible, false, nil
	}

	block.Entries = make([]Entry, len(entries))
	for i, e := range entries {
		e = e.Normalized()
		if !e.Kind.Valid() {
			return Block{}, collapsible, false, fmt.Errorf("entry %q: invalid geometry kind %q", e.Label, e.Kind)
		}
		block.Entries[i] = e
	}
	if t, isTitler := src.(Titler); isTitler {
		block.Title = t.Title()
	}
	if c, hasPref := src.(CollapsePreference); hasPref {
		collapsible = c.LegendsCollapsible()
	}
	return block, collapsible, true, nil
}

func isComparable(v any) bool {
	t := reflect.TypeOf(v)
	return t != nil && t.Comparable()
}
