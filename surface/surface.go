// Package surface loads named API surface configurations. A surface
// selects which parts of a codebase count as "the API" for one
// audience: a visibility threshold plus annotations that force items
// onto or off the surface. Surfaces inherit through extends chains;
// the whole configuration is validated at load time.
package surface

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dhamidi/apisurf/compare"
	"github.com/dhamidi/apisurf/model"
)

// Surface is one named selection of the API.
type Surface struct {
	Name       string
	Extends    string
	Visibility model.Visibility
	Shown      []string
	Hidden     []string
}

// Config holds every surface of one configuration file, validated:
// names are unique, extends targets exist and the extends relation is
// acyclic. Configs are immutable after Load.
type Config struct {
	surfaces map[string]*Surface
	order    []string
	chains   map[string][]*Surface
}

// DuplicateSurfaceError reports a surface name defined twice.
type DuplicateSurfaceError struct {
	Name  string
	Known []string
}

func (e *DuplicateSurfaceError) Error() string {
	return fmt.Sprintf("duplicate surface %q; defined surfaces: %s",
		e.Name, strings.Join(e.Known, ", "))
}

// UnknownSurfaceError reports an extends reference to a surface that
// does not exist.
type UnknownSurfaceError struct {
	Name         string
	ReferencedBy string
	Known        []string
}

func (e *UnknownSurfaceError) Error() string {
	return fmt.Sprintf("surface %q extends unknown surface %q; defined surfaces: %s",
		e.ReferencedBy, e.Name, strings.Join(e.Known, ", "))
}

// CycleError reports a cyclic extends relation. Chain holds the full
// cycle, first name repeated at the end.
type CycleError struct {
	Chain []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic surface extends chain: %s", strings.Join(e.Chain, " -> "))
}

type xmlConfig struct {
	XMLName  xml.Name     `xml:"surfaces"`
	Surfaces []xmlSurface `xml:"surface"`
}

type xmlSurface struct {
	Name       string          `xml:"name,attr"`
	Extends    string          `xml:"extends,attr"`
	Visibility string          `xml:"visibility,attr"`
	Show       []xmlAnnotation `xml:"show"`
	Hide       []xmlAnnotation `xml:"hide"`
}

type xmlAnnotation struct {
	Annotation string `xml:"annotation,attr"`
}

// Load reads and validates a surface configuration file.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse reads a surface configuration and forces the full validation:
// every duplicate, unknown reference and cycle is found now, never
// during a later comparison.
func Parse(r io.Reader) (*Config, error) {
	var raw xmlConfig
	if err := xml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("parsing surface config: %w", err)
	}
	if len(raw.Surfaces) == 0 {
		return nil, fmt.Errorf("surface config declares no surfaces")
	}

	cfg := &Config{
		surfaces: make(map[string]*Surface, len(raw.Surfaces)),
		chains:   make(map[string][]*Surface, len(raw.Surfaces)),
	}
	for _, rs := range raw.Surfaces {
		if rs.Name == "" {
			return nil, fmt.Errorf("surface with no name attribute")
		}
		if _, exists := cfg.surfaces[rs.Name]; exists {
			return nil, &DuplicateSurfaceError{Name: rs.Name, Known: cfg.order}
		}
		s := &Surface{
			Name:       rs.Name,
			Extends:    rs.Extends,
			Visibility: model.VisibilityPublic,
		}
		if rs.Visibility != "" {
			v, err := parseVisibility(rs.Visibility)
			if err != nil {
				return nil, fmt.Errorf("surface %q: %w", rs.Name, err)
			}
			s.Visibility = v
		}
		for _, a := range rs.Show {
			s.Shown = append(s.Shown, a.Annotation)
		}
		for _, a := range rs.Hide {
			s.Hidden = append(s.Hidden, a.Annotation)
		}
		cfg.surfaces[rs.Name] = s
		cfg.order = append(cfg.order, rs.Name)
	}

	for _, name := range cfg.order {
		chain, err := cfg.resolveChain(name)
		if err != nil {
			return nil, err
		}
		cfg.chains[name] = chain
	}
	return cfg, nil
}

func parseVisibility(s string) (model.Visibility, error) {
	switch s {
	case "public":
		return model.VisibilityPublic, nil
	case "protected":
		return model.VisibilityProtected, nil
	case "package":
		return model.VisibilityPackage, nil
	case "private":
		return model.VisibilityPrivate, nil
	}
	return "", fmt.Errorf("unknown visibility %q", s)
}

// resolveChain walks the extends relation base-first, capturing the
// full path so a cycle error can show the whole loop.
func (cfg *Config) resolveChain(name string) ([]*Surface, error) {
	var path []string
	seen := make(map[string]bool)
	for current := name; current != ""; {
		if seen[current] {
			return nil, &CycleError{Chain: append(path, current)}
		}
		seen[current] = true
		path = append(path, current)
		s, ok := cfg.surfaces[current]
		if !ok {
			return nil, &UnknownSurfaceError{
				Name:         current,
				ReferencedBy: path[len(path)-2],
				Known:        cfg.Names(),
			}
		}
		current = s.Extends
	}

	chain := make([]*Surface, len(path))
	for i, n := range path {
		chain[len(path)-1-i] = cfg.surfaces[n]
	}
	return chain, nil
}

// Names returns every defined surface name in declaration order.
func (cfg *Config) Names() []string {
	names := make([]string, len(cfg.order))
	copy(names, cfg.order)
	return names
}

// Find returns the named surface, or nil.
func (cfg *Config) Find(name string) *Surface {
	return cfg.surfaces[name]
}

// Chain returns the extends chain of the named surface, base first and
// the surface itself last.
func (cfg *Config) Chain(name string) ([]*Surface, error) {
	chain, ok := cfg.chains[name]
	if !ok {
		return nil, &UnknownSurfaceError{Name: name, ReferencedBy: name, Known: cfg.Names()}
	}
	return chain, nil
}

// effective is the flattened view of one chain: the leaf's visibility
// threshold, annotation sets accumulated over every ancestor.
type effective struct {
	visibility model.Visibility
	shown      map[string]bool
	hidden     map[string]bool
}

func flatten(chain []*Surface) effective {
	eff := effective{
		visibility: chain[len(chain)-1].Visibility,
		shown:      make(map[string]bool),
		hidden:     make(map[string]bool),
	}
	for _, s := range chain {
		for _, a := range s.Shown {
			eff.shown[a] = true
			delete(eff.hidden, a)
		}
		for _, a := range s.Hidden {
			eff.hidden[a] = true
			delete(eff.shown, a)
		}
	}
	return eff
}

var visibilityRank = map[model.Visibility]int{
	model.VisibilityPrivate:   0,
	model.VisibilityPackage:   1,
	model.VisibilityProtected: 2,
	model.VisibilityPublic:    3,
}

// Filter builds the comparison predicate for the named surface. A shown
// annotation admits an item the visibility threshold or a hidden flag
// would exclude; a hidden annotation always excludes.
func (cfg *Config) Filter(name string) (compare.Filter, error) {
	chain, err := cfg.Chain(name)
	if err != nil {
		return nil, err
	}
	eff := flatten(chain)
	threshold := visibilityRank[eff.visibility]

	return func(item model.Item) bool {
		for _, ann := range item.Modifiers().Annotations() {
			if eff.hidden[ann.QualifiedName()] {
				return false
			}
		}
		if item.Removed() {
			return false
		}
		for _, ann := range item.Modifiers().Annotations() {
			if eff.shown[ann.QualifiedName()] {
				return true
			}
		}
		if item.Hidden() {
			return false
		}
		return visibilityRank[item.Modifiers().Visibility()] >= threshold
	}, nil
}

// Sorted returns every surface ordered by name; the declaration order
// is kept in Names.
func (cfg *Config) Sorted() []*Surface {
	names := cfg.Names()
	sort.Strings(names)
	surfaces := make([]*Surface, len(names))
	for i, n := range names {
		surfaces[i] = cfg.surfaces[n]
	}
	return surfaces
}
