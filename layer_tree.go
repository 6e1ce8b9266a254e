package compositor

import (
	"iter"
	"maps"
	"slices"

	"github.com/gogpu/compositor/proptree"
)

// LayerTree owns a set of layers, their relation tables and the property
// trees built from them.
//
// A LayerTree is not safe for concurrent use. Different trees may be
// calculated on different goroutines.
type LayerTree struct {
	layers map[LayerID]*Layer
	nextID LayerID
	root   *Layer

	// Non-owning relations, keyed by the dependent layer.
	clipParents   map[LayerID]LayerID
	scrollParents map[LayerID]LayerID
	scrollClips   map[LayerID]LayerID

	props proptree.PropertyTrees

	// Build results, valid until the next rebuild.
	built         []builtLayer
	builtInputs   CalcInputs
	hasBuilt      bool
	hasAnimations bool

	passID   int
	lastList RenderSurfaceLayerList

	selectionStart LayerSelectionBound
	selectionEnd   LayerSelectionBound
}

// NewLayerTree returns an empty tree.
func NewLayerTree() *LayerTree {
	t := &LayerTree{
		layers:        make(map[LayerID]*Layer),
		nextID:        1,
		clipParents:   make(map[LayerID]LayerID),
		scrollParents: make(map[LayerID]LayerID),
		scrollClips:   make(map[LayerID]LayerID),
	}
	t.props.NeedsRebuild = true
	return t
}

// NewLayer creates a detached layer owned by t.
func (t *LayerTree) NewLayer() *Layer {
	l := newLayer(t, t.nextID)
	t.layers[l.id] = l
	t.nextID++
	return l
}

// LayerByID returns the layer with the given id, or nil.
func (t *LayerTree) LayerByID(id LayerID) *Layer {
	return t.layers[id]
}

// Layers returns all layers of the tree in id order, attached or not.
func (t *LayerTree) Layers() iter.Seq[*Layer] {
	return func(yield func(*Layer) bool) {
		for _, id := range slices.Sorted(maps.Keys(t.layers)) {
			if !yield(t.layers[id]) {
				return
			}
		}
	}
}

// Len returns the number of layers created by t.
func (t *LayerTree) Len() int { return len(t.layers) }

// Root returns the root layer, or nil.
func (t *LayerTree) Root() *Layer { return t.root }

// SetRoot makes l the root layer, detaching it from its parent.
func (t *LayerTree) SetRoot(l *Layer) error {
	if l != nil {
		if l.tree != t {
			return ErrLayerInAnotherTree
		}
		if l.owner != nil {
			return ErrLayerHasOwner
		}
		l.RemoveFromParent()
	}
	t.root = l
	t.SetNeedsRebuild()
	return nil
}

// SetNeedsRebuild forces the next pass to rebuild the property trees.
func (t *LayerTree) SetNeedsRebuild() { t.props.NeedsRebuild = true }

// NeedsRebuild reports whether the next pass rebuilds the property trees.
func (t *LayerTree) NeedsRebuild() bool { return t.props.NeedsRebuild }

// PropertyTrees returns the trees built by the last pass. They must not be
// modified.
func (t *LayerTree) PropertyTrees() *proptree.PropertyTrees { return &t.props }

// RenderSurfaceLayerList returns the list produced by the last pass.
func (t *LayerTree) RenderSurfaceLayerList() RenderSurfaceLayerList { return t.lastList }

func (t *LayerTree) setRelation(table map[LayerID]LayerID, l, p *Layer) error {
	if p == nil {
		delete(table, l.id)
		t.SetNeedsRebuild()
		return nil
	}
	if p.tree != t {
		return ErrLayerInAnotherTree
	}
	if p == l {
		return ErrCycle
	}
	table[l.id] = p.id
	t.SetNeedsRebuild()
	return nil
}

func (t *LayerTree) relation(table map[LayerID]LayerID, l *Layer) *Layer {
	id, ok := table[l.id]
	if !ok {
		return nil
	}
	return t.layers[id]
}
