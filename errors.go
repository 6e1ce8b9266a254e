package compositor

import "errors"

// Sentinel errors returned by layer tree mutations. The draw properties
// pass itself never fails.
var (
	// ErrLayerInAnotherTree is returned when layers from different trees
	// are related to each other.
	ErrLayerInAnotherTree = errors.New("compositor: layer belongs to another tree")

	// ErrCycle is returned when a mutation would make a layer its own
	// ancestor or relate a layer to itself.
	ErrCycle = errors.New("compositor: mutation would create a cycle")

	// ErrNotInTree is returned when a layer id does not name a layer of
	// the tree.
	ErrNotInTree = errors.New("compositor: layer not in tree")

	// ErrLayerHasOwner is returned when a mask or replica layer is used as
	// a regular child, or attached to a second owner.
	ErrLayerHasOwner = errors.New("compositor: layer is a mask or replica of another layer")
)
