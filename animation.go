package compositor

// AnimatedProperty is a set of layer properties targeted by animations.
type AnimatedProperty uint8

// Animated properties.
const (
	PropertyTransform AnimatedProperty = 1 << iota
	PropertyOpacity
	PropertyFilter
	PropertyScrollOffset
)

// Has reports whether p contains all properties of q.
func (p AnimatedProperty) Has(q AnimatedProperty) bool { return p&q == q && q != 0 }

// Animations is the view of a layer's animations the draw properties pass
// consumes. Keyframe evaluation happens elsewhere; only the existence of
// animations and their effect on scale matter here.
type Animations interface {
	// IsCurrentlyAnimating reports whether an animation of p is running.
	IsCurrentlyAnimating(p AnimatedProperty) bool
	// HasPotentiallyRunningAnimation reports whether an animation of p is
	// running or waiting to start.
	HasPotentiallyRunningAnimation(p AnimatedProperty) bool
	// MaximumTargetScale returns the largest 2-D scale any transform
	// animation reaches. ok is false when it cannot be computed.
	MaximumTargetScale() (scale float64, ok bool)
	// AnimationStartScale returns the 2-D scale transform animations
	// start at. ok is false when it cannot be computed.
	AnimationStartScale() (scale float64, ok bool)
	IsAnimationStartingThisFrame() bool
	// HasOnlyTranslationTransforms reports whether every transform
	// animation leaves scale unchanged.
	HasOnlyTranslationTransforms() bool
}

// AnimationState is a plain implementation of [Animations] for callers that
// evaluate animations themselves and fixtures.
type AnimationState struct {
	// Running is the set of properties with a running animation.
	Running AnimatedProperty
	// Waiting is the set of properties with an animation that has not
	// started yet.
	Waiting AnimatedProperty

	// AffectsScale marks transform animations that change scale.
	AffectsScale bool
	MaxScale     float64
	StartScale   float64
	// ScaleUnknown makes MaximumTargetScale and AnimationStartScale fail.
	ScaleUnknown bool

	StartingThisFrame bool
}

var _ Animations = (*AnimationState)(nil)

// IsCurrentlyAnimating implements [Animations].
func (a *AnimationState) IsCurrentlyAnimating(p AnimatedProperty) bool {
	return a.Running.Has(p)
}

// HasPotentiallyRunningAnimation implements [Animations].
func (a *AnimationState) HasPotentiallyRunningAnimation(p AnimatedProperty) bool {
	return (a.Running | a.Waiting).Has(p)
}

// MaximumTargetScale implements [Animations].
func (a *AnimationState) MaximumTargetScale() (float64, bool) {
	if a.ScaleUnknown {
		return 0, false
	}
	if !a.AffectsScale {
		return 0, true
	}
	return a.MaxScale, true
}

// AnimationStartScale implements [Animations].
func (a *AnimationState) AnimationStartScale() (float64, bool) {
	if a.ScaleUnknown {
		return 0, false
	}
	if !a.AffectsScale {
		return 0, true
	}
	return a.StartScale, true
}

// IsAnimationStartingThisFrame implements [Animations].
func (a *AnimationState) IsAnimationStartingThisFrame() bool {
	return a.StartingThisFrame
}

// HasOnlyTranslationTransforms implements [Animations].
func (a *AnimationState) HasOnlyTranslationTransforms() bool {
	return !a.AffectsScale || !(a.Running|a.Waiting).Has(PropertyTransform)
}

// potentiallyAnimating reports whether anims may animate p this frame or
// a later one. A nil Animations never animates.
func potentiallyAnimating(anims Animations, p AnimatedProperty) bool {
	if anims == nil {
		return false
	}
	return anims.IsCurrentlyAnimating(p) || anims.HasPotentiallyRunningAnimation(p)
}
