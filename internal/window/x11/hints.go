package x11

import (
	"fmt"

	"github.com/bryanchriswhite/platwin/internal/window"
)

const (
	atomWindowTypeSplash = "_NET_WM_WINDOW_TYPE_SPLASH"
	atomWindowTypeMenu   = "_NET_WM_WINDOW_TYPE_MENU"
	atomWindowTypeDialog = "_NET_WM_WINDOW_TYPE_DIALOG"
	atomAllowedActions   = "_NET_WM_ALLOWED_ACTIONS"
	atomActionResize     = "_NET_WM_ACTION_RESIZE"
)

// Capabilities is what the running window manager advertises, plus the
// workarounds it needs.
type Capabilities struct {
	// Supported holds the atom names listed in _NET_SUPPORTED.
	Supported map[string]bool
	// Motif reports whether _MOTIF_WM_HINTS can be written.
	Motif bool
	// OverrideResize wraps programmatic resizes in an override-redirect toggle.
	OverrideResize bool
	// WMName is the EWMH name of the window manager, if any.
	WMName string
}

// NewCapabilities builds a capability set from a _NET_SUPPORTED listing.
func NewCapabilities(supported []string) Capabilities {
	c := Capabilities{Supported: make(map[string]bool, len(supported)), Motif: true}
	for _, s := range supported {
		c.Supported[s] = true
	}
	return c
}

func (c Capabilities) has(atom string) bool {
	return c.Supported[atom]
}

type actionKind uint8

const (
	actMotifNoBorder actionKind = iota
	actWindowType
	actTransientFor
	actOverrideRedirect
	actAllowResize
)

// hintAction is one property or attribute write applied to a new window.
type hintAction struct {
	kind actionKind
	atom string
}

func (a hintAction) String() string {
	switch a.kind {
	case actMotifNoBorder:
		return "motif:no-decorations"
	case actWindowType:
		return "type:" + a.atom
	case actTransientFor:
		return "transient-for"
	case actOverrideRedirect:
		return "override-redirect"
	case actAllowResize:
		return "allowed-actions:+" + atomActionResize
	}
	return fmt.Sprintf("action(%d)", a.kind)
}

// hintStep pairs a capability check with the actions taken when it passes.
// A nil check always passes.
type hintStep struct {
	check   func(Capabilities) bool
	actions []hintAction
}

func supports(atom string) func(Capabilities) bool {
	return func(c Capabilities) bool { return c.has(atom) }
}

func motifUsable(c Capabilities) bool { return c.Motif }

// splashChain is tried in order; the first step whose check passes wins.
// The last step has no check so a splash window always gets some treatment.
func splashChain(flags window.Flags) []hintStep {
	dialog := []hintAction{{kind: actWindowType, atom: atomWindowTypeDialog}}
	if !flags.Has(window.FlagNoBorder) {
		dialog = append(dialog, hintAction{kind: actMotifNoBorder})
	}
	return []hintStep{
		{supports(atomWindowTypeSplash), []hintAction{{kind: actWindowType, atom: atomWindowTypeSplash}}},
		{supports(atomWindowTypeMenu), []hintAction{{kind: actWindowType, atom: atomWindowTypeMenu}}},
		{supports(atomWindowTypeDialog), dialog},
		{nil, []hintAction{{kind: actOverrideRedirect}}},
	}
}

func firstPassing(chain []hintStep, c Capabilities) []hintAction {
	for _, step := range chain {
		if step.check == nil || step.check(c) {
			return step.actions
		}
	}
	return nil
}

// planHints derives the ordered hint writes for a new window. The result
// depends only on its arguments.
func planHints(flags window.Flags, hasParent bool, c Capabilities) []hintAction {
	var plan []hintAction

	// a parented borderless window is left to its parent's decorations
	if flags.Has(window.FlagNoBorder) && !hasParent && motifUsable(c) {
		plan = append(plan, hintAction{kind: actMotifNoBorder})
	}

	if flags.Has(window.FlagDialog) {
		if c.has(atomWindowTypeDialog) {
			plan = append(plan, hintAction{kind: actWindowType, atom: atomWindowTypeDialog})
		}
		if hasParent {
			plan = append(plan, hintAction{kind: actTransientFor})
		}
	}

	if flags.Has(window.FlagSplash) {
		for _, a := range firstPassing(splashChain(flags), c) {
			if a.kind == actMotifNoBorder && !motifUsable(c) {
				continue
			}
			plan = append(plan, a)
		}
	}

	if flags.Has(window.FlagResizable) && c.has(atomAllowedActions) {
		plan = append(plan, hintAction{kind: actAllowResize})
	}

	return plan
}
