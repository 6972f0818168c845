package composer

import (
	"errors"
	"fmt"
)

var (
	// ErrSegmentNotFound is returned when a segment id is not in the collection.
	ErrSegmentNotFound = errors.New("segment not found")

	// ErrOverlayNotFound is returned when an overlay id is not in the set.
	ErrOverlayNotFound = errors.New("overlay not found")

	// ErrDigitalHumanNotFound is returned when a roster entry id is unknown.
	ErrDigitalHumanNotFound = errors.New("digital human not found")

	// ErrProjectNotFound is returned when no open or stored project matches.
	ErrProjectNotFound = errors.New("project not found")

	// ErrUnknownOverlayKind is returned when creating an overlay of an
	// unsupported kind.
	ErrUnknownOverlayKind = errors.New("unknown overlay kind")

	// ErrRosterFull is returned when adding beyond MaxDigitalHumans.
	ErrRosterFull = fmt.Errorf("at most %d digital humans can be configured", MaxDigitalHumans)

	// ErrNoVariants is returned when committing variants that are all empty.
	ErrNoVariants = errors.New("at least one non-empty script variant is required")

	// ErrLastVariant is returned when removing the only remaining variant.
	ErrLastVariant = errors.New("the last script variant cannot be removed")

	// ErrScriptReadOnly is returned when editing the raw script while variants
	// are committed.
	ErrScriptReadOnly = errors.New("script is read-only while variants are configured")

	// ErrInvalidLoopMode is returned for a BGM loop mode other than loop or shuffle.
	ErrInvalidLoopMode = errors.New("invalid loop mode")

	// ErrNotPermitted is the class of every ownership rejection; match it with
	// errors.Is and use errors.As with *RejectedError to read the controller.
	ErrNotPermitted = errors.New("not permitted, managed elsewhere")
)

// RejectedError is returned when a non-controlling context tries to mutate a
// shared resource. The change is not applied.
type RejectedError struct {
	Resource   string
	Controller string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s: %s is managed in %q", ErrNotPermitted.Error(), e.Resource, e.Controller)
}

// Is lets errors.Is(err, ErrNotPermitted) match.
func (e *RejectedError) Is(target error) bool {
	return target == ErrNotPermitted
}
