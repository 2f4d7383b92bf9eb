package scenes

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownScene is returned for names that are not in the registry.
var ErrUnknownScene = errors.New("unknown scene")

// ID identifies a registered scene.
type ID int

const (
	City ID = iota
	Bridge
	Highway
	Mountain
	Underpass
	TestMode
)

var (
	ids = []ID{City, Bridge, Highway, Mountain, Underpass, TestMode}

	// display names, as shown in the map picker
	names = map[ID]string{
		City:      "1. City",
		Bridge:    "2. bridge_design",
		Highway:   "3. Highway",
		Mountain:  "4. Mountain Road",
		Underpass: "5. American Underpass:",
		TestMode:  "Test Mode (Debug)",
	}

	keys = map[ID]string{
		City:      "city",
		Bridge:    "bridge",
		Highway:   "highway",
		Mountain:  "mountain",
		Underpass: "underpass",
		TestMode:  "test",
	}
)

// IDs lists every scene in registry order.
func IDs() []ID {
	return append([]ID(nil), ids...)
}

// String returns the display name.
func (id ID) String() string {
	if n, ok := names[id]; ok {
		return n
	}
	return fmt.Sprintf("ID(%d)", int(id))
}

// Key returns the short name used in config files and tuning data.
func (id ID) Key() string {
	return keys[id]
}

// ParseID accepts a display name or a short key, case-insensitively.
func ParseID(name string) (ID, error) {
	n := strings.TrimSpace(name)
	for _, id := range ids {
		if strings.EqualFold(n, names[id]) || strings.EqualFold(n, keys[id]) {
			return id, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownScene, name)
}
