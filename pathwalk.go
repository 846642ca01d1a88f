package fat

import (
	"log/slog"
	"strings"
)

// splitPath splits a path on '/', trimming leading/trailing separators,
// per spec.md §4.5's path-walking rule. An empty or all-separator path
// yields no components.
func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// walkToParent resolves every component but the last, requiring each to
// be a directory, and returns the Dir that should contain the final
// component together with that component's name. A missing non-final
// segment surfaces ErrNotFound (Open Question 1, resolved literally).
func (d *Dir) walkToParent(components []string) (*Dir, string, error) {
	d.fs.trace("dir:walk_to_parent", slog.Int("components", len(components)))
	cur := d
	for _, c := range components[:len(components)-1] {
		e, err := cur.FindEntry(c)
		if err != nil {
			d.fs.warn("dir:walk_to_parent", slog.String("component", c), slog.String("err", err.Error()))
			return nil, "", err
		}
		if !e.IsDir() {
			d.fs.warn("dir:walk_to_parent", slog.String("component", c), slog.String("err", "not a directory"))
			return nil, "", ErrNotADirectory
		}
		cur, err = e.ToDir()
		if err != nil {
			return nil, "", err
		}
	}
	return cur, components[len(components)-1], nil
}
