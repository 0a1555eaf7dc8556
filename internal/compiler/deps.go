package compiler

// Collector discovers the set of templates a template transitively depends
// on: its optional parent, every included template, and their dependencies.
type Collector struct {
	loader *Loader
}

// NewCollector creates a dependency collector over the given loader.
func NewCollector(loader *Loader) *Collector {
	return &Collector{loader: loader}
}

// Collect returns the ordered, de-duplicated list of template identifiers
// reachable from the given comment-stripped template text. The visited set is
// shared by reference across the whole traversal, so cycles are broken on the
// second visit and every identifier appears at most once.
func (c *Collector) Collect(text string, visited map[string]bool) ([]string, error) {
	var deps []string
	if err := c.collect(text, visited, &deps); err != nil {
		return nil, err
	}

	return deps, nil
}

func (c *Collector) collect(text string, visited map[string]bool, deps *[]string) error {
	// A template declares at most one parent; only the first match counts.
	if m := extendsRe.FindStringSubmatch(text); m != nil {
		if err := c.visit(m[1], visited, deps); err != nil {
			return err
		}
	}

	for _, m := range includeRe.FindAllStringSubmatch(text, -1) {
		if err := c.visit(m[1], visited, deps); err != nil {
			return err
		}
	}

	return nil
}

func (c *Collector) visit(id string, visited map[string]bool, deps *[]string) error {
	if visited[id] {
		return nil
	}
	visited[id] = true
	*deps = append(*deps, id)

	// A path escape in any transitive reference is a hard error, never
	// silently skipped.
	text, err := c.loader.LoadStripped(id)
	if err != nil {
		return err
	}

	return c.collect(text, visited, deps)
}
