package viewer

import "glbview/pkg/types"

// Catalog is the ordered concatenation of built-in, discovered and uploaded
// models. It is not safe for concurrent use; the controller guards it.
type Catalog struct {
	builtin    []types.ModelDescriptor
	discovered []types.ModelDescriptor
	uploaded   []types.ModelDescriptor
}

// NewCatalog returns a catalog seeded with the built-in models.
func NewCatalog(builtin []types.ModelDescriptor) *Catalog {
	return &Catalog{builtin: stamp(builtin, types.SourceBuiltin)}
}

// SetDiscovered replaces the discovered section. Uploads are untouched.
func (c *Catalog) SetDiscovered(models []types.ModelDescriptor) {
	c.discovered = stamp(models, types.SourceDiscovered)
}

// AddUploaded appends d to the uploaded section. Names are not deduplicated.
func (c *Catalog) AddUploaded(d types.ModelDescriptor) {
	d.Source = types.SourceUploaded
	c.uploaded = append(c.uploaded, d)
}

// All returns the merged catalog.
func (c *Catalog) All() []types.ModelDescriptor {
	out := make([]types.ModelDescriptor, 0, c.Len())
	out = append(out, c.builtin...)
	out = append(out, c.discovered...)
	return append(out, c.uploaded...)
}

func (c *Catalog) Len() int { return len(c.builtin) + len(c.discovered) + len(c.uploaded) }

// Counts returns the size of each section.
func (c *Catalog) Counts() (builtin, discovered, uploaded int) {
	return len(c.builtin), len(c.discovered), len(c.uploaded)
}

// Lookup finds the first entry with the given selection key.
func (c *Catalog) Lookup(key string) (types.ModelDescriptor, bool) {
	for _, sec := range [][]types.ModelDescriptor{c.builtin, c.discovered, c.uploaded} {
		for _, d := range sec {
			if d.Key() == key {
				return d, true
			}
		}
	}
	return types.ModelDescriptor{}, false
}

func stamp(in []types.ModelDescriptor, src types.Source) []types.ModelDescriptor {
	out := make([]types.ModelDescriptor, len(in))
	for i, d := range in {
		d.Source = src
		out[i] = d
	}
	return out
}
