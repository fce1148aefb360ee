package types

// Source records where a descriptor came from.
type Source string

const (
	SourceBuiltin    Source = "builtin"
	SourceDiscovered Source = "discovered"
	SourceUploaded   Source = "uploaded"
)

// ModelDescriptor describes one selectable .glb model.
type ModelDescriptor struct {
	// Display name: the filename without its extension.
	// example: helmet
	Name string `json:"name" example:"helmet"`
	// Server-relative path or an upload blob URL.
	// example: /models/helmet.glb
	URL string `json:"url" example:"/models/helmet.glb"`
	// Short human-readable tag.
	// example: local
	Description string `json:"description" example:"local"`
	// Provenance flag; true for discovered and uploaded models.
	// example: true
	IsLocal bool `json:"isLocal" example:"true"`
	// Catalog section the descriptor belongs to. Not part of the discovery payload.
	Source Source `json:"-"`
}

// Key returns the unique selection key of d. Names may collide across
// sources; source plus URL does not.
func (d ModelDescriptor) Key() string {
	src := d.Source
	if src == "" {
		src = SourceDiscovered
	}
	return string(src) + ":" + d.URL
}
