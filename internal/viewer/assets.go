package viewer

import "sync"

// WidgetScriptName identifies the rendering widget's module script.
const WidgetScriptName = "model-viewer"

// Script is an executable asset the page must load.
type Script struct {
	Name   string `json:"name"`
	Src    string `json:"src"`
	Module bool   `json:"module"`
}

// Assets is a reference-counted registry of page scripts. A script stays
// registered while at least one controller holds it.
type Assets struct {
	mu      sync.Mutex
	refs    map[string]int
	scripts map[string]Script
	order   []string
}

// DefaultAssets is the process-wide registry.
var DefaultAssets = NewAssets()

func NewAssets() *Assets {
	return &Assets{refs: make(map[string]int), scripts: make(map[string]Script)}
}

// Register takes a reference on s and reports whether it was newly added.
func (a *Assets) Register(s Script) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.refs[s.Name]++
	if a.refs[s.Name] > 1 {
		return false
	}
	a.scripts[s.Name] = s
	a.order = append(a.order, s.Name)
	return true
}

// Unregister drops a reference and reports whether the script was removed.
func (a *Assets) Unregister(name string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	n, ok := a.refs[name]
	if !ok {
		return false
	}
	if n > 1 {
		a.refs[name] = n - 1
		return false
	}
	delete(a.refs, name)
	delete(a.scripts, name)
	for i, v := range a.order {
		if v == name {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	return true
}

// Scripts lists registered scripts in registration order.
func (a *Assets) Scripts() []Script {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Script, 0, len(a.order))
	for _, n := range a.order {
		out = append(out, a.scripts[n])
	}
	return out
}
