package prefabs

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

//go:embed scripts/*.tengo
var ScriptsFS embed.FS

//go:embed *.yaml
var PrefabsFS embed.FS

// Dir is where edited copies of the embedded files are looked up first.
var Dir = "prefabs"

// source pairs an embedded tree with the subdirectory its files live under.
type source struct {
	files  fs.ReadFileFS
	subdir string
}

var (
	specs   = source{files: PrefabsFS}
	scripts = source{files: ScriptsFS, subdir: "scripts"}
)

// LoadScript returns the script source. A copy under Dir wins over the
// embedded one so edits hot reload.
func LoadScript(name string) ([]byte, error) {
	if name == "" {
		return nil, fs.ErrNotExist
	}
	return scripts.read(name)
}

// Load returns the raw bytes of a prefab spec.
func Load(name string) ([]byte, error) {
	return specs.read(name)
}

// ModTime reports when the on-disk copy of a spec was last written. It is
// false when only the embedded copy exists.
func ModTime(name string) (time.Time, bool) {
	info, err := os.Stat(specs.onDisk(name))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

func (s source) read(name string) ([]byte, error) {
	if data, err := os.ReadFile(s.onDisk(name)); err == nil {
		return data, nil
	}
	return s.files.ReadFile(s.key(name))
}

// key normalizes name to the slash path used inside the embedded tree.
// Both "prefabs/scripts/a.tengo" and "a.tengo" map to "scripts/a.tengo".
func (s source) key(name string) string {
	rel := filepath.ToSlash(name)
	rel = strings.TrimPrefix(rel, "prefabs/")
	if s.subdir != "" {
		rel = strings.TrimPrefix(rel, s.subdir+"/")
		rel = path.Join(s.subdir, rel)
	}
	return rel
}

func (s source) onDisk(name string) string {
	return filepath.Join(Dir, filepath.FromSlash(s.key(name)))
}
