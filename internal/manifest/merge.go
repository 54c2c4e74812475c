package manifest

import (
	"fmt"

	"github.com/nrc/cargo-edit/internal/tomledit"
)

// strOrOneLenTable reports whether item is a shape a dependency entry may
// take without being considered hand-customized: a bare version string, or a
// table with at most one key.
func strOrOneLenTable(item *tomledit.Item) bool {
	if item.IsStr() {
		return true
	}
	if item.IsTableLike() {
		return item.AsTableLike().Len() <= 1
	}
	return false
}

// mergeDependency writes dep over the existing entry at key. A simple
// existing entry is replaced outright. A structured one keeps its extra keys
// (features, optional, and the like): only the source keys are swapped out.
func mergeDependency(table tomledit.TableLike, key string, dep Dependency) {
	existing := table.Get(key)

	if strOrOneLenTable(existing) {
		table.Set(key, dep.toTOML())
		return
	}

	like := existing.AsTableLike()
	if like == nil {
		panic(fmt.Sprintf("dependency `%s` is neither a string nor a table", key))
	}

	for _, src := range []string{"version", "path", "git"} {
		like.Remove(src)
	}
	incoming := dep.toTOML()
	if v, ok := incoming.Str(); ok {
		like.Set("version", tomledit.NewString(v))
		return
	}
	for _, kv := range incoming.AsTableLike().Entries() {
		like.Set(kv.Key, kv.Item)
	}
}
