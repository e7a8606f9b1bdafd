package config

import "strings"

// Canonical option keys.
const (
	KeyFormat        = "format"
	KeySplitMB       = "split-mb"
	KeySplitBytes    = "split-bytes"
	KeyExt           = "ext"
	KeyAllText       = "all-text"
	KeyExclude       = "exclude"
	KeyAllFiles      = "all-files"
	KeyMaxBytes      = "max-bytes"
	KeyNoStructure   = "no-structure"
	KeyEmitStructure = "emit-structure"
	KeyStructureMax  = "structure-max"
	KeyIgnoreFile    = "ignore-file"
)

// Keys returns every canonical option key.
func Keys() []string {
	return []string{
		KeyFormat, KeySplitMB, KeySplitBytes, KeyExt, KeyAllText, KeyExclude, KeyAllFiles,
		KeyMaxBytes, KeyNoStructure, KeyEmitStructure, KeyStructureMax, KeyIgnoreFile,
	}
}

// kitchenAliases is the themed vocabulary. Together with spellings it is
// never modified after initialization.
var kitchenAliases = map[string]string{
	"recipe":          KeyFormat,
	"portion-mb":      KeySplitMB,
	"portion-bytes":   KeySplitBytes,
	"ingredients":     KeyExt,
	"all-ingredients": KeyAllText,
	"discard":         KeyExclude,
	"forage":          KeyAllFiles,
	"max-bite":        KeyMaxBytes,
	"no-menu":         KeyNoStructure,
	"menu-max":        KeyStructureMax,
}

// spellings maps long-form and camelCase names, lowercased, onto canonical keys.
var spellings = map[string]string{
	"extensions":            KeyExt,
	"explore-all-files":     KeyAllFiles,
	"max-file-bytes":        KeyMaxBytes,
	"structure-max-entries": KeyStructureMax,
	"splitmb":               KeySplitMB,
	"splitbytes":            KeySplitBytes,
	"exploreallfiles":       KeyAllFiles,
	"maxfilebytes":          KeyMaxBytes,
	"emitstructure":         KeyEmitStructure,
	"structuremaxentries":   KeyStructureMax,
}

// CanonicalKey maps an option name in any accepted vocabulary onto its
// canonical key. Leading dashes, case and underscores are ignored. Unknown
// names are returned normalized but otherwise unchanged.
func CanonicalKey(name string) string {
	key := strings.ToLower(strings.TrimLeft(strings.TrimSpace(name), "-"))
	key = strings.ReplaceAll(key, "_", "-")
	if canonical, ok := kitchenAliases[key]; ok {
		return canonical
	}
	if canonical, ok := spellings[key]; ok {
		return canonical
	}
	return key
}

// IsKey reports whether name resolves to a canonical option key.
func IsKey(name string) bool {
	key := CanonicalKey(name)
	for _, k := range Keys() {
		if k == key {
			return true
		}
	}
	return false
}

// KitchenAliases returns a copy of the themed alias table.
func KitchenAliases() map[string]string {
	out := make(map[string]string, len(kitchenAliases))
	for k, v := range kitchenAliases {
		out[k] = v
	}
	return out
}
