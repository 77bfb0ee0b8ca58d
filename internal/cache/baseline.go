package cache

import (
	"os"

	"github.com/arlojordan/selectest/internal/cache/tagged"
	"github.com/arlojordan/selectest/internal/fqs"
)

// LoadBaseline reads the verified-baseline file, decoding its string-form
// FQS keys back into FQS. A missing or corrupt file is treated as an
// empty baseline, never an error — this is the "no baseline" fast path's
// trigger in the selector.
func LoadBaseline(path string) map[fqs.FQS]string {
	content, err := os.ReadFile(path)
	if err != nil {
		return map[fqs.FQS]string{}
	}
	v, err := tagged.Decode(string(content))
	if err != nil {
		return map[fqs.FQS]string{}
	}
	m, ok := v.(tagged.Map)
	if !ok {
		return map[fqs.FQS]string{}
	}
	out := make(map[fqs.FQS]string, len(m))
	for _, entry := range m {
		key, ok := keyString(entry.Key)
		if !ok {
			continue
		}
		sym, ok := fqs.Parse(key)
		if !ok {
			continue
		}
		out[sym] = asString(entry.Value)
	}
	return out
}

// SaveBaseline fully overwrites the baseline file. FQS keys are encoded
// as their string form ("ns/name") rather than as tagged symbols, since
// mangled macro-test names can contain characters a structured-text
// reader may not accept as bare symbol syntax.
func SaveBaseline(path string, baseline map[fqs.FQS]string) error {
	m := make(tagged.Map, 0, len(baseline))
	for sym, h := range baseline {
		m = append(m, tagged.MapEntry{Key: sym.String(), Value: h})
	}
	return writeAtomic(path, tagged.Encode(m))
}

// UpdateBaseline loads the current baseline, merges partial into it, and
// saves the result — save(load() ⊎ partial).
func UpdateBaseline(path string, partial map[fqs.FQS]string) error {
	current := LoadBaseline(path)
	for sym, h := range partial {
		current[sym] = h
	}
	return SaveBaseline(path, current)
}
