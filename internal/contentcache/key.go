package contentcache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// KeyFielder is implemented by values that contribute to a cache key through
// an explicit field set rather than their full structure.
type KeyFielder interface {
	CacheKeyFields() map[string]any
}

// ComputeKey returns the lowercase SHA-256 hex digest of the canonical JSON form
// of params. Map keys are sorted at every depth, so two maps with the same
// entries always produce the same key.
func ComputeKey(params map[string]any) (string, error) {
	normalized, err := normalize(params)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(normalized)
	if err != nil {
		return "", fmt.Errorf("encode cache key params: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func normalize(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string, bool:
		return v, nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return v, nil
	case float32:
		return normalizeFloat(float64(v))
	case float64:
		return normalizeFloat(v)
	case KeyFielder:
		return normalize(v.CacheKeyFields())
	case map[string]any:
		return normalizeStringMap(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			n, err := normalize(item)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case []string:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out, nil
	case fmt.Stringer:
		return v.String(), nil
	}
	return fmt.Sprint(value), nil
}

func normalizeStringMap(m map[string]any) (map[string]any, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(map[string]any, len(m))
	for _, k := range keys {
		n, err := normalize(m[k])
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		out[k] = n
	}
	return out, nil
}

func normalizeFloat(f float64) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("cache key params: unsupported float %v", f)
	}
	return f, nil
}
