package kv

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/breathepure/internal/common"
)

// MergeJSON merges the JSON object patch into the JSON object base.
//
// Keys present in patch replace those in base. When both sides hold an
// object under the same key the two objects are merged recursively; arrays
// and scalars are replaced wholesale. Keys absent from patch are kept
// byte-for-byte. Either side not being a JSON object yields common.ErrParse.
func MergeJSON(base, patch []byte) ([]byte, error) {
	var b, p map[string]json.RawMessage
	if err := json.Unmarshal(base, &b); err != nil {
		return nil, fmt.Errorf("merge base: %w: %w", common.ErrParse, err)
	}
	if err := json.Unmarshal(patch, &p); err != nil {
		return nil, fmt.Errorf("merge patch: %w: %w", common.ErrParse, err)
	}
	if b == nil {
		b = make(map[string]json.RawMessage, len(p))
	}

	for k, pv := range p {
		bv, ok := b[k]
		if ok && isObject(bv) && isObject(pv) {
			merged, err := MergeJSON(bv, pv)
			if err != nil {
				return nil, err
			}
			b[k] = merged
			continue
		}
		b[k] = pv
	}

	return json.Marshal(b)
}

func isObject(raw json.RawMessage) bool {
	for _, c := range raw {
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}
