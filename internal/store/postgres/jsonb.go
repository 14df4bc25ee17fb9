package postgres

import (
	"encoding/json"
	"fmt"
)

// marshalJSONB renders v (a VariableList, []int64, model.Value, etc.) for
// a jsonb column argument. A nil slice marshals as the JSON literal null
// (a jsonb value, not SQL NULL), which scans back as a nil slice.
func marshalJSONB(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal jsonb: %w", err)
	}
	return b, nil
}

// unmarshalJSONB scans a jsonb column's raw bytes into dst. A NULL
// column comes back as a nil slice, which this treats as "leave dst
// zero-valued".
func unmarshalJSONB(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("unmarshal jsonb: %w", err)
	}
	return nil
}
