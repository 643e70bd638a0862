package connector

import (
	"database/sql"
	"fmt"
)

// CollectResultSets reads every result set from rows, in order, and closes
// rows. Byte slices are returned as strings.
func CollectResultSets(rows *sql.Rows) ([]ResultSet, error) {
	defer rows.Close()

	var sets []ResultSet
	for {
		cols, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("read result columns: %w", err)
		}

		rs := ResultSet{Columns: cols}
		for rows.Next() {
			values := make([]interface{}, len(cols))
			ptrs := make([]interface{}, len(cols))
			for i := range values {
				ptrs[i] = &values[i]
			}
			if err := rows.Scan(ptrs...); err != nil {
				return nil, fmt.Errorf("scan procedure result: %w", err)
			}
			for i, v := range values {
				if b, ok := v.([]byte); ok {
					values[i] = string(b)
				}
			}
			rs.Rows = append(rs.Rows, values)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate procedure results: %w", err)
		}
		sets = append(sets, rs)

		if !rows.NextResultSet() {
			break
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("advance procedure result set: %w", err)
	}
	return sets, nil
}
