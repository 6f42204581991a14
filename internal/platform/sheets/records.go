package sheets

// Record is one data row keyed by header name.
type Record map[string]string

// Table is a decoded tab.
type Table struct {
	Header []string
	Rows   []Record
}

// Decode turns a header-first grid into records. Short rows are padded
// with empty strings, mirroring how the Sheets API trims trailing blanks.
func Decode(values [][]string) Table {
	if len(values) == 0 {
		return Table{}
	}
	header := append([]string(nil), values[0]...)
	rows := make([]Record, 0, len(values)-1)
	for _, raw := range values[1:] {
		rec := make(Record, len(header))
		for i, col := range header {
			if i < len(raw) {
				rec[col] = raw[i]
			} else {
				rec[col] = ""
			}
		}
		rows = append(rows, rec)
	}
	return Table{Header: header, Rows: rows}
}

// Encode lays records out under header, header row first. Columns missing
// from a record are written as empty cells.
func Encode(header []string, rows []Record) [][]string {
	values := make([][]string, 0, len(rows)+1)
	values = append(values, append([]string(nil), header...))
	for _, rec := range rows {
		line := make([]string, len(header))
		for i, col := range header {
			line[i] = rec[col]
		}
		values = append(values, line)
	}
	return values
}
