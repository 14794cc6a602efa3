package pipeline

import (
	"fmt"
)

// Record maps the header names of the source sheet to the cell values of one data row.
// Keys are kept in header order. A header that appears more than once keeps its first
// position and the value of its last occurrence.
type Record struct {
	keys   []string
	values map[string]string
}

// BuildRecord creates the record for a data row. Missing trailing cells are mapped to
// an empty string and cells beyond the last header are ignored.
func BuildRecord(headers []string, row []string) Record {
	record := Record{
		keys:   make([]string, 0, len(headers)),
		values: make(map[string]string, len(headers)),
	}

	for i, h := range headers {
		v := ""
		if i < len(row) {
			v = row[i]
		}

		if _, ok := record.values[h]; !ok {
			record.keys = append(record.keys, h)
		}

		record.values[h] = v
	}

	return record
}

func (r Record) Keys() []string {
	return append([]string{}, r.keys...)
}

func (r Record) Get(key string) (string, bool) {
	v, ok := r.values[key]

	return v, ok
}

func (r Record) Len() int {
	return len(r.keys)
}

// StudentName returns the first non-blank value of 'Name' or 'name', falling back to
// Student<n> where n is the 1-based data row number.
func (r Record) StudentName(index int) string {
	if v := r.first("Name", "name"); v != "" {
		return v
	}

	return fmt.Sprintf("Student%d", index+1)
}

// RollNumber returns the first non-blank value of 'RollNumber', 'rollnumber' or
// 'Roll Number'.
func (r Record) RollNumber() string {
	return r.first("RollNumber", "rollnumber", "Roll Number")
}

func (r Record) first(keys ...string) string {
	for _, k := range keys {
		if v := r.values[k]; v != "" {
			return v
		}
	}

	return ""
}
