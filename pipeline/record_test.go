package pipeline

import (
	"reflect"
	"testing"
)

func TestBuildRecord(t *testing.T) {
	headers := []string{"Name", "RollNumber", "Marks"}
	row := []string{"Asha", "7", "88"}

	record := BuildRecord(headers, row)

	if !reflect.DeepEqual(record.Keys(), headers) {
		t.Errorf("Incorrect record keys\n   expected: %v\n   got:      %v", headers, record.Keys())
	}

	for i, k := range headers {
		if v, ok := record.Get(k); !ok || v != row[i] {
			t.Errorf("Incorrect value for '%v' - expected:%v, got:%v", k, row[i], v)
		}
	}
}

func TestBuildRecordWithShortRow(t *testing.T) {
	record := BuildRecord([]string{"Name", "RollNumber", "Marks"}, []string{"Asha"})

	if v, ok := record.Get("Marks"); !ok || v != "" {
		t.Errorf("Expected empty value for missing trailing cell, got '%v' (%v)", v, ok)
	}

	if record.Len() != 3 {
		t.Errorf("Incorrect record length - expected:%v, got:%v", 3, record.Len())
	}
}

func TestBuildRecordWithExtraCells(t *testing.T) {
	record := BuildRecord([]string{"Name"}, []string{"Asha", "7", "88"})

	if !reflect.DeepEqual(record.Keys(), []string{"Name"}) {
		t.Errorf("Expected extra cells to be ignored, got %v", record.Keys())
	}
}

func TestBuildRecordWithDuplicateHeaders(t *testing.T) {
	record := BuildRecord([]string{"Name", "Marks", "Name"}, []string{"Asha", "88", "Kabir"})

	if !reflect.DeepEqual(record.Keys(), []string{"Name", "Marks"}) {
		t.Errorf("Incorrect record keys %v", record.Keys())
	}

	if v, _ := record.Get("Name"); v != "Kabir" {
		t.Errorf("Expected last value to win for duplicate header, got '%v'", v)
	}
}

func TestStudentName(t *testing.T) {
	tests := []struct {
		headers  []string
		row      []string
		expected string
	}{
		{[]string{"Name", "name"}, []string{"Asha", "asha"}, "Asha"},
		{[]string{"name"}, []string{"kabir"}, "kabir"},
		{[]string{"Name", "name"}, []string{"", "meera"}, "meera"},
		{[]string{"Student"}, []string{"Ravi"}, "Student5"},
		{[]string{"NAME"}, []string{"Ravi"}, "Student5"},
	}

	for _, test := range tests {
		record := BuildRecord(test.headers, test.row)
		if name := record.StudentName(4); name != test.expected {
			t.Errorf("Incorrect student name for %v:%v - expected:%v, got:%v", test.headers, test.row, test.expected, name)
		}
	}
}

func TestRollNumber(t *testing.T) {
	tests := []struct {
		headers  []string
		row      []string
		expected string
	}{
		{[]string{"RollNumber", "rollnumber", "Roll Number"}, []string{"7", "8", "9"}, "7"},
		{[]string{"rollnumber", "Roll Number"}, []string{"8", "9"}, "8"},
		{[]string{"Roll Number"}, []string{"9"}, "9"},
		{[]string{"Roll"}, []string{"9"}, ""},
	}

	for _, test := range tests {
		record := BuildRecord(test.headers, test.row)
		if roll := record.RollNumber(); roll != test.expected {
			t.Errorf("Incorrect roll number for %v:%v - expected:%v, got:%v", test.headers, test.row, test.expected, roll)
		}
	}
}
