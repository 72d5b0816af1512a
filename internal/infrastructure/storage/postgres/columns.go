package postgres

import (
	"reflect"
)

// ExtractDBColumns returns the column names of T's "db" tags, descending into
// embedded structs. Fields tagged "-" or untagged are skipped.
//
//	cols := ExtractDBColumns[bonus.Setting]()
//	// ["id", "group_id", "category", "amount", ...]
func ExtractDBColumns[T any]() []string {
	var zero T
	return columnsOf(reflect.TypeOf(zero))
}

// QualifiedColumns prefixes each column with a table alias.
func QualifiedColumns(alias string, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = alias + "." + c
	}
	return out
}

func columnsOf(t reflect.Type) []string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	var cols []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			cols = append(cols, columnsOf(field.Type)...)
			continue
		}
		tag := field.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		cols = append(cols, tag)
	}
	return cols
}
