package airsync

import (
	"fmt"
	"reflect"
	"time"
)

// columnsOf extrai os nomes de coluna das tags "db" de T, na ordem dos
// campos. Campos sem tag ou com tag "-" são ignorados.
func columnsOf[T any]() ([]string, error) {
	var zero T
	typ := reflect.TypeOf(zero)
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("airsync: %s não é struct", typ)
	}

	var cols []string
	for i := 0; i < typ.NumField(); i++ {
		tag := typ.Field(i).Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		cols = append(cols, tag)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("airsync: %s não tem campos com tag db", typ)
	}
	return cols, nil
}

// valuesOf devolve os valores dos campos mapeados, na mesma ordem de
// columnsOf. Ponteiros nulos viram NULL.
func valuesOf(entity any) []any {
	val := reflect.ValueOf(entity)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	typ := val.Type()

	var out []any
	for i := 0; i < typ.NumField(); i++ {
		tag := typ.Field(i).Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		out = append(out, val.Field(i).Interface())
	}
	return out
}

// scanTargets devolve ponteiros para os campos mapeados de dest, na ordem
// de columnsOf, prontos para rows.Scan.
func scanTargets[T any](dest *T) []any {
	val := reflect.ValueOf(dest).Elem()
	typ := val.Type()

	var out []any
	for i := 0; i < typ.NumField(); i++ {
		tag := typ.Field(i).Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		out = append(out, val.Field(i).Addr().Interface())
	}
	return out
}

// rowMap materializa a entidade como mapa coluna -> valor para avaliação do
// filtro CEL. Tempos são normalizados para RFC3339 e ponteiros nulos para
// string vazia, mantendo o tipo estável para as expressões.
func rowMap(entity any) map[string]any {
	val := reflect.ValueOf(entity)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	typ := val.Type()

	row := make(map[string]any)
	for i := 0; i < typ.NumField(); i++ {
		tag := typ.Field(i).Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		row[tag] = normalize(val.Field(i).Interface())
	}
	return row
}

func normalize(v any) any {
	switch x := v.(type) {
	case time.Time:
		return x.Format(time.RFC3339)
	case *time.Time:
		if x == nil {
			return ""
		}
		return x.Format(time.RFC3339)
	case int:
		return int64(x)
	default:
		return v
	}
}
