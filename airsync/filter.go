package airsync

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// Filter decide se uma linha deve ser espelhada no Airtable.
type Filter struct {
	program cel.Program
}

// CompileFilter compila uma expressão CEL com a variável "row" (mapa coluna
// -> valor). Expressão vazia libera todas as linhas.
func CompileFilter(expr string) (*Filter, error) {
	if expr == "" {
		return &Filter{}, nil
	}

	env, err := cel.NewEnv(cel.Variable("row", cel.MapType(cel.StringType, cel.DynType)))
	if err != nil {
		return nil, fmt.Errorf("criar ambiente CEL: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilar filtro %q: %w", expr, issues.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("filtro %q deve resultar em booleano, retorna %s", expr, ast.OutputType())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("montar programa do filtro: %w", err)
	}
	return &Filter{program: program}, nil
}

// Match avalia o filtro contra a linha. Erros de avaliação contam como não
// espelhar, para nunca vazar linhas que o filtro não conseguiu julgar.
func (f *Filter) Match(row map[string]any) (bool, error) {
	if f.program == nil {
		return true, nil
	}

	out, _, err := f.program.Eval(map[string]any{"row": row})
	if err != nil {
		return false, fmt.Errorf("avaliar filtro: %w", err)
	}

	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("filtro retornou %T, esperava bool", out.Value())
	}
	return matched, nil
}
