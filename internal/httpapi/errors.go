package httpapi

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError representa uma resposta HTTP >= 400 de um provedor.
type APIError struct {
	// StatusCode é o código HTTP retornado.
	StatusCode int
	// Method e Path identificam a chamada que falhou.
	Method string
	Path   string
	// Body é o corpo bruto da resposta (truncado), útil para diagnóstico.
	Body string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("api: %s %s retornou %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("api: %s %s retornou %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// IsNotFound informa se o erro corresponde a um 404 do provedor.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
