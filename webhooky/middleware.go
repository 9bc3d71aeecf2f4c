// Package webhooky expõe o servidor HTTP que recebe webhooks dos provedores
// e dispara sincronizações sob demanda.
package webhooky

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const correlationKey contextKey = "correlation_id"

// CorrelationID devolve o id de correlação da requisição, se houver.
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey).(string)
	return id
}

// statusRecorder captura o status escrito para o log de latência.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// observability injeta o id de correlação e loga método, rota, status e
// latência de cada requisição. O id vem do header X-Correlation-Id quando o
// chamador manda um; senão é gerado.
func observability(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			correlationID := r.Header.Get("X-Correlation-Id")
			if correlationID == "" {
				correlationID = uuid.NewString()
			}

			ctx := context.WithValue(r.Context(), correlationKey, correlationID)
			w.Header().Set("X-Correlation-Id", correlationID)

			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(recorder, r.WithContext(ctx))

			logger.Info().
				Str("correlation_id", correlationID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", recorder.status).
				Dur("latency", time.Since(start)).
				Msg("requisição atendida")
		})
	}
}
