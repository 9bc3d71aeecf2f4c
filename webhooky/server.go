package webhooky

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/opsbridge/opsbridge/airsync"
	"github.com/opsbridge/opsbridge/checkr"
	"github.com/opsbridge/opsbridge/cio"
	"github.com/opsbridge/opsbridge/mailchimp"
	"github.com/opsbridge/opsbridge/pkg/config"
	"github.com/opsbridge/opsbridge/pkg/metrics"
)

// maxWebhookBody limita o corpo aceito dos provedores.
const maxWebhookBody = 1 << 20

// Pinger é o recorte do *sql.DB usado no health check.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps reúne tudo que os handlers precisam.
type Deps struct {
	DB          Pinger
	Subscribers *airsync.Table[cio.MailingListSubscriber]
	Applicants  *airsync.Table[cio.Applicant]
	Runner      *cio.Runner
	Archiver    Archiver
	Recorder    *metrics.SyncRecorder
	Logger      zerolog.Logger
}

// Server é o servidor HTTP do webhooky.
type Server struct {
	deps Deps
	http *http.Server
}

func NewServer(cfg config.ServerConf, deps Deps) *Server {
	if deps.Archiver == nil {
		deps.Archiver = NoopArchiver{}
	}
	if deps.Recorder == nil {
		deps.Recorder = metrics.NewSyncRecorder(&metrics.NoopProvider{})
	}

	s := &Server{deps: deps}

	router := mux.NewRouter()
	router.Use(observability(deps.Logger))
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	// O MailChimp valida a URL com um GET antes de ativar o webhook
	router.HandleFunc("/webhooks/mailchimp", s.handleMailchimpVerify).Methods(http.MethodGet)
	router.HandleFunc("/webhooks/mailchimp", s.handleMailchimp).Methods(http.MethodPost)
	router.HandleFunc("/webhooks/checkr", s.handleCheckr).Methods(http.MethodPost)
	router.HandleFunc("/sync/{job}", s.handleSync).Methods(http.MethodPost)

	timeout := cfg.GetTimeout()
	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}
	return s
}

// Handler expõe o roteador para os testes.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// Start bloqueia servindo requisições até Shutdown.
func (s *Server) Start() error {
	s.deps.Logger.Info().Str("addr", s.http.Addr).Msg("servidor ouvindo")
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drena as conexões em andamento.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.DB.PingContext(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMailchimpVerify(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleMailchimp(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		s.deps.Recorder.RecordWebhook("mailchimp", "malformed")
		http.Error(w, "corpo inválido", http.StatusBadRequest)
		return
	}

	// Arquiva o corpo cru antes de qualquer parse, até os rejeitados
	s.archive(r.Context(), "mailchimp", body)

	form, err := url.ParseQuery(string(body))
	if err != nil {
		s.deps.Recorder.RecordWebhook("mailchimp", "malformed")
		http.Error(w, "corpo inválido", http.StatusBadRequest)
		return
	}

	ev, err := mailchimp.ParseWebhook(form)
	if err != nil {
		s.deps.Recorder.RecordWebhook("mailchimp", "malformed")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	logger := s.deps.Logger.With().
		Str("correlation_id", CorrelationID(r.Context())).
		Str("event", ev.Type).
		Logger()

	if err := s.applyMailchimpEvent(r.Context(), ev); err != nil {
		logger.Error().Err(err).Msg("evento mailchimp não aplicado")
		s.deps.Recorder.RecordWebhook("mailchimp", "error")
		http.Error(w, "falha ao processar", http.StatusInternalServerError)
		return
	}

	logger.Info().Str("email", ev.Email).Msg("evento mailchimp aplicado")
	s.deps.Recorder.RecordWebhook("mailchimp", "ok")
	w.WriteHeader(http.StatusOK)
}

func (s *Server) applyMailchimpEvent(ctx context.Context, ev *mailchimp.WebhookEvent) error {
	email := strings.ToLower(ev.Email)
	now := time.Now().UTC()

	switch ev.Type {
	case "subscribe", "profile":
		row := subscriberFromEvent(ev, now)
		if prev, err := s.deps.Subscribers.Get(ctx, email); err == nil && prev.SubscribedAt != nil {
			row.SubscribedAt = prev.SubscribedAt
		}
		return s.deps.Subscribers.Upsert(ctx, row)

	case "unsubscribe", "cleaned":
		prev, err := s.deps.Subscribers.Get(ctx, email)
		if err != nil {
			// Desconhecido localmente, nada a marcar
			return nil
		}
		prev.Status = "unsubscribed"
		if ev.Type == "cleaned" {
			prev.Status = "cleaned"
		}
		prev.UpdatedAt = now
		return s.deps.Subscribers.Upsert(ctx, prev)

	case "upemail":
		if ev.NewEmail == "" {
			return fmt.Errorf("evento upemail sem new_email")
		}
		prev, err := s.deps.Subscribers.Get(ctx, email)
		if err != nil {
			return nil
		}
		if err := s.deps.Subscribers.Delete(ctx, email); err != nil {
			return err
		}
		prev.Email = strings.ToLower(ev.NewEmail)
		prev.UpdatedAt = now
		return s.deps.Subscribers.Upsert(ctx, prev)

	default:
		// Eventos de campanha e afins não têm efeito local
		return nil
	}
}

// subscriberFromEvent converte o evento no registro local.
func subscriberFromEvent(ev *mailchimp.WebhookEvent, now time.Time) *cio.MailingListSubscriber {
	subscribedAt := now
	if t, err := time.Parse("2006-01-02 15:04:05", ev.FiredAt); err == nil {
		subscribedAt = t
	}
	return &cio.MailingListSubscriber{
		Email:        strings.ToLower(ev.Email),
		Name:         strings.TrimSpace(ev.FirstName + " " + ev.LastName),
		Status:       "subscribed",
		Source:       "mailchimp-webhook",
		SubscribedAt: &subscribedAt,
		UpdatedAt:    now,
	}
}

func (s *Server) handleCheckr(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		s.deps.Recorder.RecordWebhook("checkr", "malformed")
		http.Error(w, "corpo inválido", http.StatusBadRequest)
		return
	}

	// Arquiva o corpo cru antes de qualquer parse, até os rejeitados
	s.archive(r.Context(), "checkr", body)

	ev, err := checkr.ParseWebhook(body)
	if err != nil {
		s.deps.Recorder.RecordWebhook("checkr", "malformed")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	logger := s.deps.Logger.With().
		Str("correlation_id", CorrelationID(r.Context())).
		Str("event", ev.Type).
		Logger()

	var apply func(context.Context) error
	switch {
	case strings.HasPrefix(ev.Type, "report."):
		apply = func(ctx context.Context) error {
			return s.applyCheckrStatus(ctx, ev.Data.Object.CandidateID, cio.ScreeningStatus(&ev.Data.Object))
		}
	case ev.Type == "invitation.completed":
		// Convite respondido, o report entra em processamento
		apply = func(ctx context.Context) error {
			return s.applyCheckrStatus(ctx, ev.Data.Object.CandidateID, "processing")
		}
	default:
		logger.Debug().Msg("evento checkr ignorado")
		s.deps.Recorder.RecordWebhook("checkr", "ignored")
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := apply(r.Context()); err != nil {
		logger.Error().Err(err).Msg("report checkr não aplicado")
		s.deps.Recorder.RecordWebhook("checkr", "error")
		http.Error(w, "falha ao processar", http.StatusInternalServerError)
		return
	}

	logger.Info().Str("candidate_id", ev.Data.Object.CandidateID).Msg("report checkr aplicado")
	s.deps.Recorder.RecordWebhook("checkr", "ok")
	w.WriteHeader(http.StatusOK)
}

// applyCheckrStatus localiza o candidato pelo id do Checkr e atualiza o
// estado do screening.
func (s *Server) applyCheckrStatus(ctx context.Context, candidateID, status string) error {
	applicants, err := s.deps.Applicants.List(ctx)
	if err != nil {
		return err
	}

	for i := range applicants {
		if applicants[i].CheckrCandidateID != candidateID {
			continue
		}
		applicants[i].ScreeningStatus = status
		applicants[i].UpdatedAt = time.Now().UTC()
		return s.deps.Applicants.Upsert(ctx, &applicants[i])
	}
	// Candidato ainda não sincronizado; a próxima carga completa resolve
	return nil
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["job"]

	result, err := s.deps.Runner.RunJob(r.Context(), name)
	if err != nil {
		if result.Job == "" {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusBadGateway, map[string]string{"job": name, "error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"job":     result.Job,
		"created": result.Stat.Created,
		"updated": result.Stat.Updated,
		"deleted": result.Stat.Deleted,
		"skipped": result.Stat.Skipped,
		"failed":  result.Stat.Failed,
	})
}

// archive despacha o arquivamento sem bloquear a resposta.
func (s *Server) archive(ctx context.Context, source string, payload []byte) {
	eventID := CorrelationID(ctx)
	if eventID == "" {
		eventID = uuid.NewString()
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.deps.Archiver.Archive(ctx, source, eventID, payload)
	}()
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
