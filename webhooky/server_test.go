package webhooky

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsbridge/opsbridge/airsync"
	"github.com/opsbridge/opsbridge/cio"
	"github.com/opsbridge/opsbridge/pkg/config"
)

type fakePinger struct{ err error }

func (f *fakePinger) PingContext(ctx context.Context) error { return f.err }

type capturedArchive struct {
	source  string
	eventID string
	payload []byte
}

type fakeArchiver struct {
	got chan capturedArchive
}

func newFakeArchiver() *fakeArchiver {
	return &fakeArchiver{got: make(chan capturedArchive, 4)}
}

func (f *fakeArchiver) Archive(ctx context.Context, source, eventID string, payload []byte) {
	f.got <- capturedArchive{source: source, eventID: eventID, payload: payload}
}

type serverFixture struct {
	server      *Server
	subscribers *airsync.MemStore[cio.MailingListSubscriber]
	applicants  *airsync.MemStore[cio.Applicant]
	archiver    *fakeArchiver
	pinger      *fakePinger
}

func newFixture(t *testing.T, jobs []cio.Job) *serverFixture {
	t.Helper()

	subscribers := airsync.NewMemStore[cio.MailingListSubscriber]()
	subTable, err := airsync.NewTable[cio.MailingListSubscriber](subscribers, airsync.NewFakeAirtable(), nil,
		airsync.TableConfig{AirtableTable: "Mailing List", KeyField: "Email"}, zerolog.Nop())
	require.NoError(t, err)

	applicants := airsync.NewMemStore[cio.Applicant]()
	appTable, err := airsync.NewTable[cio.Applicant](applicants, airsync.NewFakeAirtable(), nil,
		airsync.TableConfig{AirtableTable: "Applicants", KeyField: "Email"}, zerolog.Nop())
	require.NoError(t, err)

	archiver := newFakeArchiver()
	pinger := &fakePinger{}

	server := NewServer(config.ServerConf{Port: 8080}, Deps{
		DB:          pinger,
		Subscribers: subTable,
		Applicants:  appTable,
		Runner:      cio.NewRunner(jobs, 1, nil, zerolog.Nop()),
		Archiver:    archiver,
		Logger:      zerolog.Nop(),
	})

	return &serverFixture{
		server:      server,
		subscribers: subscribers,
		applicants:  applicants,
		archiver:    archiver,
		pinger:      pinger,
	}
}

func (f *serverFixture) do(method, path, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)

	f.pinger.err = errors.New("conexão recusada")
	rec = f.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCorrelationIDHeader(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodGet, "/health", "", "")
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-Id"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Correlation-Id", "abc-123")
	out := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(out, req)
	assert.Equal(t, "abc-123", out.Header().Get("X-Correlation-Id"))
}

func TestMailchimpVerify(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(http.MethodGet, "/webhooks/mailchimp", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func mailchimpForm(eventType, email string, extra map[string]string) string {
	form := url.Values{}
	form.Set("type", eventType)
	form.Set("fired_at", "2024-03-01 12:00:00")
	form.Set("data[email]", email)
	for k, v := range extra {
		form.Set(k, v)
	}
	return form.Encode()
}

func TestMailchimpSubscribe(t *testing.T) {
	f := newFixture(t, nil)

	body := mailchimpForm("subscribe", "Ana@News.co", map[string]string{
		"data[merges][FNAME]": "Ana",
		"data[merges][LNAME]": "Lima",
	})
	rec := f.do(http.MethodPost, "/webhooks/mailchimp", "application/x-www-form-urlencoded", body)
	require.Equal(t, http.StatusOK, rec.Code)

	sub, err := f.subscribers.Get(context.Background(), "ana@news.co")
	require.NoError(t, err)
	assert.Equal(t, "Ana Lima", sub.Name)
	assert.Equal(t, "subscribed", sub.Status)
	assert.Equal(t, "mailchimp-webhook", sub.Source)

	// O arquivo em S3 guarda o corpo exatamente como recebido
	archived := <-f.archiver.got
	assert.Equal(t, "mailchimp", archived.source)
	assert.NotEmpty(t, archived.eventID)
	assert.Equal(t, body, string(archived.payload))
}

func TestMailchimpUnsubscribe(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, f.subscribers.Upsert(ctx, &cio.MailingListSubscriber{
		Email: "ana@news.co", Status: "subscribed",
	}))

	body := mailchimpForm("unsubscribe", "ana@news.co", nil)
	rec := f.do(http.MethodPost, "/webhooks/mailchimp", "application/x-www-form-urlencoded", body)
	require.Equal(t, http.StatusOK, rec.Code)

	sub, err := f.subscribers.Get(ctx, "ana@news.co")
	require.NoError(t, err)
	assert.Equal(t, "unsubscribed", sub.Status)
}

func TestMailchimpUnsubscribeUnknownIsNoop(t *testing.T) {
	f := newFixture(t, nil)

	body := mailchimpForm("unsubscribe", "ghost@news.co", nil)
	rec := f.do(http.MethodPost, "/webhooks/mailchimp", "application/x-www-form-urlencoded", body)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMailchimpEmailChange(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, f.subscribers.Upsert(ctx, &cio.MailingListSubscriber{
		Email: "old@news.co", Name: "Ana", Status: "subscribed",
	}))

	body := mailchimpForm("upemail", "old@news.co", map[string]string{
		"data[new_email]": "new@news.co",
	})
	rec := f.do(http.MethodPost, "/webhooks/mailchimp", "application/x-www-form-urlencoded", body)
	require.Equal(t, http.StatusOK, rec.Code)

	_, err := f.subscribers.Get(ctx, "old@news.co")
	assert.ErrorIs(t, err, airsync.ErrNotFound)

	moved, err := f.subscribers.Get(ctx, "new@news.co")
	require.NoError(t, err)
	assert.Equal(t, "Ana", moved.Name)
}

func TestMailchimpMalformed(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(http.MethodPost, "/webhooks/mailchimp", "application/x-www-form-urlencoded", "data%5Bemail%5D=x%40y.co")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Mesmo rejeitado, o payload fica arquivado para inspeção
	archived := <-f.archiver.got
	assert.Equal(t, "mailchimp", archived.source)
	assert.Equal(t, "data%5Bemail%5D=x%40y.co", string(archived.payload))
}

func TestCheckrReportCompleted(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, f.applicants.Upsert(ctx, &cio.Applicant{
		Email: "ana@x.co", CheckrCandidateID: "c1", ScreeningStatus: "pending",
	}))

	body := `{
		"id": "evt_1",
		"type": "report.completed",
		"data": {"object": {"id": "r1", "status": "complete", "result": "clear", "candidate_id": "c1"}}
	}`
	rec := f.do(http.MethodPost, "/webhooks/checkr", "application/json", body)
	require.Equal(t, http.StatusOK, rec.Code)

	applicant, err := f.applicants.Get(ctx, "ana@x.co")
	require.NoError(t, err)
	assert.Equal(t, "clear", applicant.ScreeningStatus)

	archived := <-f.archiver.got
	assert.Equal(t, "checkr", archived.source)
}

func TestCheckrInvitationCompleted(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, f.applicants.Upsert(ctx, &cio.Applicant{
		Email: "ana@x.co", CheckrCandidateID: "c1", ScreeningStatus: "pending",
	}))

	body := `{"id": "evt_4", "type": "invitation.completed", "data": {"object": {"candidate_id": "c1", "status": "completed"}}}`
	rec := f.do(http.MethodPost, "/webhooks/checkr", "application/json", body)
	require.Equal(t, http.StatusOK, rec.Code)

	applicant, err := f.applicants.Get(ctx, "ana@x.co")
	require.NoError(t, err)
	assert.Equal(t, "processing", applicant.ScreeningStatus)
}

func TestCheckrUnknownCandidateIsNoop(t *testing.T) {
	f := newFixture(t, nil)

	body := `{"id": "evt_2", "type": "report.completed", "data": {"object": {"candidate_id": "nope"}}}`
	rec := f.do(http.MethodPost, "/webhooks/checkr", "application/json", body)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCheckrIgnoresOtherEvents(t *testing.T) {
	f := newFixture(t, nil)

	body := `{"id": "evt_3", "type": "invitation.created", "data": {"object": {}}}`
	rec := f.do(http.MethodPost, "/webhooks/checkr", "application/json", body)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCheckrMalformed(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(http.MethodPost, "/webhooks/checkr", "application/json", "{nao é json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Mesmo rejeitado, o payload fica arquivado para inspeção
	archived := <-f.archiver.got
	assert.Equal(t, "checkr", archived.source)
	assert.Equal(t, "{nao é json", string(archived.payload))
}

func TestSyncEndpoint(t *testing.T) {
	jobs := []cio.Job{
		{Name: "employees", Run: func(ctx context.Context) (airsync.SyncStat, error) {
			return airsync.SyncStat{Created: 3, Updated: 1}, nil
		}},
		{Name: "broken", Run: func(ctx context.Context) (airsync.SyncStat, error) {
			return airsync.SyncStat{}, errors.New("provedor fora do ar")
		}},
	}
	f := newFixture(t, jobs)

	rec := f.do(http.MethodPost, "/sync/employees", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"created":3`)

	rec = f.do(http.MethodPost, "/sync/unknown", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodPost, "/sync/broken", "", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
