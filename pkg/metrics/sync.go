package metrics

import "time"

// SyncRecorder publica o resultado de uma execução de sincronização.
type SyncRecorder struct {
	provider Provider
}

func NewSyncRecorder(provider Provider) *SyncRecorder {
	return &SyncRecorder{provider: provider}
}

// RecordRun emite contadores por desfecho e o histograma de duração do job.
func (r *SyncRecorder) RecordRun(job string, created, updated, deleted, skipped, failed int, elapsed time.Duration) {
	tags := []string{"job:" + job}
	_ = r.provider.Count("sync.records.created", float64(created), tags)
	_ = r.provider.Count("sync.records.updated", float64(updated), tags)
	_ = r.provider.Count("sync.records.deleted", float64(deleted), tags)
	_ = r.provider.Count("sync.records.skipped", float64(skipped), tags)
	_ = r.provider.Count("sync.records.failed", float64(failed), tags)
	_ = r.provider.Histogram("sync.run.duration_ms", float64(elapsed.Milliseconds()), tags)
}

// RecordWebhook conta um webhook recebido por origem e desfecho.
func (r *SyncRecorder) RecordWebhook(source, outcome string) {
	_ = r.provider.Count("webhooks.received", 1, []string{"source:" + source, "outcome:" + outcome})
}
