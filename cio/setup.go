package cio

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/opsbridge/opsbridge/airsync"
	"github.com/opsbridge/opsbridge/pkg/cache"
	"github.com/opsbridge/opsbridge/pkg/config"
)

// Nomes dos jobs aceitos na configuração.
const (
	JobEmployees   = "employees"
	JobApplicants  = "applicants"
	JobSubscribers = "subscribers"
	JobExpenses    = "expenses"
	JobZoomUsers   = "zoom-users"
)

// Tables agrupa as tabelas espelhadas do domínio. O webhooky as usa
// diretamente para gravações pontuais; o cio para as cargas completas.
type Tables struct {
	Employees   *airsync.Table[Employee]
	Applicants  *airsync.Table[Applicant]
	Subscribers *airsync.Table[MailingListSubscriber]
	Expenses    *airsync.Table[Expense]
	ZoomUsers   *airsync.Table[ZoomUser]
}

// tableSpec amarra um job ao seu lado Postgres e aos defaults do Airtable.
type tableSpec struct {
	pgTable   string
	keyColumn string
	atTable   string
	keyField  string
}

var tableSpecs = map[string]tableSpec{
	JobEmployees:   {"employees", "email", "Employees", "Email"},
	JobApplicants:  {"applicants", "email", "Applicants", "Email"},
	JobSubscribers: {"mailing_list_subscribers", "email", "Mailing List", "Email"},
	JobExpenses:    {"expenses", "ramp_transaction_id", "Expenses", "Transaction ID"},
	JobZoomUsers:   {"zoom_users", "email", "Zoom Users", "Email"},
}

// BuildTables monta as cinco tabelas espelhadas. A configuração de sync pode
// trocar a tabela Airtable e definir o filtro de cada job; na ausência valem
// os defaults.
func BuildTables(db *sql.DB, at airsync.AirtableAPI, rc cache.RecordIDCache, sync config.SyncConf, logger zerolog.Logger) (*Tables, error) {
	tables := &Tables{}

	var err error
	if tables.Employees, err = buildTable[Employee](db, at, rc, sync, JobEmployees, logger); err != nil {
		return nil, err
	}
	if tables.Applicants, err = buildTable[Applicant](db, at, rc, sync, JobApplicants, logger); err != nil {
		return nil, err
	}
	if tables.Subscribers, err = buildTable[MailingListSubscriber](db, at, rc, sync, JobSubscribers, logger); err != nil {
		return nil, err
	}
	if tables.Expenses, err = buildTable[Expense](db, at, rc, sync, JobExpenses, logger); err != nil {
		return nil, err
	}
	if tables.ZoomUsers, err = buildTable[ZoomUser](db, at, rc, sync, JobZoomUsers, logger); err != nil {
		return nil, err
	}
	return tables, nil
}

func buildTable[T airsync.Syncable](db *sql.DB, at airsync.AirtableAPI, rc cache.RecordIDCache, sync config.SyncConf, name string, logger zerolog.Logger) (*airsync.Table[T], error) {
	spec := tableSpecs[name]

	cfg := airsync.TableConfig{
		AirtableTable: spec.atTable,
		KeyField:      spec.keyField,
	}
	if jc, ok := sync.Job(name); ok {
		if jc.AirtableTable != "" {
			cfg.AirtableTable = jc.AirtableTable
		}
		cfg.Filter = jc.Filter
	}

	store, err := airsync.NewSQLStore[T](db, spec.pgTable, spec.keyColumn)
	if err != nil {
		return nil, fmt.Errorf("store de %s: %w", name, err)
	}
	return airsync.NewTable[T](store, at, rc, cfg, logger)
}

// Providers agrupa os clientes externos consumidos pelos jobs.
type Providers struct {
	Gusto           GustoAPI
	GustoCompanyID  string
	Checkr          CheckrAPI
	Mailchimp       MailchimpAPI
	MailchimpListID string
	Ramp            RampAPI
	QuickBooks      QuickBooksAPI
	Zoom            ZoomAPI
}

// BuildJobs monta os jobs declarados na configuração, na ordem declarada.
// Jobs sem provedor configurado são rejeitados na montagem, não em runtime.
func BuildJobs(tables *Tables, providers Providers, sync config.SyncConf, logger zerolog.Logger) ([]Job, error) {
	var jobs []Job
	for _, jc := range sync.Jobs {
		run, err := buildRun(jc.Name, tables, providers, logger)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, Job{Name: jc.Name, Required: jc.Required, Run: run})
	}
	return jobs, nil
}

func buildRun(name string, tables *Tables, providers Providers, logger zerolog.Logger) (func(ctx context.Context) (airsync.SyncStat, error), error) {
	logger = logger.With().Str("job", name).Logger()

	switch name {
	case JobEmployees:
		if providers.Gusto == nil {
			return nil, fmt.Errorf("job %s requer cliente gusto", name)
		}
		job := &EmployeeJob{Gusto: providers.Gusto, CompanyID: providers.GustoCompanyID, Table: tables.Employees, Logger: logger}
		return job.Run, nil
	case JobApplicants:
		if providers.Checkr == nil {
			return nil, fmt.Errorf("job %s requer cliente checkr", name)
		}
		job := &ApplicantJob{Checkr: providers.Checkr, Table: tables.Applicants, Logger: logger}
		return job.Run, nil
	case JobSubscribers:
		if providers.Mailchimp == nil {
			return nil, fmt.Errorf("job %s requer cliente mailchimp", name)
		}
		job := &SubscriberJob{Mailchimp: providers.Mailchimp, ListID: providers.MailchimpListID, Table: tables.Subscribers, Logger: logger}
		return job.Run, nil
	case JobExpenses:
		if providers.Ramp == nil || providers.QuickBooks == nil {
			return nil, fmt.Errorf("job %s requer clientes ramp e quickbooks", name)
		}
		job := &ExpenseJob{Ramp: providers.Ramp, QuickBooks: providers.QuickBooks, Table: tables.Expenses, Logger: logger}
		return job.Run, nil
	case JobZoomUsers:
		if providers.Zoom == nil {
			return nil, fmt.Errorf("job %s requer cliente zoom", name)
		}
		job := &ZoomJob{Zoom: providers.Zoom, Table: tables.ZoomUsers, Employees: tables.Employees, Logger: logger}
		return job.Run, nil
	default:
		return nil, fmt.Errorf("job %q desconhecido", name)
	}
}
