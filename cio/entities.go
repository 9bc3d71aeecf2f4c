// Package cio carrega os dados operacionais dos provedores externos para o
// Postgres e mantém as tabelas Airtable correspondentes espelhadas.
package cio

import (
	"time"
)

// Employee é o registro de funcionário, alimentado pelo Gusto e enriquecido
// com o id do Zoom.
type Employee struct {
	Email      string     `db:"email"`
	FirstName  string     `db:"first_name"`
	LastName   string     `db:"last_name"`
	Department string     `db:"department"`
	StartDate  *time.Time `db:"start_date"`
	Status     string     `db:"status"`
	GustoID    string     `db:"gusto_id"`
	ZoomUserID string     `db:"zoom_user_id"`
	UpdatedAt  time.Time  `db:"updated_at"`
}

func (e Employee) NaturalKey() string { return e.Email }

func (e Employee) AirtableFields() map[string]any {
	fields := map[string]any{
		"Email":      e.Email,
		"First Name": e.FirstName,
		"Last Name":  e.LastName,
		"Department": e.Department,
		"Status":     e.Status,
	}
	if e.StartDate != nil {
		fields["Start Date"] = e.StartDate.Format("2006-01-02")
	}
	return fields
}

// Applicant é um candidato com verificação de antecedentes via Checkr.
type Applicant struct {
	Email             string    `db:"email"`
	Name              string    `db:"name"`
	Role              string    `db:"role"`
	CheckrCandidateID string    `db:"checkr_candidate_id"`
	ScreeningStatus   string    `db:"screening_status"`
	UpdatedAt         time.Time `db:"updated_at"`
}

func (a Applicant) NaturalKey() string { return a.Email }

func (a Applicant) AirtableFields() map[string]any {
	return map[string]any{
		"Email":            a.Email,
		"Name":             a.Name,
		"Role":             a.Role,
		"Screening Status": a.ScreeningStatus,
	}
}

// MailingListSubscriber é um inscrito da lista do MailChimp.
type MailingListSubscriber struct {
	Email        string     `db:"email"`
	Name         string     `db:"name"`
	Status       string     `db:"status"`
	Source       string     `db:"source"`
	SubscribedAt *time.Time `db:"subscribed_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

func (s MailingListSubscriber) NaturalKey() string { return s.Email }

func (s MailingListSubscriber) AirtableFields() map[string]any {
	fields := map[string]any{
		"Email":  s.Email,
		"Name":   s.Name,
		"Status": s.Status,
		"Source": s.Source,
	}
	if s.SubscribedAt != nil {
		fields["Subscribed At"] = s.SubscribedAt.Format(time.RFC3339)
	}
	return fields
}

// Expense é uma transação do Ramp, conciliada com o Purchase do QuickBooks
// quando há correspondência de data e valor.
type Expense struct {
	RampTransactionID    string     `db:"ramp_transaction_id"`
	EmployeeEmail        string     `db:"employee_email"`
	Merchant             string     `db:"merchant"`
	AmountCents          int64      `db:"amount_cents"`
	Currency             string     `db:"currency"`
	TransactedAt         *time.Time `db:"transacted_at"`
	QuickBooksPurchaseID string     `db:"quickbooks_purchase_id"`
	UpdatedAt            time.Time  `db:"updated_at"`
}

func (e Expense) NaturalKey() string { return e.RampTransactionID }

func (e Expense) AirtableFields() map[string]any {
	fields := map[string]any{
		"Transaction ID": e.RampTransactionID,
		"Employee Email": e.EmployeeEmail,
		"Merchant":       e.Merchant,
		"Amount":         float64(e.AmountCents) / 100,
		"Currency":       e.Currency,
		"Reconciled":     e.QuickBooksPurchaseID != "",
	}
	if e.TransactedAt != nil {
		fields["Transacted At"] = e.TransactedAt.Format("2006-01-02")
	}
	return fields
}

// ZoomUser é a conta do Zoom, usada para conciliar licenças com o quadro de
// funcionários.
type ZoomUser struct {
	Email     string    `db:"email"`
	ZoomID    string    `db:"zoom_id"`
	UserType  int       `db:"user_type"`
	Status    string    `db:"status"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (z ZoomUser) NaturalKey() string { return z.Email }

func (z ZoomUser) AirtableFields() map[string]any {
	return map[string]any{
		"Email":  z.Email,
		"Type":   int64(z.UserType),
		"Status": z.Status,
	}
}
