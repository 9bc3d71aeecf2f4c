package cio

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/opsbridge/opsbridge/airsync"
	"github.com/opsbridge/opsbridge/checkr"
	"github.com/opsbridge/opsbridge/gusto"
	"github.com/opsbridge/opsbridge/mailchimp"
	"github.com/opsbridge/opsbridge/quickbooks"
	"github.com/opsbridge/opsbridge/ramp"
	"github.com/opsbridge/opsbridge/zoom"
)

// expenseLookback limita a janela de transações buscadas no Ramp.
const expenseLookback = 90 * 24 * time.Hour

// Recortes dos clientes usados pelos jobs, para mocking nos testes.

type GustoAPI interface {
	ListEmployees(ctx context.Context, companyID string) ([]gusto.Employee, error)
}

type CheckrAPI interface {
	ListCandidates(ctx context.Context) ([]checkr.Candidate, error)
	GetReport(ctx context.Context, id string) (*checkr.Report, error)
}

type MailchimpAPI interface {
	ListMembers(ctx context.Context, listID string) ([]mailchimp.Member, error)
}

type RampAPI interface {
	ListTransactions(ctx context.Context, from time.Time) ([]ramp.Transaction, error)
}

type QuickBooksAPI interface {
	ListPurchases(ctx context.Context) ([]quickbooks.Purchase, error)
}

type ZoomAPI interface {
	ListUsers(ctx context.Context) ([]zoom.User, error)
	CreateUser(ctx context.Context, info zoom.UserInfo) (*zoom.User, error)
}

// EmployeeJob carrega o quadro de funcionários do Gusto.
type EmployeeJob struct {
	Gusto     GustoAPI
	CompanyID string
	Table     *airsync.Table[Employee]
	Logger    zerolog.Logger
}

func (j *EmployeeJob) Run(ctx context.Context) (airsync.SyncStat, error) {
	employees, err := j.Gusto.ListEmployees(ctx, j.CompanyID)
	if err != nil {
		return airsync.SyncStat{}, fmt.Errorf("listar funcionários do gusto: %w", err)
	}

	now := time.Now().UTC()
	for _, emp := range employees {
		if emp.Email == "" {
			j.Logger.Warn().Str("gusto_id", emp.ID.String()).Msg("funcionário sem email, ignorado")
			continue
		}

		row := Employee{
			Email:      strings.ToLower(emp.Email),
			FirstName:  emp.FirstName,
			LastName:   emp.LastName,
			Department: emp.Department,
			Status:     "active",
			GustoID:    emp.ID.String(),
			UpdatedAt:  now,
		}
		if emp.Terminated {
			row.Status = "terminated"
		}
		if start := primaryHireDate(emp.Jobs); start != nil {
			row.StartDate = start
		}

		// Preserva o vínculo com o Zoom feito em rodadas anteriores
		if prev, err := j.Table.Get(ctx, row.Email); err == nil {
			row.ZoomUserID = prev.ZoomUserID
		}

		if err := j.Table.Put(ctx, &row); err != nil {
			return airsync.SyncStat{}, err
		}
	}

	return j.Table.SyncAll(ctx)
}

func primaryHireDate(jobs []gusto.Job) *time.Time {
	for _, job := range jobs {
		if !job.Primary || job.HireDate == "" {
			continue
		}
		if t, err := time.Parse("2006-01-02", job.HireDate); err == nil {
			return &t
		}
	}
	return nil
}

// ApplicantJob carrega candidatos do Checkr com o resultado do screening
// mais recente.
type ApplicantJob struct {
	Checkr CheckrAPI
	Table  *airsync.Table[Applicant]
	Logger zerolog.Logger
}

func (j *ApplicantJob) Run(ctx context.Context) (airsync.SyncStat, error) {
	candidates, err := j.Checkr.ListCandidates(ctx)
	if err != nil {
		return airsync.SyncStat{}, fmt.Errorf("listar candidatos do checkr: %w", err)
	}

	now := time.Now().UTC()
	for _, cand := range candidates {
		if cand.Email == "" {
			continue
		}

		row := Applicant{
			Email:             strings.ToLower(cand.Email),
			Name:              strings.TrimSpace(cand.FirstName + " " + cand.LastName),
			CheckrCandidateID: cand.ID,
			ScreeningStatus:   "pending",
			UpdatedAt:         now,
		}

		if len(cand.ReportIDs) > 0 {
			// O último report é o mais recente
			reportID := cand.ReportIDs[len(cand.ReportIDs)-1]
			report, err := j.Checkr.GetReport(ctx, reportID)
			if err != nil {
				j.Logger.Warn().Err(err).Str("report_id", reportID).Msg("report inacessível")
			} else {
				row.ScreeningStatus = ScreeningStatus(report)
			}
		}

		if prev, err := j.Table.Get(ctx, row.Email); err == nil {
			row.Role = prev.Role
		}

		if err := j.Table.Put(ctx, &row); err != nil {
			return airsync.SyncStat{}, err
		}
	}

	return j.Table.SyncAll(ctx)
}

// ScreeningStatus reduz o par status/result de um report a um único estado.
func ScreeningStatus(report *checkr.Report) string {
	if report.Status == "complete" && report.Result != "" {
		return report.Result
	}
	if report.Status == "" {
		return "pending"
	}
	return report.Status
}

// SubscriberJob carrega os inscritos da lista do MailChimp.
type SubscriberJob struct {
	Mailchimp MailchimpAPI
	ListID    string
	Table     *airsync.Table[MailingListSubscriber]
	Logger    zerolog.Logger
}

func (j *SubscriberJob) Run(ctx context.Context) (airsync.SyncStat, error) {
	members, err := j.Mailchimp.ListMembers(ctx, j.ListID)
	if err != nil {
		return airsync.SyncStat{}, fmt.Errorf("listar membros do mailchimp: %w", err)
	}

	now := time.Now().UTC()
	for _, member := range members {
		if member.EmailAddress == "" {
			continue
		}

		row := MailingListSubscriber{
			Email:     strings.ToLower(member.EmailAddress),
			Name:      memberName(member),
			Status:    member.Status,
			Source:    "mailchimp",
			UpdatedAt: now,
		}
		if t, err := time.Parse(time.RFC3339, member.TimestampOpt); err == nil {
			row.SubscribedAt = &t
		}

		if err := j.Table.Put(ctx, &row); err != nil {
			return airsync.SyncStat{}, err
		}
	}

	return j.Table.SyncAll(ctx)
}

func memberName(member mailchimp.Member) string {
	first, _ := member.MergeFields["FNAME"].(string)
	last, _ := member.MergeFields["LNAME"].(string)
	return strings.TrimSpace(first + " " + last)
}

// ExpenseJob carrega transações do Ramp e as concilia com os Purchases do
// QuickBooks por data e valor.
type ExpenseJob struct {
	Ramp       RampAPI
	QuickBooks QuickBooksAPI
	Table      *airsync.Table[Expense]
	Logger     zerolog.Logger
}

func (j *ExpenseJob) Run(ctx context.Context) (airsync.SyncStat, error) {
	transactions, err := j.Ramp.ListTransactions(ctx, time.Now().UTC().Add(-expenseLookback))
	if err != nil {
		return airsync.SyncStat{}, fmt.Errorf("listar transações do ramp: %w", err)
	}

	purchasesByKey := map[string]string{}
	purchases, err := j.QuickBooks.ListPurchases(ctx)
	if err != nil {
		// A conciliação é oportunista; sem QuickBooks os gastos entram
		// sem purchase id
		j.Logger.Warn().Err(err).Msg("quickbooks indisponível, conciliação adiada")
	} else {
		for _, p := range purchases {
			purchasesByKey[purchaseKey(p.TxnDate, toCents(p.TotalAmt))] = p.ID
		}
	}

	now := time.Now().UTC()
	for _, txn := range transactions {
		if txn.ID == "" {
			continue
		}

		row := Expense{
			RampTransactionID: txn.ID,
			Merchant:          txn.MerchantName,
			AmountCents:       txn.AmountCents(),
			Currency:          txn.CurrencyCode,
			UpdatedAt:         now,
		}
		if row.Currency == "" {
			row.Currency = "USD"
		}
		if txn.CardHolder != nil {
			row.EmployeeEmail = strings.ToLower(txn.CardHolder.Email)
		}
		if t, err := time.Parse(time.RFC3339, txn.UserTransactionTime); err == nil {
			row.TransactedAt = &t
			date := t.UTC().Format("2006-01-02")
			row.QuickBooksPurchaseID = purchasesByKey[purchaseKey(date, row.AmountCents)]
		}

		if err := j.Table.Put(ctx, &row); err != nil {
			return airsync.SyncStat{}, err
		}
	}

	return j.Table.SyncAll(ctx)
}

func purchaseKey(date string, cents int64) string {
	return fmt.Sprintf("%s|%d", date, cents)
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// ZoomJob carrega as contas do Zoom, grava o vínculo no funcionário
// correspondente e provisiona conta para funcionário ativo sem uma.
type ZoomJob struct {
	Zoom      ZoomAPI
	Table     *airsync.Table[ZoomUser]
	Employees *airsync.Table[Employee]
	Logger    zerolog.Logger
}

func (j *ZoomJob) Run(ctx context.Context) (airsync.SyncStat, error) {
	users, err := j.Zoom.ListUsers(ctx)
	if err != nil {
		return airsync.SyncStat{}, fmt.Errorf("listar usuários do zoom: %w", err)
	}

	now := time.Now().UTC()
	byEmail := make(map[string]bool, len(users))
	for _, user := range users {
		if user.Email == "" {
			continue
		}
		email := strings.ToLower(user.Email)
		byEmail[email] = true

		row := ZoomUser{
			Email:     email,
			ZoomID:    user.ID,
			UserType:  user.Type,
			Status:    user.Status,
			UpdatedAt: now,
		}
		if err := j.Table.Put(ctx, &row); err != nil {
			return airsync.SyncStat{}, err
		}

		j.linkEmployee(ctx, email, user.ID, now)
	}

	if err := j.provisionMissing(ctx, byEmail, now); err != nil {
		return airsync.SyncStat{}, err
	}

	return j.Table.SyncAll(ctx)
}

func (j *ZoomJob) linkEmployee(ctx context.Context, email, zoomID string, now time.Time) {
	if j.Employees == nil {
		return
	}
	emp, err := j.Employees.Get(ctx, email)
	if err != nil || emp.ZoomUserID == zoomID {
		return
	}
	emp.ZoomUserID = zoomID
	emp.UpdatedAt = now
	if err := j.Employees.Put(ctx, emp); err != nil {
		j.Logger.Warn().Err(err).Str("email", email).Msg("falha ao vincular conta zoom")
	}
}

// provisionMissing cria conta básica para funcionário ativo sem Zoom. Falha
// de criação não derruba a rodada; a próxima tenta de novo.
func (j *ZoomJob) provisionMissing(ctx context.Context, existing map[string]bool, now time.Time) error {
	if j.Employees == nil {
		return nil
	}
	employees, err := j.Employees.List(ctx)
	if err != nil {
		return err
	}

	for _, emp := range employees {
		if emp.Status != "active" || existing[emp.Email] {
			continue
		}

		user, err := j.Zoom.CreateUser(ctx, zoom.UserInfo{
			Email:     emp.Email,
			Type:      1,
			FirstName: emp.FirstName,
			LastName:  emp.LastName,
		})
		if err != nil {
			j.Logger.Warn().Err(err).Str("email", emp.Email).Msg("provisionamento zoom falhou")
			continue
		}

		row := ZoomUser{
			Email:     emp.Email,
			ZoomID:    user.ID,
			UserType:  user.Type,
			Status:    user.Status,
			UpdatedAt: now,
		}
		if err := j.Table.Put(ctx, &row); err != nil {
			return err
		}
		j.linkEmployee(ctx, emp.Email, user.ID, now)
	}
	return nil
}
