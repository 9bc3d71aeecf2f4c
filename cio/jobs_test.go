package cio

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsbridge/opsbridge/airsync"
	"github.com/opsbridge/opsbridge/checkr"
	"github.com/opsbridge/opsbridge/gusto"
	"github.com/opsbridge/opsbridge/mailchimp"
	"github.com/opsbridge/opsbridge/quickbooks"
	"github.com/opsbridge/opsbridge/ramp"
	"github.com/opsbridge/opsbridge/zoom"
)

func newTestTable[T airsync.Syncable](t *testing.T, atTable, keyField string) (*airsync.Table[T], *airsync.MemStore[T]) {
	t.Helper()
	store := airsync.NewMemStore[T]()
	table, err := airsync.NewTable[T](store, airsync.NewFakeAirtable(), nil,
		airsync.TableConfig{AirtableTable: atTable, KeyField: keyField}, zerolog.Nop())
	require.NoError(t, err)
	return table, store
}

type fakeGusto struct {
	employees []gusto.Employee
	err       error
}

func (f *fakeGusto) ListEmployees(ctx context.Context, companyID string) ([]gusto.Employee, error) {
	return f.employees, f.err
}

func TestEmployeeJobRun(t *testing.T) {
	table, store := newTestTable[Employee](t, "Employees", "Email")

	job := &EmployeeJob{
		Gusto: &fakeGusto{employees: []gusto.Employee{
			{
				ID: "101", Email: "Ana@Corp.co", FirstName: "Ana", LastName: "Lima",
				Department: "Engineering",
				Jobs:       []gusto.Job{{Primary: true, HireDate: "2023-05-15"}},
			},
			{ID: "102", Email: "bob@corp.co", FirstName: "Bob", Terminated: true},
			{ID: "103", Email: ""},
		}},
		CompanyID: "co_1",
		Table:     table,
		Logger:    zerolog.Nop(),
	}

	stat, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stat.Created)

	ana, err := store.Get(context.Background(), "ana@corp.co")
	require.NoError(t, err)
	assert.Equal(t, "101", ana.GustoID)
	assert.Equal(t, "active", ana.Status)
	require.NotNil(t, ana.StartDate)
	assert.Equal(t, "2023-05-15", ana.StartDate.Format("2006-01-02"))

	bob, err := store.Get(context.Background(), "bob@corp.co")
	require.NoError(t, err)
	assert.Equal(t, "terminated", bob.Status)
}

func TestEmployeeJobPreservesZoomLink(t *testing.T) {
	table, store := newTestTable[Employee](t, "Employees", "Email")
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, &Employee{Email: "ana@corp.co", ZoomUserID: "z-77"}))

	job := &EmployeeJob{
		Gusto:  &fakeGusto{employees: []gusto.Employee{{ID: "101", Email: "ana@corp.co"}}},
		Table:  table,
		Logger: zerolog.Nop(),
	}
	_, err := job.Run(ctx)
	require.NoError(t, err)

	ana, err := store.Get(ctx, "ana@corp.co")
	require.NoError(t, err)
	assert.Equal(t, "z-77", ana.ZoomUserID)
}

func TestEmployeeJobGustoError(t *testing.T) {
	table, _ := newTestTable[Employee](t, "Employees", "Email")
	job := &EmployeeJob{
		Gusto:  &fakeGusto{err: errors.New("gusto fora do ar")},
		Table:  table,
		Logger: zerolog.Nop(),
	}
	_, err := job.Run(context.Background())
	assert.Error(t, err)
}

type fakeCheckr struct {
	candidates []checkr.Candidate
	reports    map[string]*checkr.Report
}

func (f *fakeCheckr) ListCandidates(ctx context.Context) ([]checkr.Candidate, error) {
	return f.candidates, nil
}

func (f *fakeCheckr) GetReport(ctx context.Context, id string) (*checkr.Report, error) {
	report, ok := f.reports[id]
	if !ok {
		return nil, errors.New("report não encontrado")
	}
	return report, nil
}

func TestApplicantJobScreeningStatus(t *testing.T) {
	table, store := newTestTable[Applicant](t, "Applicants", "Email")

	job := &ApplicantJob{
		Checkr: &fakeCheckr{
			candidates: []checkr.Candidate{
				{ID: "c1", Email: "clear@x.co", FirstName: "Ana", LastName: "Lima", ReportIDs: []string{"r0", "r1"}},
				{ID: "c2", Email: "pending@x.co"},
				{ID: "c3", Email: "running@x.co", ReportIDs: []string{"r2"}},
			},
			reports: map[string]*checkr.Report{
				"r1": {ID: "r1", Status: "complete", Result: "clear"},
				"r2": {ID: "r2", Status: "pending"},
			},
		},
		Table:  table,
		Logger: zerolog.Nop(),
	}

	_, err := job.Run(context.Background())
	require.NoError(t, err)

	clear, err := store.Get(context.Background(), "clear@x.co")
	require.NoError(t, err)
	assert.Equal(t, "clear", clear.ScreeningStatus)
	assert.Equal(t, "Ana Lima", clear.Name)

	pending, err := store.Get(context.Background(), "pending@x.co")
	require.NoError(t, err)
	assert.Equal(t, "pending", pending.ScreeningStatus)

	running, err := store.Get(context.Background(), "running@x.co")
	require.NoError(t, err)
	assert.Equal(t, "pending", running.ScreeningStatus)
}

type fakeMailchimp struct {
	members []mailchimp.Member
}

func (f *fakeMailchimp) ListMembers(ctx context.Context, listID string) ([]mailchimp.Member, error) {
	return f.members, nil
}

func TestSubscriberJobRun(t *testing.T) {
	table, store := newTestTable[MailingListSubscriber](t, "Mailing List", "Email")

	job := &SubscriberJob{
		Mailchimp: &fakeMailchimp{members: []mailchimp.Member{
			{
				EmailAddress: "Ana@News.co",
				Status:       "subscribed",
				MergeFields:  map[string]any{"FNAME": "Ana", "LNAME": "Lima"},
				TimestampOpt: "2024-01-10T08:30:00+00:00",
			},
		}},
		ListID: "list1",
		Table:  table,
		Logger: zerolog.Nop(),
	}

	_, err := job.Run(context.Background())
	require.NoError(t, err)

	sub, err := store.Get(context.Background(), "ana@news.co")
	require.NoError(t, err)
	assert.Equal(t, "Ana Lima", sub.Name)
	assert.Equal(t, "subscribed", sub.Status)
	assert.Equal(t, "mailchimp", sub.Source)
	require.NotNil(t, sub.SubscribedAt)
}

type fakeRamp struct {
	transactions []ramp.Transaction
}

func (f *fakeRamp) ListTransactions(ctx context.Context, from time.Time) ([]ramp.Transaction, error) {
	return f.transactions, nil
}

type fakeQuickBooks struct {
	purchases []quickbooks.Purchase
	err       error
}

func (f *fakeQuickBooks) ListPurchases(ctx context.Context) ([]quickbooks.Purchase, error) {
	return f.purchases, f.err
}

func TestExpenseJobReconciliation(t *testing.T) {
	table, store := newTestTable[Expense](t, "Expenses", "Transaction ID")

	job := &ExpenseJob{
		Ramp: &fakeRamp{transactions: []ramp.Transaction{
			{
				ID: "txn1", Amount: 42.50, CurrencyCode: "USD", MerchantName: "AWS",
				UserTransactionTime: "2024-02-01T14:00:00Z",
				CardHolder:          &ramp.CardHolder{Email: "Ana@Corp.co"},
			},
			{
				ID: "txn2", Amount: 9.99, MerchantName: "GitHub",
				UserTransactionTime: "2024-02-02T10:00:00Z",
			},
		}},
		QuickBooks: &fakeQuickBooks{purchases: []quickbooks.Purchase{
			{ID: "p1", TxnDate: "2024-02-01", TotalAmt: 42.50},
		}},
		Table:  table,
		Logger: zerolog.Nop(),
	}

	_, err := job.Run(context.Background())
	require.NoError(t, err)

	matched, err := store.Get(context.Background(), "txn1")
	require.NoError(t, err)
	assert.Equal(t, "p1", matched.QuickBooksPurchaseID)
	assert.Equal(t, int64(4250), matched.AmountCents)
	assert.Equal(t, "ana@corp.co", matched.EmployeeEmail)

	unmatched, err := store.Get(context.Background(), "txn2")
	require.NoError(t, err)
	assert.Empty(t, unmatched.QuickBooksPurchaseID)
	assert.Equal(t, "USD", unmatched.Currency)
}

func TestExpenseJobQuickBooksDown(t *testing.T) {
	table, store := newTestTable[Expense](t, "Expenses", "Transaction ID")

	job := &ExpenseJob{
		Ramp: &fakeRamp{transactions: []ramp.Transaction{
			{ID: "txn1", Amount: 10, UserTransactionTime: "2024-02-01T14:00:00Z"},
		}},
		QuickBooks: &fakeQuickBooks{err: errors.New("quickbooks fora do ar")},
		Table:      table,
		Logger:     zerolog.Nop(),
	}

	_, err := job.Run(context.Background())
	require.NoError(t, err)

	row, err := store.Get(context.Background(), "txn1")
	require.NoError(t, err)
	assert.Empty(t, row.QuickBooksPurchaseID)
}

type fakeZoom struct {
	users     []zoom.User
	created   []zoom.UserInfo
	createErr error
}

func (f *fakeZoom) ListUsers(ctx context.Context) ([]zoom.User, error) {
	return f.users, nil
}

func (f *fakeZoom) CreateUser(ctx context.Context, info zoom.UserInfo) (*zoom.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, info)
	return &zoom.User{
		ID: fmt.Sprintf("z-new-%d", len(f.created)), Email: info.Email,
		Type: info.Type, Status: "pending",
	}, nil
}

func TestZoomJobLinksEmployees(t *testing.T) {
	zoomTable, zoomStore := newTestTable[ZoomUser](t, "Zoom Users", "Email")
	empTable, empStore := newTestTable[Employee](t, "Employees", "Email")
	ctx := context.Background()

	require.NoError(t, empStore.Upsert(ctx, &Employee{Email: "ana@corp.co", FirstName: "Ana"}))

	job := &ZoomJob{
		Zoom: &fakeZoom{users: []zoom.User{
			{ID: "z-77", Email: "ana@corp.co", Type: 2, Status: "active"},
			{ID: "z-88", Email: "ghost@corp.co", Type: 1, Status: "active"},
		}},
		Table:     zoomTable,
		Employees: empTable,
		Logger:    zerolog.Nop(),
	}

	stat, err := job.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stat.Created)

	ana, err := empStore.Get(ctx, "ana@corp.co")
	require.NoError(t, err)
	assert.Equal(t, "z-77", ana.ZoomUserID)

	ghost, err := zoomStore.Get(ctx, "ghost@corp.co")
	require.NoError(t, err)
	assert.Equal(t, 1, ghost.UserType)
}

func TestZoomJobProvisionsActiveEmployees(t *testing.T) {
	zoomTable, zoomStore := newTestTable[ZoomUser](t, "Zoom Users", "Email")
	empTable, empStore := newTestTable[Employee](t, "Employees", "Email")
	ctx := context.Background()

	require.NoError(t, empStore.Upsert(ctx, &Employee{Email: "nova@corp.co", FirstName: "Nova", Status: "active"}))
	require.NoError(t, empStore.Upsert(ctx, &Employee{Email: "saiu@corp.co", Status: "terminated"}))

	client := &fakeZoom{}
	job := &ZoomJob{Zoom: client, Table: zoomTable, Employees: empTable, Logger: zerolog.Nop()}

	_, err := job.Run(ctx)
	require.NoError(t, err)

	require.Len(t, client.created, 1)
	assert.Equal(t, "nova@corp.co", client.created[0].Email)

	row, err := zoomStore.Get(ctx, "nova@corp.co")
	require.NoError(t, err)
	assert.Equal(t, "pending", row.Status)

	nova, err := empStore.Get(ctx, "nova@corp.co")
	require.NoError(t, err)
	assert.Equal(t, "z-new-1", nova.ZoomUserID)
}

func TestZoomJobToleratesProvisionFailure(t *testing.T) {
	zoomTable, _ := newTestTable[ZoomUser](t, "Zoom Users", "Email")
	empTable, empStore := newTestTable[Employee](t, "Employees", "Email")
	ctx := context.Background()

	require.NoError(t, empStore.Upsert(ctx, &Employee{Email: "nova@corp.co", Status: "active"}))

	client := &fakeZoom{createErr: errors.New("licenças esgotadas")}
	job := &ZoomJob{Zoom: client, Table: zoomTable, Employees: empTable, Logger: zerolog.Nop()}

	_, err := job.Run(ctx)
	assert.NoError(t, err)
}
