package quickbooks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Get() (string, error) { return string(s), nil }

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClientWithBaseURL(srv.URL, staticToken("qb-token"), "realm42")
}

func TestListPurchases_QueryPagination(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/company/realm42/query", r.URL.Path)
		assert.Equal(t, "Bearer qb-token", r.Header.Get("Authorization"))

		stmt := r.URL.Query().Get("query")
		require.True(t, strings.HasPrefix(stmt, "select * from Purchase"), stmt)

		var resp queryResponse
		if strings.Contains(stmt, "startposition 1 ") {
			for i := 0; i < 100; i++ {
				resp.QueryResponse.Purchase = append(resp.QueryResponse.Purchase, Purchase{ID: fmt.Sprint(i), TotalAmt: 10.5})
			}
		} else {
			require.Contains(t, stmt, "startposition 101 ")
			resp.QueryResponse.Purchase = []Purchase{{ID: "last", TotalAmt: 99.9}}
		}
		json.NewEncoder(w).Encode(resp)
	})

	purchases, err := client.ListPurchases(context.Background())
	require.NoError(t, err)
	assert.Len(t, purchases, 101)
	assert.Equal(t, "last", purchases[100].ID)
}

func TestListItems_SinglePage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"QueryResponse":{"Item":[{"Id":"1","Name":"Consultoria","Type":"Service","Active":true}]}}`)
	})

	items, err := client.ListItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Consultoria", items[0].Name)
}

func TestListAttachables(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		stmt := r.URL.Query().Get("query")
		require.True(t, strings.HasPrefix(stmt, "select * from Attachable"), stmt)
		fmt.Fprint(w, `{"QueryResponse":{"Attachable":[{"Id":"a1","FileName":"recibo.pdf","ContentType":"application/pdf","Size":2048}]}}`)
	})

	attachables, err := client.ListAttachables(context.Background())
	require.NoError(t, err)
	require.Len(t, attachables, 1)
	assert.Equal(t, "recibo.pdf", attachables[0].FileName)
}

func TestGetPurchase(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/company/realm42/purchase/P1", r.URL.Path)
		fmt.Fprint(w, `{"Purchase":{"Id":"P1","TotalAmt":123.45,"TxnDate":"2026-08-01","EntityRef":{"value":"V1","name":"Fornecedor"}}}`)
	})

	p, err := client.GetPurchase(context.Background(), "P1")
	require.NoError(t, err)
	assert.Equal(t, 123.45, p.TotalAmt)
	require.NotNil(t, p.EntityRef)
	assert.Equal(t, "Fornecedor", p.EntityRef.Name)
}

func TestGetCompanyInfo(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/company/realm42/companyinfo/realm42", r.URL.Path)
		fmt.Fprint(w, `{"CompanyInfo":{"Id":"realm42","CompanyName":"Acme"}}`)
	})

	info, err := client.GetCompanyInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Acme", info.CompanyName)
}
