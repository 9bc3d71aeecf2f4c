package ramp

import (
	"math"
	"net/url"
	"strings"
)

// User é um usuário do negócio.
type User struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Status    string `json:"status"`
}

// Transaction é uma transação de cartão liquidada.
type Transaction struct {
	ID                  string      `json:"id"`
	Amount              float64     `json:"amount"` // Em dólares, positivo para débito
	CurrencyCode        string      `json:"currency_code"`
	MerchantName        string      `json:"merchant_name"`
	SKCategoryName      string      `json:"sk_category_name"`
	State               string      `json:"state"`
	UserTransactionTime string      `json:"user_transaction_time"`
	CardHolder          *CardHolder `json:"card_holder"`
}

// CardHolder identifica o portador na transação.
type CardHolder struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Card é um cartão emitido.
type Card struct {
	ID           string `json:"id"`
	DisplayName  string `json:"display_name"`
	LastFour     string `json:"last_four"`
	State        string `json:"state"`
	CardholderID string `json:"cardholder_id"`
}

// AmountCents converte o valor para centavos, evitando float nas contas.
// Estornos chegam negativos e arredondam na mesma direção.
func (t Transaction) AmountCents() int64 {
	return int64(math.Round(t.Amount * 100))
}

// pageInfo carrega o link da próxima página; a API devolve uma URL completa
// e o cursor é o parâmetro "start" dela.
type pageInfo struct {
	Next string `json:"next"`
}

func (p pageInfo) Cursor() string {
	if p.Next == "" {
		return ""
	}
	u, err := url.Parse(p.Next)
	if err != nil {
		return ""
	}
	if start := u.Query().Get("start"); start != "" {
		return start
	}
	// Alguns endpoints devolvem o cursor puro em vez de URL
	if !strings.Contains(p.Next, "://") {
		return p.Next
	}
	return ""
}
