// Package opsbridge reúne os clientes REST dos provedores usados na operação
// (Airtable, Checkr, Gusto, MailChimp, QuickBooks, Ramp, TripActions, Zoom) e
// os dois serviços que os orquestram: o cio, que carrega os dados para o
// Postgres e os espelha no Airtable, e o webhooky, que recebe webhooks e
// dispara sincronizações sob demanda.
//
// Visão Geral:
// O Postgres é o sistema de registro; o Airtable é um espelho somente de
// leitura para os times de operação. A mediação entre os dois é feita pelo
// pacote airsync, que amarra um struct Go a uma tabela de cada lado.
//
// Sub-Pacotes Principais:
//
// 1. airsync:
//   - Table[T] genérico: upsert no Postgres com propagação para o Airtable.
//   - Mapeamento por tags "db", filtros CEL por linha e cache de record-ids.
//   - SyncAll reconcilia as duas pontas em lotes e devolve o SyncStat.
//
// 2. internal/httpapi:
//   - Núcleo compartilhado dos clientes REST: base URL, credenciais,
//     tratamento uniforme de erros e uma única retentativa em 429.
//
// 3. pkg/auth:
//   - Manager de tokens OAuth2 com renovação em background, cobrindo os
//     grants client_credentials, refresh_token e account_credentials.
//
// 4. cio e webhooky:
//   - cio: jobs de carga por provedor executados com concorrência limitada.
//   - webhooky: servidor HTTP dos webhooks, arquivamento bruto em S3 e
//     listener da fila SQS de pedidos de sincronização.
//
// Exemplo de Início Rápido:
//
// Espelhamento de uma tabela própria usando o airsync diretamente.
//
//	package main
//
//	import (
//		"context"
//		"log"
//
//		"github.com/rs/zerolog"
//
//		"github.com/opsbridge/opsbridge/airsync"
//		"github.com/opsbridge/opsbridge/airtable"
//	)
//
//	type Vendor struct {
//		Name   string `db:"name"`
//		Tier   string `db:"tier"`
//		Active bool   `db:"active"`
//	}
//
//	func (v Vendor) NaturalKey() string { return v.Name }
//
//	func (v Vendor) AirtableFields() map[string]any {
//		return map[string]any{"Name": v.Name, "Tier": v.Tier}
//	}
//
//	func main() {
//		ctx := context.Background()
//
//		store, err := airsync.NewSQLStore[Vendor](db, "vendors", "name")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		table, err := airsync.NewTable[Vendor](store,
//			airtable.NewClient(token, baseID), nil,
//			airsync.TableConfig{
//				AirtableTable: "Vendors",
//				KeyField:      "Name",
//				Filter:        `row["active"] == true`,
//			}, zerolog.Nop())
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		stat, err := table.SyncAll(ctx)
//		if err != nil {
//			log.Fatal(err)
//		}
//		log.Println(stat)
//	}
package opsbridge
