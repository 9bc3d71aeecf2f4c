// Package airsync mantém entidades do Postgres espelhadas em tabelas do
// Airtable.
//
// O Postgres é o sistema de registro; o Airtable é uma superfície secundária
// de visualização e edição leve. Table[T] amarra uma struct Go a uma tabela
// em cada lado e oferece CRUD + espelhamento: todo upsert/delete no banco é
// propagado para a base, e SyncAll reconcilia os dois lados em lote.
//
// O mapeamento de colunas vem das tags "db" da struct, no mesmo espírito do
// carregamento por tags do pkg/config. Um filtro CEL opcional (variável
// "row") decide quais linhas são espelhadas; linhas filtradas contam como
// Skipped e são removidas da base se já existirem lá.
//
// Falhas no Airtable nunca desfazem a escrita no Postgres: a linha é marcada
// como Failed no SyncStat e a reconciliação segue em frente.
package airsync
