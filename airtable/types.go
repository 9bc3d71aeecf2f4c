package airtable

// Record é um registro de uma tabela, com campos dinâmicos.
type Record struct {
	ID          string         `json:"id,omitempty"`
	Fields      map[string]any `json:"fields"`
	CreatedTime string         `json:"createdTime,omitempty"`
}

// StringField lê um campo como string, tolerando ausência e tipos errados.
func (r Record) StringField(name string) string {
	if v, ok := r.Fields[name].(string); ok {
		return v
	}
	return ""
}

type recordPage struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset,omitempty"`
}

type writeRecord struct {
	ID     string         `json:"id,omitempty"`
	Fields map[string]any `json:"fields"`
}

type writeRequest struct {
	Records []writeRecord `json:"records"`
	// Typecast deixa o Airtable criar opções de select que ainda não existem
	Typecast bool `json:"typecast,omitempty"`
}
