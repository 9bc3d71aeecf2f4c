package mailchimp

// Member é um membro de lista como retornado pela API.
type Member struct {
	ID           string         `json:"id"`
	EmailAddress string         `json:"email_address"`
	Status       string         `json:"status"`
	MergeFields  map[string]any `json:"merge_fields"`
	Tags         []Tag          `json:"tags"`
	TimestampOpt string         `json:"timestamp_opt"`
	LastChanged  string         `json:"last_changed"`
}

// Tag é uma etiqueta aplicada a um membro.
type Tag struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// FullName monta o nome a partir dos merge fields FNAME/LNAME.
func (m Member) FullName() string {
	first, _ := m.MergeFields["FNAME"].(string)
	last, _ := m.MergeFields["LNAME"].(string)
	switch {
	case first == "":
		return last
	case last == "":
		return first
	}
	return first + " " + last
}

// MemberRequest são os campos enviados no upsert de um membro.
type MemberRequest struct {
	EmailAddress string         `json:"email_address"`
	Status       string         `json:"status"`
	MergeFields  map[string]any `json:"merge_fields,omitempty"`
}

type memberPage struct {
	Members    []Member `json:"members"`
	TotalItems int      `json:"total_items"`
}
