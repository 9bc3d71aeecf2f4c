package checkr

// CandidateRequest são os campos enviados na criação de um candidato.
type CandidateRequest struct {
	Email      string `json:"email"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	Phone      string `json:"phone,omitempty"`
	WorkopenID string `json:"custom_id,omitempty"`
}

// Candidate é o candidato como retornado pela API.
type Candidate struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Phone     string   `json:"phone"`
	CreatedAt string   `json:"created_at"`
	ReportIDs []string `json:"report_ids"`
}

type candidatePage struct {
	Data  []Candidate `json:"data"`
	Count int         `json:"count"`
}

// Invitation é o convite de screening enviado ao candidato.
type Invitation struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	CandidateID string `json:"candidate_id"`
	Package     string `json:"package"`
	InviteURL   string `json:"invitation_url"`
	CreatedAt   string `json:"created_at"`
}

// Report é o resultado (parcial ou final) de um background check.
type Report struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Result      string `json:"result"`
	Adjudication string `json:"adjudication"`
	CandidateID string `json:"candidate_id"`
	Package     string `json:"package"`
	CreatedAt   string `json:"created_at"`
	CompletedAt string `json:"completed_at"`
}

// Terminal informa se o report não vai mais mudar de estado.
func (r Report) Terminal() bool {
	switch r.Status {
	case "complete", "disputed", "canceled":
		return true
	}
	return false
}
