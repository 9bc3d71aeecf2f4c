package gusto

// Company é a empresa dona da conta.
type Company struct {
	ID     FlexID `json:"id"`
	Name   string `json:"name"`
	EIN    string `json:"ein"`
	Status string `json:"company_status"`
}

// Employee é um funcionário na folha.
type Employee struct {
	ID         FlexID `json:"id"`
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_initial"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Department string `json:"department"`
	Terminated bool   `json:"terminated"`
	Jobs       []Job  `json:"jobs"`
}

// Job é um vínculo do funcionário (cargo + data de início).
type Job struct {
	ID         FlexID `json:"id"`
	Title      string `json:"title"`
	HireDate   string `json:"hire_date"`
	Primary    bool   `json:"primary"`
	LocationID FlexID `json:"location_id"`
}

// Termination registra um desligamento.
type Termination struct {
	ID            FlexID `json:"id"`
	EffectiveDate string `json:"effective_date"`
	Active        bool   `json:"active"`
}

// PrimaryJob retorna o vínculo principal, se existir.
func (e Employee) PrimaryJob() *Job {
	for i := range e.Jobs {
		if e.Jobs[i].Primary {
			return &e.Jobs[i]
		}
	}
	if len(e.Jobs) > 0 {
		return &e.Jobs[0]
	}
	return nil
}

// FullName monta o nome completo, ignorando o nome do meio vazio.
func (e Employee) FullName() string {
	if e.MiddleName == "" {
		return e.FirstName + " " + e.LastName
	}
	return e.FirstName + " " + e.MiddleName + " " + e.LastName
}
