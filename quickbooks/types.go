package quickbooks

// Purchase é um gasto registrado (cartão, cheque ou dinheiro).
type Purchase struct {
	ID          string  `json:"Id"`
	TxnDate     string  `json:"TxnDate"`
	TotalAmt    float64 `json:"TotalAmt"`
	PaymentType string  `json:"PaymentType"`
	EntityRef   *Ref    `json:"EntityRef"`
	AccountRef  *Ref    `json:"AccountRef"`
	Memo        string  `json:"PrivateNote"`
}

// Item é um item do catálogo (produtos e serviços).
type Item struct {
	ID          string  `json:"Id"`
	Name        string  `json:"Name"`
	Type        string  `json:"Type"`
	UnitPrice   float64 `json:"UnitPrice"`
	Active      bool    `json:"Active"`
	Description string  `json:"Description"`
}

// Attachable é um anexo (recibo, nota) vinculado a outra entidade.
type Attachable struct {
	ID              string `json:"Id"`
	FileName        string `json:"FileName"`
	ContentType     string `json:"ContentType"`
	Size            int64  `json:"Size"`
	TempDownloadURI string `json:"TempDownloadUri"`
	Note            string `json:"Note"`
}

// Ref é a referência nomeada usada em todo o modelo da API.
type Ref struct {
	Value string `json:"value"`
	Name  string `json:"name"`
}

// CompanyInfo são os dados cadastrais do realm.
type CompanyInfo struct {
	ID          string `json:"Id"`
	CompanyName string `json:"CompanyName"`
	LegalName   string `json:"LegalName"`
	Country     string `json:"Country"`
}

type queryResponse struct {
	QueryResponse struct {
		Purchase      []Purchase   `json:"Purchase"`
		Item          []Item       `json:"Item"`
		Attachable    []Attachable `json:"Attachable"`
		StartPosition int          `json:"startPosition"`
		MaxResults    int          `json:"maxResults"`
	} `json:"QueryResponse"`
}
