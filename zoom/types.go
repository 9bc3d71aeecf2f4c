package zoom

// User é um usuário da conta.
type User struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Type      int    `json:"type"` // 1 basic, 2 licensed, 3 on-prem
	Status    string `json:"status"`
	Dept      string `json:"dept"`
	CreatedAt string `json:"created_at"`
}

// UserInfo são os campos enviados na criação de um usuário.
type UserInfo struct {
	Email     string `json:"email"`
	Type      int    `json:"type"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

type createUserRequest struct {
	Action   string   `json:"action"`
	UserInfo UserInfo `json:"user_info"`
}

type userPage struct {
	PageCount    int    `json:"page_count"`
	PageNumber   int    `json:"page_number"`
	TotalRecords int    `json:"total_records"`
	Users        []User `json:"users"`
}

// Room é uma Zoom Room física.
type Room struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	LocationID string `json:"location_id"`
	Status     string `json:"status"`
}

type roomPage struct {
	Rooms         []Room `json:"rooms"`
	NextPageToken string `json:"next_page_token"`
}
