package domain

// ErrorResponse é a estrutura padronizada para respostas de erro na API.
// @Description Estrutura padronizada para respostas de erro na API.
type ErrorResponse struct {
	Code     int    `json:"code" example:"401"`
	Category string `json:"category" example:"INVALID_CREDENTIALS"`
	Message  string `json:"message" example:"Invalid credentials."`
}

// SessionResponse é devolvida pelo login JSON.
// @Description Token de sessão emitido e destino da role resolvida.
type SessionResponse struct {
	Token    string `json:"token" example:"eyJhbGciOiJIUzI1NiIs..."`
	Role     Role   `json:"role" example:"HOTEL_OWNER"`
	Redirect string `json:"redirect" example:"/hotel-owner/dashboard"`
}
