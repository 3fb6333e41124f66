package requestresponse

// RegisterRequest : тело запроса регистрации
type RegisterRequest struct {
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"P@ssw0rd123"`
	FullName string `json:"full_name" example:"Иван Петров"`
}

// LoginRequest : тело запроса на выдачу токенов, принимается и как form (username/password)
type LoginRequest struct {
	Username string `json:"username" example:"user@example.com"`
	Password string `json:"password" example:"P@ssw0rd123"`
}

// RefreshTokenRequest : запрос на обновление пары токенов
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// LogoutRequest : refresh_token может отсутствовать
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// StatusResponse : ответ на logout
type StatusResponse struct {
	Status  string `json:"status" example:"success"`
	Message string `json:"message" example:"Logout successful"`
}

// ErrorResponse : тело ошибки, которое пишет util.HandleError
type ErrorResponse struct {
	Error   string `json:"error" example:"Bad Request"`
	Message string `json:"message" example:"некорректный JSON"`
	Code    int    `json:"code" example:"400"`
}

// HealthResponse : ответ /health
type HealthResponse struct {
	Status  string `json:"status" example:"healthy"`
	Service string `json:"service" example:"auth-service"`
}
