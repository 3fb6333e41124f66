package requestresponse

// UpdateProfileRequest : поля, которых нет в запросе, не меняются
type UpdateProfileRequest struct {
	FullName *string `json:"full_name,omitempty" example:"Иван Петров"`
	Email    *string `json:"email,omitempty" example:"new@example.com"`
}

// UpdateRolesRequest : permissions необязательно, при отсутствии не меняются
type UpdateRolesRequest struct {
	Roles       []string `json:"roles" example:"user,admin"`
	Permissions []string `json:"permissions,omitempty" example:"read:own,write:own"`
}

// CreateWebhookRequest : если secret пустой, он будет сгенерирован
type CreateWebhookRequest struct {
	URL    string   `json:"url" example:"https://example.com/hooks/auth"`
	Events []string `json:"events" example:"user.created,user.login"`
	Secret string   `json:"secret,omitempty" example:"s3cr3t"`
}

// CreateWebhookResponse : секрет возвращается только при создании
type CreateWebhookResponse struct {
	ID     string   `json:"id" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
	URL    string   `json:"url" example:"https://example.com/hooks/auth"`
	Events []string `json:"events" example:"user.created"`
	Secret string   `json:"secret" example:"9f86d081884c7d659a2feaa0c55ad015"`
}
