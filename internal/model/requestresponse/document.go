package requestresponse

import "auth-fabric/internal/model"

// CreateDocumentRequest : file_name задаётся, если к документу будет приложен файл
type CreateDocumentRequest struct {
	Title    string `json:"title" example:"Договор"`
	Content  string `json:"content" example:"Текст документа"`
	FileName string `json:"file_name,omitempty" example:"contract.pdf"`
}

// CreateDocumentResponse : upload_url есть только при file_name и включённом S3
type CreateDocumentResponse struct {
	Document  *model.Document `json:"document"`
	UploadURL string          `json:"upload_url,omitempty" example:"https://s3.example.com/documents/..."`
}

type UpdateDocumentRequest struct {
	Title   *string `json:"title,omitempty" example:"Новый заголовок"`
	Content *string `json:"content,omitempty" example:"Новый текст"`
}

// GetDocumentResponse : download_url есть только при наличии вложения
type GetDocumentResponse struct {
	Document    *model.Document `json:"document"`
	DownloadURL string          `json:"download_url,omitempty" example:"https://s3.example.com/documents/..."`
}

type ListDocumentsResponse struct {
	Documents []*model.Document `json:"documents"`
}

type AuditTrailResponse struct {
	Entries []*model.AuditEntry `json:"entries"`
}
