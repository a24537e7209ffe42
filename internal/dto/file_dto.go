package dto

type UploadFile struct {
	Name        string
	ContentType string
	Data        []byte
}

type UploadFileResponse struct {
	Url  string `json:"url"`
	Name string `json:"name"`
	Type string `json:"type"`
}
