package dto

type ModelResponse struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ModelListResponse struct {
	Models   []ModelResponse `json:"models"`
	Selected string          `json:"selected"`
}

type SelectModelRequest struct {
	Model string `json:"model" validate:"required"`
}
