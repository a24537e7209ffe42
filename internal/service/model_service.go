package service

import (
	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/pkg/apperror"
	"ai-chatbot-be/pkg/llm/factory"
)

type IModelService interface {
	List(selected string) *dto.ModelListResponse
	// Select validates a model id before it is stored in the selection cookie.
	Select(modelId string) error
	// Selected returns the cookie value when it names a registered model, else the default.
	Selected(cookieValue string) string
}

type modelService struct {
	registry *factory.Registry
}

func NewModelService(registry *factory.Registry) IModelService {
	return &modelService{registry: registry}
}

func (s *modelService) List(selected string) *dto.ModelListResponse {
	models := s.registry.Models()
	res := &dto.ModelListResponse{
		Models:   make([]dto.ModelResponse, 0, len(models)),
		Selected: s.Selected(selected),
	}
	for _, m := range models {
		res.Models = append(res.Models, dto.ModelResponse{
			Id:          m.Id,
			Name:        m.Name,
			Description: m.Description,
		})
	}
	return res
}

func (s *modelService) Select(modelId string) error {
	if !s.isSelectable(modelId) {
		return apperror.Validation("Unknown chat model")
	}
	return nil
}

func (s *modelService) Selected(cookieValue string) string {
	if cookieValue != "" && s.isSelectable(cookieValue) {
		return cookieValue
	}
	return s.registry.Default()
}

func (s *modelService) isSelectable(modelId string) bool {
	for _, m := range s.registry.Models() {
		if m.Id == modelId {
			return true
		}
	}
	return false
}
