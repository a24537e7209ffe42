package service

import (
	"testing"

	"ai-chatbot-be/internal/constant"
	"ai-chatbot-be/internal/pkg/apperror"

	"github.com/stretchr/testify/assert"
)

func TestModelService(t *testing.T) {
	svc := NewModelService(newRegistry(&fakeProvider{}, &fakeProvider{}))

	list := svc.List("")
	assert.Equal(t, constant.DefaultChatModel, list.Selected)
	ids := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		ids = append(ids, m.Id)
	}
	assert.Equal(t, []string{constant.DefaultChatModel, constant.ReasoningModel}, ids)

	assert.Equal(t, constant.ReasoningModel, svc.List(constant.ReasoningModel).Selected)
	assert.Equal(t, constant.DefaultChatModel, svc.Selected("retired-model"))

	assert.NoError(t, svc.Select(constant.ReasoningModel))
	assert.True(t, apperror.Is(svc.Select("gpt-42"), apperror.KindValidation))
	assert.True(t, apperror.Is(svc.Select(constant.TitleModel), apperror.KindValidation), "internal models are not selectable")
}
