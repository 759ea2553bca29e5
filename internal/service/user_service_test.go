package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/reviewbot-api/internal/domain/entity"
)

func TestUserService_List_BoundsPagination(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("List", mock.Anything, 20, 0).Return([]entity.User{}, nil).Once()
	mockRepo.On("List", mock.Anything, 100, 0).Return([]entity.User{}, nil).Once()

	svc, err := NewUserService(mockRepo)
	require.NoError(t, err)

	// Missing or negative values fall back to the defaults; an oversized
	// limit is clamped to the page ceiling rather than reset.
	_, err = svc.List(context.Background(), 0, -3)
	require.NoError(t, err)
	_, err = svc.List(context.Background(), 500, 0)
	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}
