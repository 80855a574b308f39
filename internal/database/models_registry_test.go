package database

import (
	"testing"

	"warbler/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestPersistentModels_Order(t *testing.T) {
	got := PersistentModels()
	if assert.Len(t, got, 4) {
		assert.IsType(t, &models.User{}, got[0])
		assert.IsType(t, &models.Message{}, got[1])
		assert.IsType(t, &models.Follow{}, got[2])
		assert.IsType(t, &models.Like{}, got[3])
	}
}
