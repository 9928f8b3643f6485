package customers

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestLoader(t *testing.T) {
	feature := NewFeature(newTestService(nil, nil), true)

	assert.Equal(t, "customers", feature.Name())
	assert.True(t, feature.IsEnabled())

	app := fiber.New()
	err := feature.Load(app)
	assert.NoError(t, err)

	assert.False(t, NewFeature(newTestService(nil, nil), false).IsEnabled())
}
