package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil project service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{Forms: &mockFormService{}})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingProjectService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Projects: &mockProjectService{},
			Forms:    &mockFormService{},
			Bulk:     &mockBulkDispatcher{},
		})
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("nil project service returns error", func(t *testing.T) {
		ports := &Ports{}
		assert.ErrorIs(t, ports.Validate(), ErrMissingProjectService)
	})

	t.Run("nil form service returns error", func(t *testing.T) {
		ports := &Ports{Projects: &mockProjectService{}}
		assert.ErrorIs(t, ports.Validate(), ErrMissingFormService)
	})

	t.Run("bulk is optional", func(t *testing.T) {
		ports := &Ports{Projects: &mockProjectService{}, Forms: &mockFormService{}}
		assert.NoError(t, ports.Validate())
	})
}
