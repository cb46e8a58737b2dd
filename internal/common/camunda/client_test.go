package camunda

import (
	stderrors "errors"
	"testing"

	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/errors"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryableZeebeError(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"rpc error: code = Unavailable desc = connection refused", true},
		{"context deadline exceeded", true},
		{"rpc error: code = NotFound desc = job not found", false},
		{"rpc error: code = PermissionDenied", false},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableZeebeError(stderrors.New(tt.msg)))
		})
	}
}

func TestMapZeebeError(t *testing.T) {
	err := mapZeebeError(stderrors.New("context deadline exceeded"), "topology", 2)
	assert.True(t, stderrors.Is(err, errors.ErrTimeout))
	assert.Contains(t, err.(*errors.StandardError).Details, "after 3 attempts")

	err = mapZeebeError(stderrors.New("connection refused"), "topology", 0)
	std, ok := errors.AsStandardError(err)
	assert.True(t, ok)
	assert.Equal(t, errors.ErrCodeExternalService, std.Code)

	err = mapZeebeError(stderrors.New("rpc error: code = Unauthenticated"), "topology", 0)
	std, _ = errors.AsStandardError(err)
	assert.Equal(t, errors.ErrCodeConfiguration, std.Code)
}
