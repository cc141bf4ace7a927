package eagle

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindFromStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorKind
	}{
		{500, KindUnavailable},
		{502, KindUnavailable},
		{503, KindUnavailable},
		{429, KindUnavailable},
		{404, KindNotFound},
		{410, KindNotFound},
		{401, KindPermission},
		{403, KindPermission},
		{400, KindBadRequest},
		{422, KindBadRequest},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, kindFromStatus(tt.status), "status %d", tt.status)
	}
}

func TestErrorPredicates(t *testing.T) {
	unavailable := &StoreError{Kind: KindUnavailable, Status: 503, Message: "down"}
	notFound := &StoreError{Kind: KindNotFound, Status: 404, Message: "gone"}
	permission := &StoreError{Kind: KindPermission, Status: 403, Message: "no"}

	assert.True(t, IsUnavailable(unavailable))
	assert.False(t, IsUnavailable(notFound))
	assert.True(t, IsNotFound(notFound))
	assert.True(t, IsPermission(permission))
	assert.False(t, IsNotFound(errors.New("plain")))
	assert.False(t, IsUnavailable(nil))
}

func TestErrorPredicatesSeeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("move to trash x: %w", &StoreError{Kind: KindNotFound, Status: 404, Message: "gone"})
	assert.True(t, IsNotFound(err))
	assert.False(t, IsUnavailable(err))
}

func TestStoreErrorMessage(t *testing.T) {
	withStatus := &StoreError{Kind: KindUnavailable, Status: 503, Message: "down"}
	assert.Equal(t, "store error (unavailable, HTTP 503): down", withStatus.Error())

	transport := &StoreError{Kind: KindUnavailable, Message: "connection refused"}
	assert.Equal(t, "store error (unavailable): connection refused", transport.Error())
}
