package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasAdminRole(t *testing.T) {
	adminRoles := map[string]struct{}{"r-admin": {}, "r-mod": {}}

	assert.True(t, hasAdminRole([]string{"r-member", "r-admin"}, adminRoles))
	assert.True(t, hasAdminRole([]string{"r-mod"}, adminRoles))
	assert.False(t, hasAdminRole([]string{"r-member"}, adminRoles))
	assert.False(t, hasAdminRole(nil, adminRoles))
	assert.False(t, hasAdminRole([]string{"r-admin"}, nil))
}
