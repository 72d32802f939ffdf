package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleCanOverloadWith(t *testing.T) {
	tests := []struct {
		name string
		a, b Role
		want bool
	}{
		{"functions overload with functions", RoleFunction, RoleFunction, true},
		{"data types overload with data types", RoleDataType, RoleDataType, true},
		{"constructors overload with constructors", RoleConstructor, RoleConstructor, true},
		{"constructor fields overload with themselves", RoleConstructorField, RoleConstructorField, true},
		{"collection fields overload with themselves", RoleCollectionField, RoleCollectionField, true},
		{"variables never overload", RoleVariable, RoleVariable, false},
		{"different roles never overload", RoleFunction, RoleVariable, false},
		{"parameters never overload", RoleParameter, RoleParameter, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.CanOverloadWith(tt.b))
		})
	}
}

func TestRoleIsFieldRole(t *testing.T) {
	assert.True(t, RoleConstructorField.IsFieldRole())
	assert.True(t, RoleCollectionField.IsFieldRole())
	assert.False(t, RoleVariable.IsFieldRole())
	assert.False(t, RoleFunction.IsFieldRole())
}

func TestRoleString(t *testing.T) {
	assert.Equal(t, "variable", RoleVariable.String())
	assert.Equal(t, "moduleName", RoleModuleName.String())
	assert.Equal(t, "unknown", Role(999).String())
}
