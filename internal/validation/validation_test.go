package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid email",
			email:   "alice@example.com",
			wantErr: false,
		},
		{
			name:    "valid email - subdomain",
			email:   "alice@mail.example.co.uk",
			wantErr: false,
		},
		{
			name:    "valid email - plus tag",
			email:   "alice+tasks@example.com",
			wantErr: false,
		},
		{
			name:    "valid email - dots in local part",
			email:   "alice.smith@example.com",
			wantErr: false,
		},
		{
			name:    "invalid - empty",
			email:   "",
			wantErr: true,
			errMsg:  "email cannot be empty",
		},
		{
			name:    "invalid - no at sign",
			email:   "alice.example.com",
			wantErr: true,
			errMsg:  "email format is invalid",
		},
		{
			name:    "invalid - no domain",
			email:   "alice@",
			wantErr: true,
			errMsg:  "email format is invalid",
		},
		{
			name:    "invalid - no tld",
			email:   "alice@example",
			wantErr: true,
			errMsg:  "email format is invalid",
		},
		{
			name:    "invalid - spaces",
			email:   "alice smith@example.com",
			wantErr: true,
			errMsg:  "email format is invalid",
		},
		{
			name:    "invalid - too long",
			email:   strings.Repeat("a", 250) + "@example.com",
			wantErr: true,
			errMsg:  "must not exceed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "valid password",
			password: "secret123",
			wantErr:  false,
		},
		{
			name:     "valid password - exactly min length",
			password: "123456",
			wantErr:  false,
		},
		{
			name:     "invalid - empty",
			password: "",
			wantErr:  true,
		},
		{
			name:     "invalid - too short",
			password: "12345",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateTitle(t *testing.T) {
	assert.NoError(t, ValidateTitle("x"))
	assert.NoError(t, ValidateTitle("Buy milk"))

	err := ValidateTitle("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title is required")

	err = ValidateTitle(strings.Repeat("a", MaxTitleLen+1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not exceed")
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName(""), "name is optional")
	assert.NoError(t, ValidateName("Alice"))
	assert.Error(t, ValidateName("A"))
	assert.Error(t, ValidateName(strings.Repeat("a", MaxNameLen+1)))
}
