package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate value",
			args:    []string{"-d", "postgres://db", "-a", ":8080"},
			allowed: []string{"-d"},
			want:    []string{"-d", "postgres://db"},
		},
		{
			name:    "equals form",
			args:    []string{"-jwt-expire=15m", "-a", ":8080"},
			allowed: []string{"-jwt-expire"},
			want:    []string{"-jwt-expire=15m"},
		},
		{
			name:    "unknown flags and positionals dropped",
			args:    []string{"-x", "1", "--y=2", "serve"},
			allowed: []string{"-c"},
			want:    []string{},
		},
		{
			name:    "flag at end without value",
			args:    []string{"-c"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "next dash token is not a value",
			args:    []string{"-c", "-config=alt.json"},
			allowed: []string{"-c", "-config"},
			want:    []string{"-c", "-config=alt.json"},
		},
		{
			name:    "equals value that looks like a flag",
			args:    []string{"-config=--odd.json"},
			allowed: []string{"-config"},
			want:    []string{"-config=--odd.json"},
		},
		{
			name:    "order and repetition preserved",
			args:    []string{"-a", ":1", "-c", "one.json", "-a", ":2"},
			allowed: []string{"-a", "-c"},
			want:    []string{"-a", ":1", "-c", "one.json", "-a", ":2"},
		},
		{
			name:    "empty",
			args:    nil,
			allowed: []string{"-c"},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigFile(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"short", []string{"-c", "/etc/smarthealth.json"}, "/etc/smarthealth.json"},
		{"long", []string{"-config", "/tmp/a.json"}, "/tmp/a.json"},
		{"double dash equals", []string{"--config=/tmp/b.json"}, "/tmp/b.json"},
		{"mixed with other flags", []string{"-a", ":9000", "-c", "x.json", "-d", "db"}, "x.json"},
		{"last wins", []string{"-c", "1.json", "-config", "2.json"}, "2.json"},
		{"absent", []string{"-a", ":9000"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConfigFile(tt.args))
		})
	}
}
