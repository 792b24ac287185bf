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
			args:    []string{"-a", ":4000", "-x", "1"},
			allowed: []string{"-a"},
			want:    []string{"-a", ":4000"},
		},
		{
			name:    "equals form",
			args:    []string{"-d=postgres://db", "-a", ":4000"},
			allowed: []string{"-d"},
			want:    []string{"-d=postgres://db"},
		},
		{
			name:    "unknown flags and positionals dropped",
			args:    []string{"list", "-x", "1", "--y=2"},
			allowed: []string{"-c"},
			want:    []string{},
		},
		{
			name:    "trailing flag without value",
			args:    []string{"-c"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "dash token is not a value",
			args:    []string{"-c", "-config=alt.json"},
			allowed: []string{"-c", "-config"},
			want:    []string{"-c", "-config=alt.json"},
		},
		{
			name:    "repeated flag keeps order",
			args:    []string{"-s", "one", "-a", ":1", "-s", "two"},
			allowed: []string{"-s", "-a"},
			want:    []string{"-s", "one", "-a", ":1", "-s", "two"},
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

func TestConfigPath(t *testing.T) {
	t.Run("short flag", func(t *testing.T) {
		t.Setenv(ConfigPathEnv, "")
		assert.Equal(t, "/etc/usuarios.json", ConfigPath([]string{"-a", ":4000", "-c", "/etc/usuarios.json"}))
	})

	t.Run("long flag, last wins", func(t *testing.T) {
		t.Setenv(ConfigPathEnv, "")
		assert.Equal(t, "/b.json", ConfigPath([]string{"-c", "/a.json", "-config", "/b.json"}))
	})

	t.Run("env fallback", func(t *testing.T) {
		t.Setenv(ConfigPathEnv, "/env.json")
		assert.Equal(t, "/env.json", ConfigPath([]string{"-x", "1"}))
	})

	t.Run("flag beats env", func(t *testing.T) {
		t.Setenv(ConfigPathEnv, "/env.json")
		assert.Equal(t, "/flag.json", ConfigPath([]string{"-config=/flag.json"}))
	})

	t.Run("nothing set", func(t *testing.T) {
		t.Setenv(ConfigPathEnv, "")
		assert.Empty(t, ConfigPath(nil))
	})
}

func TestPositional(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"none", nil, []string{}},
		{"command only", []string{"list"}, []string{"list"}},
		{"flags around command", []string{"-d", "postgres://db", "set-password", "-l=debug", "id-1"}, []string{"set-password", "id-1"}},
		{"double dash", []string{"-l", "debug", "--", "confirm", "-weird-token"}, []string{"confirm", "-weird-token"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Positional(tt.args))
		})
	}
}
