package flagx

import (
	"os"
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
			args:    []string{"-a", "127.0.0.1:50051", "-x", "1"},
			allowed: []string{"-a"},
			want:    []string{"-a", "127.0.0.1:50051"},
		},
		{
			name:    "equals form",
			args:    []string{"-b=avatars", "-x=1"},
			allowed: []string{"-b"},
			want:    []string{"-b=avatars"},
		},
		{
			name:    "order preserved",
			args:    []string{"-o=http://a", "-b", "files", "-z"},
			allowed: []string{"-b", "-o"},
			want:    []string{"-o=http://a", "-b", "files"},
		},
		{
			name:    "unknown only",
			args:    []string{"-x", "1", "positional"},
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
			name:    "next token is a flag",
			args:    []string{"-c", "-a"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "value containing equals",
			args:    []string{"-e=http://host/?a=b"},
			allowed: []string{"-e"},
			want:    []string{"-e=http://host/?a=b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigPath(t *testing.T) {
	assert.Equal(t, "a.json", ConfigPath([]string{"-a", "x", "-c", "a.json"}))
	assert.Equal(t, "b.json", ConfigPath([]string{"-config=b.json"}))
	assert.Equal(t, "", ConfigPath([]string{"-a", "x"}))
}

func TestJsonConfigFlags_ReadsProcessArgs(t *testing.T) {
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })

	os.Args = []string{"bin", "-c", "vault.json"}
	assert.Equal(t, "vault.json", JsonConfigFlags())

	os.Args = []string{"bin"}
	assert.Equal(t, "", JsonConfigFlags())
}
