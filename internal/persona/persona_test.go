package persona

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompose_KeepsOutputVerbatim(t *testing.T) {
	p := Default("Ana", "pt-BR")
	out := "📊 Disco: 40%\n⚙️ Processos: 12"
	got := p.Compose("📊 Diagnóstico", out)

	assert.True(t, strings.HasPrefix(got, "Certo, Ana.\n\n"))
	assert.Contains(t, got, "━━ 📊 Diagnóstico ━━\n"+out+"\n")
	assert.True(t, strings.HasSuffix(got, "━━ AIDEN ━━"))
	assert.Equal(t, got, p.Compose("📊 Diagnóstico", out))
}

func TestCompose_English(t *testing.T) {
	got := Default("Sam", "en-US").Compose("", "hello\n")
	assert.Equal(t, "Very well, Sam.\n\nhello\n━━ AIDEN ━━", got)
}

func TestGreeting_TimeOfDay(t *testing.T) {
	p := Default("Ana", "pt-BR")
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, strings.HasPrefix(p.Greeting(day.Add(9*time.Hour)), "Bom dia, Ana"))
	assert.True(t, strings.HasPrefix(p.Greeting(day.Add(15*time.Hour)), "Boa tarde"))
	assert.True(t, strings.HasPrefix(p.Greeting(day.Add(21*time.Hour)), "Boa noite"))

	en := Default("Sam", "en")
	assert.True(t, strings.HasPrefix(en.Greeting(day.Add(9*time.Hour)), "Good morning, Sam"))
}

func TestLoad_Overrides(t *testing.T) {
	dir := t.TempDir()
	yml := filepath.Join(dir, "persona.yaml")
	require.NoError(t, os.WriteFile(yml, []byte("user_name: Tony\nassistant_name: FRIDAY\nlanguage: en\n"), 0o644))
	prompt := filepath.Join(dir, "prompt.txt")
	require.NoError(t, os.WriteFile(prompt, []byte("  Be brief.\n"), 0o644))

	p, err := Load(Default("User", "pt-BR"), yml, prompt)
	require.NoError(t, err)
	assert.Equal(t, "Tony", p.UserName)
	assert.Equal(t, "FRIDAY", p.AssistantName)
	assert.False(t, p.Portuguese())
	assert.Equal(t, "Be brief.", p.SystemPrompt)
}

func TestLoad_MissingFilesKeepBase(t *testing.T) {
	base := Default("Ana", "pt-BR")
	p, err := Load(base, filepath.Join(t.TempDir(), "none.yaml"), "")
	require.NoError(t, err)
	assert.Equal(t, base, p)
}

func TestLoad_InvalidYAML(t *testing.T) {
	yml := filepath.Join(t.TempDir(), "persona.yaml")
	require.NoError(t, os.WriteFile(yml, []byte("user_name: [unclosed"), 0o644))
	_, err := Load(Default("Ana", "pt-BR"), yml, "")
	require.Error(t, err)
}
