// Package intent maps free-form user text to a capability category using
// ordered keyword tables. It never fails and never calls out.
package intent

import (
	"strings"
	"unicode"
)

type Category int

const (
	Fallback Category = iota
	Conversational
	Diagnostics
	FileManagement
	TimeInfo
	SystemInfo
	ProcessInfo
	Performance
	PowerManagement
	Help
	Shutdown
	WebSearch
	VoiceAdaptation
)

var labels = map[Category]string{
	Fallback:        "fallback",
	Conversational:  "conversational",
	Diagnostics:     "diagnostics",
	FileManagement:  "file_management",
	TimeInfo:        "time_info",
	SystemInfo:      "system_info",
	ProcessInfo:     "process_info",
	Performance:     "performance",
	PowerManagement: "power_management",
	Help:            "help",
	Shutdown:        "shutdown",
	WebSearch:       "web_search",
	VoiceAdaptation: "voice_adaptation",
}

// Label is the stable identifier used in logs and session files.
func (c Category) Label() string {
	if l, ok := labels[c]; ok {
		return l
	}
	return "unknown"
}

func (c Category) String() string { return c.Label() }

type rule struct {
	category Category
	keywords []string
}

// rules are scanned in order; the first category with a matching keyword wins.
var rules = []rule{
	{VoiceAdaptation, []string{
		"voz", "voice", "falar", "fale", "speak", "volume", "velocidade", "grave", "agudo",
		"devagar", "mais rápido", "mais rapido", "slower", "faster", "louder", "quieter", "pitch",
	}},
	{Shutdown, []string{
		"encerrar sessão", "encerrar sessao", "desligar assistente", "shut down assistant",
		"end session", "até logo", "ate logo", "see you",
	}},
	{Diagnostics, []string{"status", "sistema", "diagnóstico", "diagnostico", "diagnostic", "health"}},
	{FileManagement, []string{"arquivo", "file", "diretório", "diretorio", "directory", "pasta", "folder"}},
	{TimeInfo, []string{"tempo", "time", "data", "date", "horário", "horario", "que horas", "schedule"}},
	{SystemInfo, []string{"informação", "informacao", "information", "sobre", "about", "specs"}},
	{ProcessInfo, []string{"processo", "process", "task", "tarefa"}},
	{Performance, []string{"memória", "memoria", "memory", "performance", "desempenho"}},
	{PowerManagement, []string{"desligar", "shutdown", "reiniciar", "restart", "reboot"}},
	{Help, []string{"ajuda", "help", "comandos", "commands"}},
	{WebSearch, searchTriggers},
}

var searchTriggers = []string{"pesquisar", "pesquise", "procurar", "procure", "buscar", "busque", "search", "research"}

var exitWords = map[string]bool{
	"sair": true, "exit": true, "quit": true, "goodbye": true, "tchau": true,
}

// Classify returns the first matching category. Unmatched text is
// Conversational when an AI model is available, otherwise Fallback.
func Classify(text string, aiAvailable bool) Category {
	lower := strings.ToLower(text)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if matches(lower, kw) {
				return r.category
			}
		}
	}
	if aiAvailable {
		return Conversational
	}
	return Fallback
}

// matches reports whether kw occurs anywhere in the lower-cased text.
func matches(lower, kw string) bool {
	return strings.Contains(lower, kw)
}

// IsExit reports whether the input ends the session: empty input or any exit word.
func IsExit(text string) bool {
	words := Words(strings.ToLower(text))
	if len(words) == 0 {
		return true
	}
	for _, w := range words {
		if exitWords[w] {
			return true
		}
	}
	return false
}

// ExtractQuery strips every search trigger from text. Text is tokenized the
// same way as Words, so triggers glued to punctuation ("search:cats") go too.
func ExtractQuery(text string) string {
	var kept []string
	for _, tok := range tokenize(text) {
		if !isTrigger(strings.ToLower(tok)) {
			kept = append(kept, tok)
		}
	}
	return strings.Join(kept, " ")
}

func isTrigger(w string) bool {
	for _, t := range searchTriggers {
		if w == t {
			return true
		}
	}
	return false
}

// tokenize splits like Words but keeps the original case.
func tokenize(text string) []string {
	return strings.FieldsFunc(text, isSeparator)
}

// Words lower-cases and splits on anything that is not a letter or digit.
func Words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), isSeparator)
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

type Language string

const (
	Portuguese Language = "pt"
	English    Language = "en"
)

var ptMarkers = map[string]bool{
	"o": true, "a": true, "os": true, "as": true, "um": true, "uma": true, "de": true, "do": true,
	"da": true, "que": true, "não": true, "nao": true, "você": true, "voce": true, "como": true,
	"para": true, "por": true, "mais": true, "eu": true, "meu": true, "minha": true, "é": true,
	"olá": true, "oi": true, "obrigado": true, "quando": true, "onde": true, "qual": true,
}

var enMarkers = map[string]bool{
	"the": true, "is": true, "are": true, "you": true, "what": true, "how": true, "why": true,
	"where": true, "when": true, "please": true, "my": true, "i": true, "and": true, "of": true,
	"hello": true, "hi": true, "thanks": true, "can": true, "do": true, "to": true,
}

// DetectLanguage guesses Portuguese vs English from diacritics and marker
// words. Ties resolve to fallback.
func DetectLanguage(text string, fallback Language) Language {
	pt, en := 0, 0
	for _, r := range text {
		if strings.ContainsRune("ãõçáéíóúâêô", unicode.ToLower(r)) {
			pt += 2
			break
		}
	}
	for _, w := range Words(text) {
		if ptMarkers[w] {
			pt++
		}
		if enMarkers[w] {
			en++
		}
	}
	switch {
	case pt > en:
		return Portuguese
	case en > pt:
		return English
	default:
		return fallback
	}
}
