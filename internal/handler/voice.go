package handler

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"aiden/internal/voice"
)

// VoiceAdaptation applies spoken feedback to the user's voice profile and
// stores the result as the new current profile.
func (h *Handlers) VoiceAdaptation(input string) Output {
	const title = "🎙️ Voice Settings"
	if h.d.Voices == nil {
		return Output{Title: title, Body: "As funcionalidades de adaptação de voz não estão disponíveis no momento."}
	}
	user := h.name()
	current, err := h.d.Voices.Current(user)
	if err != nil {
		log.WithError(err).Warn("⚠️ failed to load voice profile, using defaults")
	}
	adapted, changes := voice.Adapt(current, input, h.d.Now())
	if len(changes) == 0 {
		return Output{Title: title, Body: fmt.Sprintf(
			"Configurações atuais: velocidade=%d, volume=%.1f, tom=%.1f.\n"+
				"Diga, por exemplo, 'fale mais devagar', 'mais rápido', 'mais alto', 'mais baixo', 'voz mais grave' ou 'mais agudo'.",
			current.Rate, current.Volume, current.Pitch)}
	}
	if err := h.d.Voices.Append(user, adapted); err != nil {
		return Output{Title: title, Body: fmt.Sprintf("Erro ao salvar configurações de voz: %v", err)}
	}
	return Output{Title: title, Body: fmt.Sprintf(
		"Configurações de voz adaptadas com base no seu feedback (%s): velocidade=%d, volume=%.1f, tom=%.1f.",
		strings.Join(changes, ", "), adapted.Rate, adapted.Volume, adapted.Pitch)}
}
