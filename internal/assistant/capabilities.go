package assistant

import (
	"fmt"
	"strings"

	"aiden/internal/handler"
)

// Capabilities is computed once at startup and read-only afterwards.
type Capabilities struct {
	TextInterface    bool `json:"text_interface"`
	VoiceRecognition bool `json:"voice_recognition"`
	TextToSpeech     bool `json:"text_to_speech"`
	AdvancedAI       bool `json:"advanced_ai"`
	WebResearch      bool `json:"web_research"`
	DocumentStore    bool `json:"document_store"`
	SystemMonitoring bool `json:"system_monitoring"`
	FileManagement   bool `json:"file_management"`
	Diagnostics      bool `json:"diagnostics"`
}

// Flags lists the capabilities in report order.
func (c Capabilities) Flags() []handler.Flag {
	return []handler.Flag{
		{Name: "Text Interface", Online: c.TextInterface},
		{Name: "Voice Recognition", Online: c.VoiceRecognition},
		{Name: "Text To Speech", Online: c.TextToSpeech},
		{Name: "Advanced AI", Online: c.AdvancedAI},
		{Name: "Web Research", Online: c.WebResearch},
		{Name: "Document Store", Online: c.DocumentStore},
		{Name: "System Monitoring", Online: c.SystemMonitoring},
		{Name: "File Management", Online: c.FileManagement},
		{Name: "Diagnostics", Online: c.Diagnostics},
	}
}

// Report renders the startup status lines.
func (c Capabilities) Report() string {
	var b strings.Builder
	b.WriteString("Capability Status Report:")
	for _, f := range c.Flags() {
		icon, state := "🔴", "Offline"
		if f.Online {
			icon, state = "🟢", "Online"
		}
		fmt.Fprintf(&b, "\n%s %s: %s", icon, f.Name, state)
	}
	return b.String()
}
