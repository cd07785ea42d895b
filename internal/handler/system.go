package handler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"aiden/internal/storage"
	"aiden/internal/sysinfo"
)

func logStoreError(op string, err error) {
	log.WithError(err).Warnf("⚠️ document store: %s failed", op)
}

// Diagnostics reports disk, memory and process count. Each probe fails on its own.
func (h *Handlers) Diagnostics(ctx context.Context, input string) Output {
	var b strings.Builder
	fmt.Fprintf(&b, "Running comprehensive diagnostics, %s...\n\n", h.name())

	if h.d.Probe == nil {
		b.WriteString("📊 Disk Usage: unavailable\n🧠 Memory Status: unavailable\n⚙️  Active Processes: unavailable\n")
	} else {
		if out, err := h.d.Probe.Disk(ctx); err == nil {
			b.WriteString("📊 Disk Usage Analysis:\n" + strings.TrimRight(out, "\n") + "\n\n")
		} else {
			b.WriteString("📊 Disk Usage: unavailable\n\n")
		}
		if out, err := h.d.Probe.Memory(ctx); err == nil {
			b.WriteString("🧠 Memory Status:\n" + strings.TrimRight(out, "\n") + "\n\n")
		} else {
			b.WriteString("🧠 Memory Status: unavailable\n\n")
		}
		if n, err := h.d.Probe.ProcessCount(ctx); err == nil {
			fmt.Fprintf(&b, "⚙️  Active Processes: %d\n", n)
		} else {
			b.WriteString("⚙️  Active Processes: unavailable\n")
		}
	}
	b.WriteString("\nDiagnostics complete.")

	body := b.String()
	h.persist(ctx, storage.Record{Query: input, Result: body, Source: storage.SourceSystem})
	return Output{Title: "🩺 System Diagnostics", Body: body}
}

func (h *Handlers) FileManagement(input string) Output {
	lower := strings.ToLower(input)
	var b strings.Builder
	fmt.Fprintf(&b, "Analyzing file system request, %s...\n\n", h.name())

	switch {
	case strings.Contains(lower, "listar") || strings.Contains(lower, "list"):
		entries, err := os.ReadDir(h.d.WorkDir)
		if err != nil {
			fmt.Fprintf(&b, "Error accessing directory: %v\n", err)
			break
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
		b.WriteString("📁 Current Directory Contents:\n")
		for i, e := range entries {
			if i == 10 {
				break
			}
			marker := "📄"
			if e.IsDir() {
				marker = "📂"
			}
			fmt.Fprintf(&b, "%2d. %s %s\n", i+1, marker, e.Name())
		}
		if len(entries) > 10 {
			fmt.Fprintf(&b, "... and %d more items\n", len(entries)-10)
		}
	case strings.Contains(lower, "tamanho") || strings.Contains(lower, "size"):
		total, err := dirSize(h.d.WorkDir)
		if err != nil {
			fmt.Fprintf(&b, "Unable to calculate directory size: %v\n", err)
			break
		}
		fmt.Fprintf(&b, "📊 Current directory size: %s bytes\n", groupDigits(total))
	default:
		b.WriteString("Available file operations:\n")
		b.WriteString("• 'listar arquivos' - List directory contents\n")
		b.WriteString("• 'tamanho diretório' - Calculate directory size\n")
	}
	return Output{Title: "📁 File Management", Body: b.String()}
}

// dirSize sums regular files directly inside dir.
func dirSize(dir string) (int64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := os.Stat(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		total += info.Size()
	}
	return total, nil
}

func groupDigits(n int64) string {
	s := fmt.Sprint(n)
	var out []byte
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	return string(out)
}

func (h *Handlers) TimeInfo() Output {
	now := h.d.Now()
	zone, offset := now.Zone()
	var b strings.Builder
	fmt.Fprintf(&b, "Time and Schedule Information, %s:\n\n", h.name())
	fmt.Fprintf(&b, "⏰ Current Time: %s\n", now.Format("15:04:05"))
	fmt.Fprintf(&b, "📅 Current Date: %s\n", now.Format("Monday, January 02, 2006"))
	fmt.Fprintf(&b, "⌚ AIDEN Runtime: %s\n", now.Sub(h.d.Started).Round(time.Second))
	fmt.Fprintf(&b, "🌍 Timezone: %s (UTC%+03d:%02d)\n", zone, offset/3600, abs(offset%3600)/60)
	return Output{Title: "⏰ Time & Schedule", Body: b.String()}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (h *Handlers) SystemInfo() Output {
	host := sysinfo.Host()
	var b strings.Builder
	fmt.Fprintf(&b, "System Information Report, %s:\n\n", h.name())
	fmt.Fprintf(&b, "💻 Platform: %s\n", host.Platform)
	fmt.Fprintf(&b, "🖥️ System: %s\n", host.OS)
	fmt.Fprintf(&b, "⚡ Processor: %s, %d CPUs\n", host.Arch, host.CPUs)
	fmt.Fprintf(&b, "🐹 Go Version: %s\n", host.GoVersion)
	fmt.Fprintf(&b, "🌐 Hostname: %s\n", host.Hostname)
	if h.d.Probe != nil {
		if up, err := h.d.Probe.Uptime(); err == nil {
			fmt.Fprintf(&b, "⏱️ Uptime: %s\n", up)
		} else {
			b.WriteString("⏱️ Uptime: unavailable\n")
		}
	}
	if h.d.Flags != nil {
		b.WriteString("\n🤖 AIDEN Capabilities:\n")
		for _, f := range h.d.Flags() {
			icon := "❌"
			if f.Online {
				icon = "✅"
			}
			fmt.Fprintf(&b, "%s %s\n", icon, f.Name)
		}
	}
	return Output{Title: "💻 System Information", Body: b.String()}
}

func (h *Handlers) ProcessInfo(ctx context.Context, input string) Output {
	lower := strings.ToLower(input)
	var b strings.Builder
	fmt.Fprintf(&b, "Process Management System, %s:\n\n", h.name())
	if !strings.Contains(lower, "listar") && !strings.Contains(lower, "list") {
		b.WriteString("Available process operations:\n")
		b.WriteString("• 'listar processos' - Show running processes\n")
		return Output{Title: "🔧 Process Management", Body: b.String()}
	}
	if h.d.Probe == nil {
		b.WriteString("Process information unavailable.\n")
		return Output{Title: "🔧 Process Management", Body: b.String()}
	}
	lines, err := h.d.Probe.TopProcesses(ctx, 5)
	if err != nil {
		fmt.Fprintf(&b, "Process information unavailable: %v\n", err)
		return Output{Title: "🔧 Process Management", Body: b.String()}
	}
	b.WriteString("🔧 Top Processes by CPU Usage:\n")
	for _, l := range lines {
		b.WriteString("   " + l + "\n")
	}
	return Output{Title: "🔧 Process Management", Body: b.String()}
}

func (h *Handlers) Performance(ctx context.Context) Output {
	var b strings.Builder
	fmt.Fprintf(&b, "Performance Analysis, %s:\n\n", h.name())
	if h.d.Probe != nil {
		if avg, err := h.d.Probe.LoadAverage(); err == nil {
			fmt.Fprintf(&b, "📈 Load Average: %.2f %.2f %.2f\n", avg[0], avg[1], avg[2])
		} else {
			b.WriteString("📈 Load Average: unavailable\n")
		}
		if out, err := h.d.Probe.Memory(ctx); err == nil {
			b.WriteString("🧠 Memory:\n" + strings.TrimRight(out, "\n") + "\n")
		} else {
			b.WriteString("🧠 Memory: unavailable\n")
		}
	}
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	fmt.Fprintf(&b, "🤖 AIDEN heap: %.1f MiB (sys %.1f MiB)\n", float64(ms.HeapAlloc)/(1<<20), float64(ms.Sys)/(1<<20))
	fmt.Fprintf(&b, "🧵 Goroutines: %d\n", runtime.NumGoroutine())
	return Output{Title: "⚡ Performance", Body: b.String()}
}

// PowerManagement never runs power commands.
func (h *Handlers) PowerManagement(input string) Output {
	action := "shutdown"
	lower := strings.ToLower(input)
	if strings.Contains(lower, "reiniciar") || strings.Contains(lower, "restart") || strings.Contains(lower, "reboot") {
		action = "restart"
	}
	body := fmt.Sprintf("Power management request received, %s: %s.\n\n"+
		"For safety, I do not execute system %s commands. Please use your operating system controls.\n"+
		"To end this session, say 'sair' or 'exit'.", h.name(), action, action)
	return Output{Title: "🔌 Power Management", Body: body}
}

const helpText = `Available commands:

🩺 'status do sistema' / 'diagnostics' - System diagnostics
📁 'listar arquivos' / 'tamanho diretório' - File management
⏰ 'que horas são' / 'time' - Time and date
💻 'informações sobre você' / 'about' - System information
🔧 'listar processos' - Top processes
⚡ 'memória' / 'performance' - Performance analysis
🌐 'pesquisar <assunto>' / 'search <topic>' - Web research
🎙️ 'fale mais devagar' / 'louder' / 'voz mais grave' - Voice adjustments
❓ 'ajuda' / 'help' - This list
👋 'sair' / 'exit' / 'tchau' - End the session

Anything else goes to the conversational assistant.`

func (h *Handlers) Help() Output {
	return Output{Title: "❓ Help", Body: helpText}
}
