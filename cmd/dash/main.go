package main

import (
	"log"
	"os"

	"crypto-pulse/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
)

var (
	loadEnvFunc = godotenv.Load
	runProgram  = func(p *tea.Program) error { _, err := p.Run(); return err }
	newProgram  = tea.NewProgram
	exitFunc    = os.Exit
)

func main() {
	loadEnvFunc()

	apiURL := os.Getenv("PULSE_API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080"
	}

	model := tui.NewModel(tui.NewAPIClient(apiURL))
	p := newProgram(model, tea.WithAltScreen())

	if err := runProgram(p); err != nil {
		log.Printf("dashboard error: %v", err)
		exitFunc(1)
	}
}
