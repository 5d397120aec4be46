package cliui

import "github.com/charmbracelet/lipgloss"

// Shared text styles for command output.
var (
	KeyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	ValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	DimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	HashStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	ErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	StepStyle  = DimStyle

	UserPrompt      = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("you> ")
	AssistantPrompt = DimStyle.Render("assistant> ")

	SuccessMark = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Render("✓")
	FailMark    = ErrorStyle.Render("✗")

	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
)
