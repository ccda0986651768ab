package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/manthysbr/expense-agent/internal/core/domain"
)

// runView is the printable part of a run.
type runView struct {
	RunID       string   `yaml:"run_id"`
	Status      string   `yaml:"status"`
	Answer      string   `yaml:"answer"`
	AbortReason string   `yaml:"abort_reason,omitempty"`
	StepsTaken  int      `yaml:"steps_taken"`
	ToolsUsed   []string `yaml:"tools_used"`
	Duration    string   `yaml:"duration"`
}

func newRunView(rec domain.RunRecord) runView {
	tools := rec.ToolsUsed
	if tools == nil {
		tools = []string{}
	}
	return runView{
		RunID:       string(rec.ID),
		Status:      string(rec.Status),
		Answer:      rec.Answer(),
		AbortReason: rec.AbortReason,
		StepsTaken:  rec.StepsTaken,
		ToolsUsed:   tools,
		Duration:    rec.Duration.Round(time.Millisecond).String(),
	}
}

func renderRun(w io.Writer, format string, rec domain.RunRecord) error {
	view := newRunView(rec)
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(view); err != nil {
			return err
		}
		return enc.Close()
	}

	if rec.Status == domain.StateAborted {
		fmt.Fprintln(w, color.YellowString("agent> %s", view.Answer))
		if view.AbortReason != "" && view.AbortReason != view.Answer {
			fmt.Fprintln(w, color.YellowString("       (%s)", view.AbortReason))
		}
	} else {
		fmt.Fprintln(w, color.GreenString("agent> ")+view.Answer)
	}

	tools := "none"
	if len(view.ToolsUsed) > 0 {
		tools = strings.Join(view.ToolsUsed, ", ")
	}
	fmt.Fprintln(w, color.New(color.Faint).Sprintf("       steps: %d | tools: %s | %s", view.StepsTaken, tools, view.Duration))
	return nil
}

// toolView is the printable form of a registered tool.
type toolView struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	InputSchema map[string]any `yaml:"input_schema"`
}

func renderTools(w io.Writer, format string, tools []*domain.Tool) error {
	views := make([]toolView, 0, len(tools))
	for _, t := range tools {
		var schema map[string]any
		if err := json.Unmarshal([]byte(t.InputSchema.JSON()), &schema); err != nil {
			return fmt.Errorf("tool %s: %w", t.Name, err)
		}
		views = append(views, toolView{Name: t.Name, Description: t.Description, InputSchema: schema})
	}

	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(views); err != nil {
			return err
		}
		return enc.Close()
	}

	for _, v := range views {
		fmt.Fprintf(w, "%s\n  %s\n", color.New(color.Bold).Sprint(v.Name), v.Description)
	}
	return nil
}
