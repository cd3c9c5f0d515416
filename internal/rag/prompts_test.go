package rag

import (
	"strings"
	"testing"

	"github.com/akolanti/newschat/internal/domain/commonModels"
)

func TestFormatHistory(t *testing.T) {
	got := formatHistory([]commonModels.ChatTurn{
		{},
		{Question: "q1", Answer: "a1"},
		{Question: "q2", Answer: "a2"},
	})
	want := "\nHuman: q1\nAssistant: a1\nHuman: q2\nAssistant: a2"
	if got != want {
		t.Errorf("formatHistory = %q, want %q", got, want)
	}
	if formatHistory(nil) != "" {
		t.Error("empty history should format to empty string")
	}
}

func TestCondensePrompt(t *testing.T) {
	out, err := condensePrompt.Format(map[string]any{
		"chat_history": "\nHuman: q1\nAssistant: a1",
		"question":     "and then?",
	})
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if !strings.Contains(out, "Follow Up Input: and then?") || !strings.HasSuffix(out, "Standalone question:") {
		t.Errorf("condense prompt = %q", out)
	}
}

func TestSourceNames(t *testing.T) {
	got := sourceNames([]commonModels.RetrievedChunk{
		{DocName: "seed-1", PageNum: 1},
		{DocName: "report.pdf", PageNum: 3},
		{DocName: "seed-1", PageNum: 1},
		{DocName: ""},
	})
	if strings.Join(got, "|") != "seed-1|report.pdf p.3" {
		t.Errorf("sourceNames = %v", got)
	}
}
