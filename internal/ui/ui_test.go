package ui

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/pthm/cchecker/internal/results"
)

func TestDetectMode(t *testing.T) {
	tests := []struct {
		format string
		want   OutputMode
	}{
		{"terminal", OutputModePlain},
		{"", OutputModePlain},
		{"json", OutputModeMachine},
		{"sarif", OutputModeMachine},
		{"html", OutputModeMachine},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			u := New(&bytes.Buffer{}, &bytes.Buffer{}, tt.format)
			assert.Equal(t, tt.want, u.Mode)
			assert.False(t, u.Styles.Enabled())
		})
	}
}

func TestPlainStylesAreIdentity(t *testing.T) {
	s := NewStyles(false)
	for _, sev := range results.Severities {
		assert.Equal(t, "MEDIUM", s.Severity(sev).Render("MEDIUM"))
	}
	assert.Equal(t, "WARN:", s.IconWarning)
}

func TestWarn(t *testing.T) {
	var errOut bytes.Buffer
	u := New(&bytes.Buffer{}, &errOut, "terminal")
	u.Warn("analyzer %s unavailable", "cppcheck")
	assert.Equal(t, "WARN: analyzer cppcheck unavailable\n", errOut.String())
}

func TestStartProgressNonInteractive(t *testing.T) {
	u := New(&bytes.Buffer{}, &bytes.Buffer{}, "terminal")
	pc := u.StartProgress()
	assert.Nil(t, pc)

	// nil controllers are no-ops
	pc.SetStage(StageAnalyze)
	pc.PairDone("[1/1] clang-tidy analyzed a.cpp successfully")
	pc.Done(nil)
}

func TestModelTracksPairs(t *testing.T) {
	var m tea.Model = NewModel()
	m, _ = m.Update(StageMsg(StageAnalyze))
	m, _ = m.Update(PairCountMsg(2))
	m, cmd := m.Update(PairDoneMsg("[1/2] clang-tidy analyzed a.cpp successfully"))
	assert.NotNil(t, cmd)

	view := m.View()
	assert.True(t, strings.Contains(view, "Analyzing (1/2)"), view)

	m, _ = m.Update(DoneMsg{})
	assert.Empty(t, m.View())
}
