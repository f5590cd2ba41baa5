package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mithrel/topviews/internal/controller"
	"github.com/mithrel/topviews/internal/ranking"
)

// rankingsMsg carries a ranking fetch result tagged with its generation.
type rankingsMsg struct {
	gen     uint64
	entries []ranking.RankEntry
	err     error
	dur     time.Duration
}

// lookupMsg carries a namespace lookup result tagged with its generation.
type lookupMsg struct {
	gen    uint64
	titles []string
	err    error
	dur    time.Duration
}

// settleMsg fires once after the exclude picker has drawn.
type settleMsg struct{}

func fetchCmd(ctx context.Context, src ranking.Source, req *controller.FetchRequest) tea.Cmd {
	if req == nil {
		return nil
	}
	return func() tea.Msg {
		start := time.Now()
		entries, err := src.Rankings(ctx, req.Query)
		return rankingsMsg{gen: req.Gen, entries: entries, err: err, dur: time.Since(start)}
	}
}

func lookupCmd(ctx context.Context, src ranking.Source, req *controller.LookupRequest) tea.Cmd {
	if req == nil {
		return nil
	}
	return func() tea.Msg {
		start := time.Now()
		titles, err := src.NamespaceExcludes(ctx, req.Project, req.Titles)
		return lookupMsg{gen: req.Gen, titles: titles, err: err, dur: time.Since(start)}
	}
}

func settleCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return settleMsg{} })
}
