package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"gramlint/internal/driver"
	"gramlint/internal/source"
	"gramlint/internal/ui"
)

type checkOutcome struct {
	results []driver.FileResult
	err     error
}

// runCheckWithUI runs CheckFiles in the background and renders its progress.
// Quitting the UI cancels the remaining files.
func runCheckWithUI(ctx context.Context, title string, session *driver.Session, fileSet *source.FileSet, ids []source.FileID, req driver.Request) ([]driver.FileResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	files := make([]string, len(ids))
	for i, id := range ids {
		files[i] = fileSet.Get(id).Path
	}
	// два события на файл, как в CheckFiles
	events := make(chan driver.FileEvent, 2*len(ids))
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		res, err := session.CheckFiles(ctx, fileSet, ids, req, func(ev driver.FileEvent) {
			events <- ev
		})
		close(events)
		outcomeCh <- checkOutcome{results: res, err: err}
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	// модель выходит сама только после закрытия events; иначе это Ctrl+C
	cancel()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
