package main

import (
	"fmt"

	"github.com/pterm/pterm"

	"go.viam.com/ply/ply"
)

type progressSpinner interface {
	Success(...any)
	Fail(...any)
	UpdateText(string)
}

type progressSpinnerFactory func(string) (progressSpinner, error)

var defaultSpinnerFactory progressSpinnerFactory = func(text string) (progressSpinner, error) {
	spinner, err := pterm.DefaultSpinner.
		WithRemoveWhenDone(false).
		WithText(text).
		Start()
	if err != nil {
		return nil, err
	}
	return spinner, nil
}

// progressListener reports decode progress on a spinner, updating it every `every` records.
type progressListener struct {
	path    string
	every   int
	factory progressSpinnerFactory
	spinner progressSpinner
}

func newProgressListener(path string, every int, factory progressSpinnerFactory) *progressListener {
	if every <= 0 {
		every = 1
	}
	return &progressListener{path: path, every: every, factory: factory}
}

func (pl *progressListener) Notify(n ply.Notification) error {
	switch n.Event {
	case ply.EventReadStarted:
		spinner, err := pl.factory(fmt.Sprintf("reading %s", pl.path))
		if err != nil {
			return err
		}
		pl.spinner = spinner
	case ply.EventElementStarted:
		pl.update(fmt.Sprintf("%s: %s 0/%d", pl.path, n.Element.Name, n.Element.Count))
	case ply.EventVertexDecoded, ply.EventFaceDecoded:
		if (n.Ordinal+1)%pl.every == 0 {
			element, count := "", 0
			if n.Element != nil {
				element, count = n.Element.Name, n.Element.Count
			}
			pl.update(fmt.Sprintf("%s: %s %d/%d", pl.path, element, n.Ordinal+1, count))
		}
	case ply.EventReadFinished:
		if pl.spinner != nil {
			pl.spinner.Success(fmt.Sprintf("read %s", pl.path))
		}
	case ply.EventHeaderStarted, ply.EventElementDiscovered, ply.EventHeaderFinished, ply.EventDataStarted,
		ply.EventElementFinished, ply.EventDataFinished:
	}
	return nil
}

func (pl *progressListener) update(text string) {
	if pl.spinner != nil {
		pl.spinner.UpdateText(text)
	}
}

// fail marks the spinner failed if the decode stopped early.
func (pl *progressListener) fail(err error) {
	if pl.spinner != nil {
		pl.spinner.Fail(err.Error())
	}
}
