package daemon

import (
	"github.com/jmylchreest/snackbar/internal/metrics"
	"github.com/jmylchreest/snackbar/internal/snackbar"
)

// Request sources, used as the metrics label.
const (
	SourceDBus  = "dbus"
	SourceHTTP  = "http"
	SourceStdin = "stdin"
)

// sourcePresenter counts the requests of one source.
type sourcePresenter struct {
	snackbar.Presenter
	source    string
	collector *metrics.Collector
}

func (p sourcePresenter) Show(req snackbar.Request) error {
	if err := p.Presenter.Show(req); err != nil {
		return err
	}
	p.collector.RecordRequest(p.source)
	return nil
}
