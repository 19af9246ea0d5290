package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/watchfire-io/launchpad/internal/models"
	"github.com/watchfire-io/launchpad/internal/output"
)

func line(text string) models.OutputEvent {
	return models.OutputEvent{CommandID: "c1", Text: text, Kind: models.KindStdout}
}

func progress(text string, replace bool) models.OutputEvent {
	return models.OutputEvent{CommandID: "c1", Text: text, Kind: models.KindStdout, IsProgress: true, ReplaceLast: replace}
}

func TestPrinterPrintsNewEntriesOnce(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf, false)
	log := output.NewLog()

	log.Apply(line("cloning"))
	p.sync(log)
	log.Apply(line("building"))
	p.sync(log)
	p.sync(log)
	p.finish()

	assert.Equal(t, "cloning\nbuilding\n", buf.String())
}

func TestPrinterPlainOutputKeepsEveryProgressVersion(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf, false)
	log := output.NewLog()

	log.Apply(progress("10%", false))
	p.sync(log)
	log.Apply(progress("50%", true))
	p.sync(log)
	p.finish()

	assert.Equal(t, 1, log.Len())
	assert.Equal(t, "10%\n50%\n", buf.String())
}

func TestPrinterRewritesProgressOnTerminal(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf, true)
	log := output.NewLog()

	log.Apply(progress("10%", false))
	p.sync(log)
	log.Apply(progress("50%", true))
	p.sync(log)
	log.Apply(line("done"))
	p.sync(log)

	out := buf.String()
	assert.Contains(t, out, "\r")
	assert.Contains(t, out, "10%")
	assert.Contains(t, out, "50%\ndone\n")
}

func TestPrinterCatchesUpOnSeveralChanges(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf, false)
	log := output.NewLog()

	log.Apply(line("a"))
	log.Apply(progress("1/3", false))
	log.Apply(progress("3/3", true))
	log.Apply(line("b"))
	p.sync(log)

	assert.Equal(t, "a\n1/3\n3/3\nb\n", buf.String())
}

func TestPrinterStartsOverAfterClear(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf, false)
	log := output.NewLog()

	log.Apply(line("a"))
	log.Apply(line("b"))
	p.sync(log)
	log.Clear()
	log.Apply(line("c"))
	p.sync(log)

	assert.Equal(t, "a\nb\nc\n", buf.String())
}

func TestExitStatus(t *testing.T) {
	assert.Equal(t, 2, exitStatus(2))
	assert.Equal(t, 255, exitStatus(255))
	assert.Equal(t, 1, exitStatus(-1))
	assert.Equal(t, 1, exitStatus(300))
}
