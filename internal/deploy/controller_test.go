package deploy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchfire-io/launchpad/internal/models"
	"github.com/watchfire-io/launchpad/internal/output"
)

type fakeAPI struct {
	deployCalls []string
	stopCalls   []string

	commandID string
	deployErr error
	stopErr   error

	// Runs inside Deploy, before it returns.
	during func()
}

func (f *fakeAPI) Deploy(_ context.Context, gitURL, branch string) (string, error) {
	f.deployCalls = append(f.deployCalls, gitURL+"@"+branch)
	if f.during != nil {
		f.during()
	}
	if f.deployErr != nil {
		return "", f.deployErr
	}
	return f.commandID, nil
}

func (f *fakeAPI) Stop(_ context.Context, commandID string) error {
	f.stopCalls = append(f.stopCalls, commandID)
	return f.stopErr
}

func exit(code int) *int { return &code }

func texts(log *output.Log) []string {
	var out []string
	for _, e := range log.Entries() {
		out = append(out, e.Text)
	}
	return out
}

func newController(api *fakeAPI) *Controller {
	return New(api, output.NewLog(), Options{DefaultBranch: "main"})
}

func TestStartRejectsEmptyURL(t *testing.T) {
	api := &fakeAPI{commandID: "c1"}
	c := newController(api)
	c.Log().AppendSystem("previous")

	for _, url := range []string{"", "   ", "\t\n"} {
		_, err := c.Start(context.Background(), url, "main")
		assert.ErrorIs(t, err, ErrEmptyGitURL)
	}

	assert.Empty(t, api.deployCalls)
	assert.Equal(t, []string{"previous"}, texts(c.Log()))
	assert.Equal(t, models.StateIdle, c.State())
}

func TestStartSuccess(t *testing.T) {
	api := &fakeAPI{commandID: "c1"}
	c := newController(api)
	c.Log().AppendSystem("old output")

	id, err := c.Start(context.Background(), " https://github.com/acme/app.git ", "")
	require.NoError(t, err)
	assert.Equal(t, "c1", id)

	assert.Equal(t, []string{"https://github.com/acme/app.git@main"}, api.deployCalls)
	assert.Empty(t, c.Log().Entries())

	s := c.Session()
	assert.Equal(t, models.StateRunning, s.State)
	assert.Equal(t, "c1", s.ActiveCommandID)
	assert.Equal(t, "main", s.Branch)
}

func TestStartFailureAppendsOneError(t *testing.T) {
	api := &fakeAPI{deployErr: errors.New("connection refused")}
	c := newController(api)

	_, err := c.Start(context.Background(), "https://github.com/acme/app.git", "dev")
	require.Error(t, err)

	entries := c.Log().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, models.KindError, entries[0].Kind)
	assert.Contains(t, entries[0].Text, "connection refused")

	s := c.Session()
	assert.Equal(t, models.StateIdle, s.State)
	assert.False(t, s.Active())
}

func TestStartWhileRunning(t *testing.T) {
	api := &fakeAPI{commandID: "c1"}
	c := newController(api)

	_, err := c.Start(context.Background(), "a", "")
	require.NoError(t, err)

	_, err = c.Start(context.Background(), "b", "")
	assert.ErrorIs(t, err, ErrDeploymentInProgress)
	assert.Len(t, api.deployCalls, 1)
	assert.Equal(t, "c1", c.Session().ActiveCommandID)
}

func TestEarlyOutputIsReplayed(t *testing.T) {
	api := &fakeAPI{commandID: "c1"}
	c := newController(api)
	api.during = func() {
		assert.Equal(t, models.StateStarting, c.State())
		c.HandleOutput(models.OutputEvent{CommandID: "c1", Text: "cloning"})
		c.HandleOutput(models.OutputEvent{CommandID: "other", Text: "noise"})
		c.HandleOutput(models.OutputEvent{Text: "building"})
	}

	_, err := c.Start(context.Background(), "a", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"cloning", "building"}, texts(c.Log()))
}

func TestEarlyFinishIsReplayed(t *testing.T) {
	api := &fakeAPI{commandID: "c1"}
	c := newController(api)
	api.during = func() {
		c.HandleOutput(models.OutputEvent{CommandID: "c1", Text: "done"})
		_, ok := c.HandleFinished(models.FinishedEvent{CommandID: "c1", ExitCode: exit(0)})
		assert.False(t, ok)
	}

	_, err := c.Start(context.Background(), "a", "")
	require.NoError(t, err)

	entries := c.Log().Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, models.KindSuccess, entries[1].Kind)
	assert.Equal(t, models.StateIdle, c.State())

	res, ok := c.TakeReplayed()
	require.True(t, ok)
	assert.Equal(t, "c1", res.CommandID)
	assert.Equal(t, 0, res.ExitCode)

	_, ok = c.TakeReplayed()
	assert.False(t, ok)
}

func TestHandleOutputWhileRunning(t *testing.T) {
	api := &fakeAPI{commandID: "c1"}
	c := newController(api)
	_, err := c.Start(context.Background(), "a", "")
	require.NoError(t, err)

	assert.True(t, c.HandleOutput(models.OutputEvent{CommandID: "c1", Text: "10%", IsProgress: true, ReplaceLast: true}))
	assert.True(t, c.HandleOutput(models.OutputEvent{CommandID: "c1", Text: "55%", IsProgress: true, ReplaceLast: true}))
	assert.False(t, c.HandleOutput(models.OutputEvent{CommandID: "c2", Text: "foreign"}))
	assert.False(t, c.HandleOutput(models.OutputEvent{CommandID: "c1", Text: ""}))
	assert.True(t, c.HandleOutput(models.OutputEvent{CommandID: "c1", Text: "done"}))

	assert.Equal(t, []string{"55%", "done"}, texts(c.Log()))
}

func TestHandleOutputWhileIdle(t *testing.T) {
	c := newController(&fakeAPI{})
	assert.True(t, c.HandleOutput(models.OutputEvent{CommandID: "late", Text: "trailing line"}))
	assert.Equal(t, []string{"trailing line"}, texts(c.Log()))
}

func TestHandleFinished(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		wantKind models.OutputKind
	}{
		{name: "success", code: 0, wantKind: models.KindSuccess},
		{name: "failure", code: 1, wantKind: models.KindError},
		{name: "signal", code: 137, wantKind: models.KindError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{commandID: "c1"}
			c := newController(api)
			_, err := c.Start(context.Background(), "https://github.com/acme/app.git", "dev")
			require.NoError(t, err)
			c.HandleOutput(models.OutputEvent{CommandID: "c1", Text: "line"})

			res, ok := c.HandleFinished(models.FinishedEvent{CommandID: "c1", ExitCode: exit(tt.code)})
			require.True(t, ok)
			assert.Equal(t, "c1", res.CommandID)
			assert.Equal(t, tt.code, res.ExitCode)
			assert.Equal(t, "dev", res.Branch)

			entries := c.Log().Entries()
			require.Len(t, entries, 2)
			assert.Equal(t, tt.wantKind, entries[1].Kind)
			assert.False(t, entries[1].IsProgress)

			s := c.Session()
			assert.False(t, s.Active())
			assert.Equal(t, models.StateIdle, s.State)
		})
	}
}

func TestHandleFinishedIgnored(t *testing.T) {
	api := &fakeAPI{commandID: "c1"}
	c := newController(api)
	_, err := c.Start(context.Background(), "a", "")
	require.NoError(t, err)

	_, ok := c.HandleFinished(models.FinishedEvent{CommandID: "c1"})
	assert.False(t, ok)
	_, ok = c.HandleFinished(models.FinishedEvent{CommandID: "c2", ExitCode: exit(0)})
	assert.False(t, ok)

	assert.Empty(t, c.Log().Entries())
	assert.Equal(t, "c1", c.Session().ActiveCommandID)
}

func TestStopWithoutActiveCommand(t *testing.T) {
	api := &fakeAPI{}
	c := newController(api)

	require.NoError(t, c.Stop(context.Background()))
	assert.Empty(t, api.stopCalls)
	assert.Empty(t, c.Log().Entries())
	assert.Equal(t, models.StateIdle, c.State())
}

func TestStop(t *testing.T) {
	api := &fakeAPI{commandID: "c1"}
	c := newController(api)
	_, err := c.Start(context.Background(), "a", "")
	require.NoError(t, err)

	require.NoError(t, c.Stop(context.Background()))
	assert.Equal(t, []string{"c1"}, api.stopCalls)
	assert.Equal(t, "c1", c.Session().ActiveCommandID)
}

func TestStopFailureAppendsError(t *testing.T) {
	api := &fakeAPI{commandID: "c1", stopErr: errors.New("boom")}
	c := newController(api)
	_, err := c.Start(context.Background(), "a", "")
	require.NoError(t, err)

	require.Error(t, c.Stop(context.Background()))
	entries := c.Log().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, models.KindError, entries[0].Kind)
	assert.Equal(t, "c1", c.Session().ActiveCommandID)
	assert.Equal(t, models.StateRunning, c.State())
}
