package mutation

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/clinicdesk/internal/client/client"
	"github.com/dmitrijs2005/clinicdesk/internal/client/models"
	"github.com/dmitrijs2005/clinicdesk/internal/client/notify"
	"github.com/stretchr/testify/require"
)

type call struct {
	op      string
	id      string
	action  string
	body    client.Body
	payload map[string]any
}

type fakeMutator struct {
	calls []call
	err   error
}

func (m *fakeMutator) Create(ctx context.Context, body client.Body) (models.Record, error) {
	m.calls = append(m.calls, call{op: "create", body: body})
	if m.err != nil {
		return nil, m.err
	}
	return models.Record{"_id": "new"}, nil
}

func (m *fakeMutator) Update(ctx context.Context, id string, body client.Body) (models.Record, error) {
	m.calls = append(m.calls, call{op: "update", id: id, body: body})
	return models.Record{"_id": id}, m.err
}

func (m *fakeMutator) Delete(ctx context.Context, id string) error {
	m.calls = append(m.calls, call{op: "delete", id: id})
	return m.err
}

func (m *fakeMutator) Action(ctx context.Context, id, action string, payload map[string]any) (models.Record, error) {
	m.calls = append(m.calls, call{op: "action", id: id, action: action, payload: payload})
	return nil, m.err
}

type fakeConfirmer struct {
	answer  bool
	err     error
	prompts []string
}

func (c *fakeConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	c.prompts = append(c.prompts, prompt)
	return c.answer, c.err
}

type counter struct{ n int }

func (c *counter) Refresh(ctx context.Context) { c.n++ }

type fakeEditor struct{ closed bool }

func (e *fakeEditor) Close() { e.closed = true }

type fixture struct {
	mut     *fakeMutator
	conf    *fakeConfirmer
	list    *counter
	stats   *counter
	notices *notify.Recorder
	flow    *Flow
}

func newFixture(answer bool, err error) *fixture {
	f := &fixture{
		mut:     &fakeMutator{err: err},
		conf:    &fakeConfirmer{answer: answer},
		list:    &counter{},
		stats:   &counter{},
		notices: &notify.Recorder{},
	}
	f.flow = New(f.mut, f.notices, f.conf, f.list, f.stats, WithNoun("Patient"))
	return f
}

func TestDelete_DeclinedMakesNoCall(t *testing.T) {
	f := newFixture(false, nil)

	err := f.flow.Delete(context.Background(), Target{ID: "p1", Label: "Ann Lee"})
	require.ErrorIs(t, err, ErrDeclined)
	require.Empty(t, f.mut.calls)
	require.Zero(t, f.list.n)
	require.Zero(t, f.stats.n)
	require.Len(t, f.conf.prompts, 1)
	require.Contains(t, f.conf.prompts[0], "Ann Lee")
}

func TestDelete_AcceptedCallsOnceAndRefreshesBoth(t *testing.T) {
	f := newFixture(true, nil)

	require.NoError(t, f.flow.Delete(context.Background(), Target{ID: "p1", Label: "Ann Lee"}))
	require.Equal(t, []call{{op: "delete", id: "p1"}}, f.mut.calls)
	require.Equal(t, 1, f.list.n)
	require.Equal(t, 1, f.stats.n)
	require.Equal(t, []string{"Patient deleted successfully"}, f.notices.Messages(notify.LevelSuccess))
}

func TestDelete_FailureNotifiesAndLeavesList(t *testing.T) {
	f := newFixture(true, &client.StatusError{StatusCode: 409, Message: "Patient has upcoming bookings"})

	err := f.flow.Delete(context.Background(), Target{ID: "p1", Label: "Ann"})
	require.Error(t, err)
	require.Zero(t, f.list.n)
	require.Zero(t, f.stats.n)
	require.Equal(t, []string{"Patient has upcoming bookings"}, f.notices.Messages(notify.LevelError))
}

func TestDelete_ConfirmerError(t *testing.T) {
	f := newFixture(true, nil)
	f.conf.err = errors.New("stdin closed")

	err := f.flow.Delete(context.Background(), Target{ID: "p1"})
	require.ErrorContains(t, err, "stdin closed")
	require.Empty(t, f.mut.calls)
}

func TestCreate(t *testing.T) {
	t.Run("success closes editor", func(t *testing.T) {
		f := newFixture(true, nil)
		ed := &fakeEditor{}
		body := client.JSONBody(map[string]any{"name": "Ann"})

		rec, err := f.flow.Create(context.Background(), body, ed)
		require.NoError(t, err)
		require.Equal(t, "new", rec.ID())
		require.True(t, ed.closed)
		require.Equal(t, 1, f.list.n)
		require.Equal(t, 1, f.stats.n)
		require.Empty(t, f.conf.prompts, "creates are not confirmed")
	})

	t.Run("failure keeps editor open", func(t *testing.T) {
		f := newFixture(true, &client.ValidationError{Fields: []client.FieldError{{Msg: "Email is taken"}}})
		ed := &fakeEditor{}

		_, err := f.flow.Create(context.Background(), client.JSONBody(nil), ed)
		require.Error(t, err)
		require.False(t, ed.closed)
		require.Zero(t, f.list.n)
		require.Equal(t, []string{"Email is taken"}, f.notices.Messages(notify.LevelError))
	})
}

func TestUpdate(t *testing.T) {
	f := newFixture(true, nil)
	ed := &fakeEditor{}

	_, err := f.flow.Update(context.Background(), "p1", client.JSONBody(map[string]any{"name": "B"}), ed)
	require.NoError(t, err)
	require.True(t, ed.closed)
	require.Equal(t, "p1", f.mut.calls[0].id)
	require.Equal(t, []string{"Patient updated successfully"}, f.notices.Messages(notify.LevelSuccess))
}

func TestCancelAndReject_RequireReason(t *testing.T) {
	f := newFixture(true, nil)
	ctx := context.Background()

	require.ErrorIs(t, f.flow.Cancel(ctx, Target{ID: "b1"}, "   "), ErrReasonRequired)
	require.ErrorIs(t, f.flow.Reject(ctx, Target{ID: "d1"}, ""), ErrReasonRequired)
	require.Empty(t, f.mut.calls)
	require.Empty(t, f.conf.prompts)
}

func TestCancel_WithReason(t *testing.T) {
	f := newFixture(true, nil)

	err := f.flow.Cancel(context.Background(), Target{ID: "b1", Label: "Ann at 10:00"}, " doctor unavailable ")
	require.NoError(t, err)
	require.Equal(t, []call{{
		op: "action", id: "b1", action: "cancel",
		payload: map[string]any{"reason": "doctor unavailable"},
	}}, f.mut.calls)
	require.Contains(t, f.conf.prompts[0], "Ann at 10:00")
	require.Equal(t, 1, f.list.n)
	require.Equal(t, 1, f.stats.n)
}

func TestReject_Declined(t *testing.T) {
	f := newFixture(false, nil)
	err := f.flow.Reject(context.Background(), Target{ID: "d1", Label: "Dr. House"}, "missing license")
	require.ErrorIs(t, err, ErrDeclined)
	require.Empty(t, f.mut.calls)
}

func TestApprove(t *testing.T) {
	f := newFixture(false, nil)
	require.NoError(t, f.flow.Approve(context.Background(), Target{ID: "d1", Label: "Dr. House"}))
	require.Equal(t, "approve", f.mut.calls[0].action)
	require.Empty(t, f.conf.prompts)
	require.Equal(t, 1, f.list.n)
}

func TestToggleStatus(t *testing.T) {
	f := newFixture(true, nil)

	require.NoError(t, f.flow.ToggleStatus(context.Background(), Target{ID: "p1", Label: "Ann"}, "isActive", false))
	require.Len(t, f.mut.calls, 1)
	c := f.mut.calls[0]
	require.Equal(t, "update", c.op)
	require.Equal(t, client.BodyJSON, c.body.Kind)
	require.Equal(t, map[string]any{"isActive": false}, c.body.Payload)
	require.Equal(t, []string{"Patient Ann deactivated"}, f.notices.Messages(notify.LevelSuccess))
	require.Equal(t, 1, f.list.n)
	require.Equal(t, 1, f.stats.n)
}

func TestNilRefreshers(t *testing.T) {
	mut := &fakeMutator{}
	flow := New(mut, &notify.Recorder{}, &fakeConfirmer{answer: true}, nil, nil)
	require.NoError(t, flow.Delete(context.Background(), Target{ID: "x"}))
}
