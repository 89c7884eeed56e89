package presenter

import (
	"errors"
	"testing"
	"time"

	"github.com/soocke/screenrec/domain/capture"
	"github.com/soocke/screenrec/ui/model"
)

type mockRecorder struct {
	started, stopped int
	startErr         error
	stopping         bool
	region           capture.Region
}

func (r *mockRecorder) Start(region capture.Region) error {
	if r.startErr != nil {
		return r.startErr
	}
	r.started++
	r.region = region
	return nil
}
func (r *mockRecorder) Stop()          { r.stopped++; r.stopping = true }
func (r *mockRecorder) Stopping() bool { return r.stopping }

type mockRegions struct {
	region capture.Region
	err    error
}

func (m mockRegions) SelectedRegion() (capture.Region, error) { return m.region, m.err }

type mockView struct {
	shown      int
	status     string
	closeAfter time.Duration
	closes     int
}

func (v *mockView) ShowRecording()             { v.shown++ }
func (v *mockView) SetStatus(text string)      { v.status = text }
func (v *mockView) CloseAfter(d time.Duration) { v.closes++; v.closeAfter = d }

var testRegion = capture.Region{Left: 100, Top: 100, Width: 800, Height: 600}

func newTestPresenter(rec *mockRecorder, regions mockRegions, view *mockView, saved *[]capture.Region) (*RecordingPresenter, *model.SessionModel) {
	m := model.NewSessionModel()
	remember := func(r capture.Region) error {
		*saved = append(*saved, r)
		return nil
	}
	return NewRecordingPresenter(m, rec, regions, view, remember, nil), m
}

func TestRecordingPresenter_StartStop_Idempotent(t *testing.T) {
	rec := &mockRecorder{}
	view := &mockView{}
	var saved []capture.Region
	p, m := newTestPresenter(rec, mockRegions{region: testRegion}, view, &saved)

	p.Start()
	if st, _ := m.Values(); st != model.StateRecording || rec.started != 1 || view.shown != 1 {
		t.Fatalf("start failed: state=%v started=%d shown=%d", st, rec.started, view.shown)
	}
	if rec.region != testRegion || len(saved) != 1 || saved[0] != testRegion {
		t.Fatalf("region not frozen/persisted: rec=%v saved=%v", rec.region, saved)
	}
	// Start again idempotent
	p.Start()
	if rec.started != 1 {
		t.Fatalf("start not idempotent: started=%d", rec.started)
	}

	p.Stop()
	if st, _ := m.Values(); st != model.StateStopping || rec.stopped != 1 || view.closes != 1 || view.closeAfter != CloseDelay {
		t.Fatalf("stop failed: state=%v stopped=%d closes=%d after=%v", st, rec.stopped, view.closes, view.closeAfter)
	}
	// Stop again idempotent
	p.Stop()
	if rec.stopped != 1 || view.closes != 1 {
		t.Fatalf("stop not idempotent: stopped=%d closes=%d", rec.stopped, view.closes)
	}
}

func TestRecordingPresenter_Toggle(t *testing.T) {
	rec := &mockRecorder{}
	view := &mockView{}
	var saved []capture.Region
	p, _ := newTestPresenter(rec, mockRegions{region: testRegion}, view, &saved)
	p.Toggle() // start path
	if rec.started != 1 {
		t.Fatalf("toggle start failed")
	}
	p.Toggle() // stop path
	if rec.stopped != 1 || view.closes != 1 {
		t.Fatalf("toggle stop failed")
	}
}

func TestRecordingPresenter_InvalidSelectionStaysIdle(t *testing.T) {
	rec := &mockRecorder{}
	view := &mockView{}
	var saved []capture.Region
	p, m := newTestPresenter(rec, mockRegions{err: capture.ErrInvalidRegion}, view, &saved)
	p.Start()
	if st, _ := m.Values(); st != model.StateIdle || rec.started != 0 || view.status == "" {
		t.Fatalf("state=%v started=%d status=%q", st, rec.started, view.status)
	}
}

func TestRecordingPresenter_StartFailure(t *testing.T) {
	rec := &mockRecorder{startErr: errors.New("ffmpeg missing")}
	view := &mockView{}
	var saved []capture.Region
	p, m := newTestPresenter(rec, mockRegions{region: testRegion}, view, &saved)
	p.Start()
	if st, _ := m.Values(); st != model.StateFailed || view.shown != 0 || len(saved) != 0 {
		t.Fatalf("state=%v shown=%d saved=%v", st, view.shown, saved)
	}
}

func TestRecordingPresenter_TickFollowsSelfStop(t *testing.T) {
	rec := &mockRecorder{}
	view := &mockView{}
	var saved []capture.Region
	p, m := newTestPresenter(rec, mockRegions{region: testRegion}, view, &saved)
	p.Start()
	p.Tick(time.Now())
	if st, _ := m.Values(); st != model.StateRecording {
		t.Fatalf("tick should not stop a healthy session")
	}
	rec.stopping = true
	p.Tick(time.Now())
	if st, _ := m.Values(); st != model.StateStopping || view.closes != 1 {
		t.Fatalf("state=%v closes=%d, want stopping and close scheduled", st, view.closes)
	}
}

type mockSessionView struct {
	state   model.RecordingState
	elapsed time.Duration
	calls   int
}

func (v *mockSessionView) SetSession(st model.RecordingState, d time.Duration) {
	v.state, v.elapsed = st, d
	v.calls++
}

func TestLoop_TicksPresentersAndReschedules(t *testing.T) {
	m := model.NewSessionModel()
	base := time.Unix(50, 0)
	m.Begin(base)
	sv := &mockSessionView{}
	scheduled := 0
	l := NewLoop(nil, NewSessionPresenter(m, sv), func() { scheduled++ })
	l.now = func() time.Time { return base.Add(2 * time.Second) }
	l.Tick()
	if sv.calls != 1 || sv.state != model.StateRecording || sv.elapsed != 2*time.Second || scheduled != 1 {
		t.Fatalf("view=%+v scheduled=%d", sv, scheduled)
	}
	var nilLoop *Loop
	nilLoop.Tick()
}
